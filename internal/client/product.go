package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/squaredbusinessman/storefront-client/internal/model"
)

type ProductClient struct {
	c *Client
}

func NewProductClient(c *Client) *ProductClient {
	return &ProductClient{c: c}
}

func (p *ProductClient) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := p.c.Do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Search экранирует name через url.QueryEscape: без этого пробел в термине ломает строку запроса.
// Браузерный fetch кодирует так же, сервис видит тот же термин.
func (p *ProductClient) Search(ctx context.Context, name string) ([]model.Product, error) {
	var products []model.Product
	path := "/products/search?name=" + url.QueryEscape(name)
	if err := p.c.Do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Add сервис принимает пачку товаров, мы всегда шлем массив из одного
func (p *ProductClient) Add(ctx context.Context, in model.ProductInput) error {
	return p.c.Do(ctx, http.MethodPost, "/products/add", []model.ProductInput{in}, nil)
}
