package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/squaredbusinessman/storefront-client/internal/model"
)

type OrderClient struct {
	c *Client
}

func NewOrderClient(c *Client) *OrderClient {
	return &OrderClient{c: c}
}

type placeOrderResponse struct {
	ID      json.RawMessage `json:"id"`
	OrderID json.RawMessage `json:"order_id"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
}

func (o *OrderClient) Place(ctx context.Context, req model.OrderRequest) (model.PlacedOrder, error) {
	var resp placeOrderResponse
	if err := o.c.Do(ctx, http.MethodPost, "/order", req, &resp); err != nil {
		return model.PlacedOrder{}, err
	}

	id := rawID(resp.ID)
	if id == "" {
		id = rawID(resp.OrderID)
	}
	return model.PlacedOrder{
		ID:      id,
		Status:  resp.Status,
		Message: resp.Message,
	}, nil
}

func (o *OrderClient) List(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := o.c.Do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func rawID(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	return strings.Trim(s, `"`)
}
