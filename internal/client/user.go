package client

import (
	"context"
	"net/http"

	"github.com/squaredbusinessman/storefront-client/internal/model"
)

type UserClient struct {
	c *Client
}

func NewUserClient(c *Client) *UserClient {
	return &UserClient{c: c}
}

func (u *UserClient) Register(ctx context.Context, creds model.Credentials) error {
	return u.c.Do(ctx, http.MethodPost, "/register", creds, nil)
}

// Login возвращает токен. 2xx без токена тоже провал: user service умеет
// отвечать 200 {"error": "..."} вместо кода ошибки.
func (u *UserClient) Login(ctx context.Context, creds model.Credentials) (string, error) {
	var resp model.LoginResponse
	status, err := u.c.do(ctx, http.MethodPost, "/login", creds, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &RequestFailedError{Status: status, Detail: resp.Error}
	}
	return resp.Token, nil
}
