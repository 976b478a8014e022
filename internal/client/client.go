package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/squaredbusinessman/storefront-client/internal/logger"
)

const (
	contentAppJSON  = "application/json"
	headerRequestID = "X-Request-ID"
)

// Client JSON поверх HTTP к одному сервису. Без ретраев и своих таймаутов:
// отмена только через ctx вызывающего.
type Client struct {
	baseURL string
	http    *http.Client
	newID   func() string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		newID:   uuid.NewString,
	}
}

// Do отправляет in (если не nil) как JSON и раскладывает 2xx ответ в out (если не nil).
// Ошибки: *RequestFailedError для не 2xx, *ConnectionError если ответа не было.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	_, err := c.do(ctx, method, path, in, out)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		request.Header.Set("Content-Type", contentAppJSON)
	}
	request.Header.Set("Accept", contentAppJSON)

	requestID := c.newID()
	request.Header.Set(headerRequestID, requestID)

	log := logger.Log.With(
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("url", c.baseURL+path),
	)

	start := time.Now()
	response, err := c.http.Do(request)
	if err != nil {
		log.Warn("service unreachable", zap.Error(err))
		return 0, &ConnectionError{Err: err}
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		log.Warn("read response body", zap.Int("status", response.StatusCode), zap.Error(err))
		return response.StatusCode, &ConnectionError{Err: err}
	}

	log.Debug("service call",
		zap.Int("status", response.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Duration("latency", time.Since(start)),
	)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		failed := &RequestFailedError{
			Status: response.StatusCode,
			Detail: extractDetail(raw),
		}
		log.Warn("service call failed", zap.Int("status", failed.Status), zap.String("detail", failed.Detail))
		return response.StatusCode, failed
	}

	// пустое тело у 2xx оставляет out нулевым
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return response.StatusCode, nil
	}
	if err = json.Unmarshal(raw, out); err != nil {
		log.Warn("decode response", zap.Error(err))
		return response.StatusCode, &RequestFailedError{Status: response.StatusCode}
	}
	return response.StatusCode, nil
}
