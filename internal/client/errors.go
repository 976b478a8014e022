package client

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RequestFailedError сервис ответил, но не 2xx. Detail текст от сервиса, может быть пустым.
type RequestFailedError struct {
	Status int
	Detail string
}

func (e *RequestFailedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Detail)
}

// ConnectionError ответа не было вовсе
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "cannot reach server: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// validationIssue элемент detail у FastAPI при 422
type validationIssue struct {
	Msg string `json:"msg"`
}

// extractDetail достает человекочитаемое сообщение из тела ошибки.
// Порядок: detail строкой, detail списком {msg}, error, message.
func extractDetail(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}

	if len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil && strings.TrimSpace(s) != "" {
			return s
		}

		var issues []validationIssue
		if err := json.Unmarshal(body.Detail, &issues); err == nil {
			msgs := make([]string, 0, len(issues))
			for _, is := range issues {
				if is.Msg != "" {
					msgs = append(msgs, is.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}

	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
