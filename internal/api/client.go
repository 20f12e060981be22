// api реализует HTTP-клиент торгового бэкенда.
//
// Пакет отвечает только за транспорт и нормализацию ошибок:
//   - формирует запросы (JSON, Bearer-токен, X-Request-Id);
//   - различает транспортные сбои (ErrUnavailable), ошибки валидации
//     бэкенда (*BackendError) и битые ответы (ErrMalformedResponse);
//   - возвращает «сырые» DTO; конвертация в доменные модели — забота
//     вызывающих слоёв (session, market).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-orderbook-dashboard/internal/pkg/log"
)

var (
	// ErrUnavailable — бэкенд недоступен или соединение оборвалось.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrMalformedResponse — ответ бэкенда не соответствует ожидаемой форме.
	ErrMalformedResponse = errors.New("malformed backend response")
)

// Ограничение на размер читаемого тела ошибки.
const maxErrorBody = 1 << 20

// Client — HTTP-клиент бэкенда. Безопасен для конкурентного использования.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New создаёт клиент бэкенда. baseURL обязателен.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	const op = "api.New"

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%s: base URL is empty", op)
	}

	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("%s: invalid base URL: %w", op, err)
	}

	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}, nil
}

// do выполняет один запрос к бэкенду.
// token == "" означает неаутентифицированный вызов (login/signup/refresh).
// out == nil — тело успешного ответа не интересует.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	const op = "api.do"

	lg := log.From(ctx)

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		lg.Warn("backend_call_failed",
			slog.String("op", op),
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	lg.Debug("backend_call",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("dur", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return newBackendError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrMalformedResponse, err)
	}

	return nil
}
