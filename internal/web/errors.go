// Маппинг доменных ошибок в единый формат ответов локального API.
//
// На вход — ошибка нижних слоёв (session/market/api), на выход:
//   - корректный HTTP-статус;
//   - короткий стабильный код для машиночитаемой обработки;
//   - безопасное человекочитаемое сообщение (для ошибок валидации —
//     нормализованная строка «поле: сообщение; ...»).
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-orderbook-dashboard/internal/api"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/session"
)

// APIError — единый формат ошибки для фронта.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// toHTTP конвертирует доменную ошибку в HTTP-статус и тело ответа.
//
// Поведение:
//   - session.ErrUnauthenticated -> 401: фронт уводит на re-login;
//   - *api.BackendError -> статус бэкенда + нормализованное сообщение;
//   - api.ErrUnavailable -> 502 (бэкенд недоступен);
//   - api.ErrMalformedResponse -> 502 (бэкенд ответил не по контракту);
//   - прочее -> 500/internal без утечки деталей.
func toHTTP(err error) (int, ErrorResponse) {
	switch {
	case err == nil:
		// Программная ошибка вызова: не маскируем баг "успешным" ответом.
		return http.StatusInternalServerError, errorResponse("internal", "internal error")

	case errors.Is(err, session.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse("unauthenticated", "not authenticated")

	case errors.Is(err, api.ErrUnavailable):
		return http.StatusBadGateway, errorResponse("backend_unavailable", "trading backend unavailable")

	case errors.Is(err, api.ErrMalformedResponse):
		return http.StatusBadGateway, errorResponse("bad_backend_response", "unexpected trading backend response")
	}

	var be *api.BackendError
	if errors.As(err, &be) {
		status := be.Status
		if status < http.StatusBadRequest || status > 599 {
			status = http.StatusBadGateway
		}

		code := "backend_error"
		if status == http.StatusUnauthorized {
			code = "unauthenticated"
		} else if len(be.Fields) > 0 {
			code = "validation_failed"
		}

		return status, errorResponse(code, be.Flatten())
	}

	return http.StatusInternalServerError, errorResponse("internal", "internal error")
}

// writeError — хелпер для хендлеров: статус/тело + request_id из заголовка.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := toHTTP(err)
	writeEnvelope(w, r, status, resp)
}

// writeBadRequest — ошибка разбора входного тела запроса.
func writeBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeEnvelope(w, r, http.StatusBadRequest, errorResponse("invalid_argument", message))
}

// writeEnvelope — единственная точка записи конверта ошибки:
// request_id из заголовка, Content-Type, статус, JSON-тело.
func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, resp ErrorResponse) {
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func errorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Message: message}}
}
