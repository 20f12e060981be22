package api

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"
)

// fallbackMessage — сообщение, когда из ответа не удалось извлечь ничего осмысленного.
const fallbackMessage = "an unexpected error occurred"

// BackendError — структурированная ошибка бэкенда (non-2xx ответ).
//
// Бэкенд сообщает об ошибках валидации объектом «поле -> сообщение
// или список сообщений»; такие ответы попадают в Fields. Прочие тела
// (строка, не-JSON) сохраняются в Message как есть.
type BackendError struct {
	// Status — HTTP-статус ответа.
	Status int
	// Fields — сообщения валидации по полям, ключ — имя поля.
	Fields map[string][]string
	// Message — сообщение верхнего уровня (если Fields пуст).
	Message string
}

func (e *BackendError) Error() string {
	return e.Flatten()
}

// Flatten сводит ошибку к одной человекочитаемой строке.
//
// Пары «поле: сообщения» соединяются через "; ", сообщения одного поля —
// через ", ". Поля упорядочены по алфавиту: map в Go не сохраняет порядок,
// а сообщение обязано быть детерминированным.
func (e *BackendError) Flatten() string {
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
		}

		return strings.Join(parts, "; ")
	}

	if e.Message != "" {
		return e.Message
	}

	return fallbackMessage
}

// newBackendError разбирает тело non-2xx ответа.
// Объект трактуется как карта ошибок валидации, строка — как сообщение,
// всё прочее сводится к fallbackMessage.
func newBackendError(resp *http.Response) *BackendError {
	be := &BackendError{Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		be.Message = http.StatusText(resp.StatusCode)
		return be
	}

	var asObject map[string]any
	if err := json.Unmarshal(raw, &asObject); err == nil {
		be.Fields = flattenFields(asObject)
		return be
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		be.Message = asString
		return be
	}

	be.Message = strings.TrimSpace(string(raw))
	if be.Message == "" {
		be.Message = fallbackMessage
	}

	return be
}

// flattenFields приводит значения произвольной формы к спискам строк.
func flattenFields(obj map[string]any) map[string][]string {
	fields := make(map[string][]string, len(obj))

	for key, value := range obj {
		switch v := value.(type) {
		case string:
			fields[key] = []string{v}
		case []any:
			msgs := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					msgs = append(msgs, s)
					continue
				}
				msgs = append(msgs, jsonString(item))
			}
			fields[key] = msgs
		default:
			fields[key] = []string{jsonString(v)}
		}
	}

	return fields
}

func jsonString(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fallbackMessage
	}

	return string(raw)
}
