// tokenstore хранит пару токенов сессии (access/refresh) в простом
// key-value виде. Никакой бизнес-логики: решение о валидности токенов
// принимает session-слой.
//
// Хранилище — единственный разделяемый изменяемый ресурс приложения,
// поэтому каждая реализация обязана быть потокобезопасной.
package tokenstore

import (
	"context"
	"errors"
)

// Фиксированные ключи хранилища. Отсутствие любого из них означает
// неаутентифицированную сессию; logout — удаление обоих ключей.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// ErrNoToken — запрошенный токен отсутствует в хранилище.
var ErrNoToken = errors.New("token not found")

// Store задаёт контракт хранилища токенов.
type Store interface {
	// AccessToken возвращает сохранённый access-токен (ErrNoToken, если его нет).
	AccessToken(ctx context.Context) (string, error)
	// RefreshToken возвращает сохранённый refresh-токен (ErrNoToken, если его нет).
	RefreshToken(ctx context.Context) (string, error)
	// SaveTokens атомарно сохраняет оба токена.
	SaveTokens(ctx context.Context, access, refresh string) error
	// SaveAccessToken заменяет access-токен, не трогая refresh-токен.
	SaveAccessToken(ctx context.Context, access string) error
	// Clear удаляет оба токена (logout / аварийная очистка).
	Clear(ctx context.Context) error
}
