// session управляет жизненным циклом клиентской сессии:
// хранением пары токенов, определением истечения access-токена и
// «тихим» обновлением через refresh-токен.
//
// Основные аспекты:
//   - Состояние сессии нигде не кэшируется: оно каждый раз выводится из
//     текущего содержимого хранилища, поэтому внешний logout виден сразу.
//   - Обновление ленивое — только в момент обращения, без фоновых
//     таймеров.
//   - Вся мутация хранилища сериализована мьютексом: несколько горутин
//     не могут одновременно крутить refresh-цикл.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pribylovaa/go-orderbook-dashboard/internal/models"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/pkg/log"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/pkg/redact"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/tokenstore"
)

// ErrUnauthenticated — действующей сессии нет: токены отсутствуют,
// просрочены без возможности обновления или биты.
var ErrUnauthenticated = errors.New("not authenticated")

// AuthAPI — минимальный контракт бэкенда аутентификации.
type AuthAPI interface {
	// Signup регистрирует пользователя и возвращает пару токенов.
	Signup(ctx context.Context, username, email, password string) (*models.TokenPair, error)
	// Login выполняет вход и возвращает пару токенов.
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	// Refresh обменивает refresh-токен на новый access-токен.
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// Service — единственный владелец хранилища токенов.
// Остальные компоненты получают состояние сессии только через него.
type Service struct {
	store tokenstore.Store
	auth  AuthAPI
	now   func() time.Time

	// mu сериализует refresh-цикл и связанные мутации хранилища.
	mu sync.Mutex
}

// New создаёт новый экземпляр Service.
func New(store tokenstore.Store, auth AuthAPI) *Service {
	return &Service{
		store: store,
		auth:  auth,
		now:   time.Now,
	}
}

// SetClock подменяет источник времени (для тестов).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// IsAuthenticated сообщает, есть ли действующая сессия.
// Просроченный access-токен вызывает ровно один цикл тихого обновления;
// неудача цикла очищает оба токена.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	_, err := s.ensureAccess(ctx)
	return err == nil
}

// AccessToken возвращает действующий access-токен, при необходимости
// предварительно обновив его. ErrUnauthenticated — сессии нет.
func (s *Service) AccessToken(ctx context.Context) (string, error) {
	const op = "session.AccessToken"

	token, err := s.ensureAccess(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// CurrentUser возвращает профиль владельца сессии, извлечённый из
// access-токена. После успешного обновления профиль перечитывается из
// свежесохранённого токена, а не из старого разбора.
func (s *Service) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	const op = "session.CurrentUser"

	token, err := s.ensureAccess(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	claims, err := decodeClaims(token)
	if err != nil {
		// ensureAccess уже декодировал токен; сюда можно попасть только
		// при порче хранилища между вызовами.
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	return &models.UserProfile{
		ID:      string(claims.UserID),
		Name:    claims.Name,
		Email:   claims.Email,
		Balance: claims.Balance,
	}, nil
}

// RefreshAccessToken выполняет один цикл тихого обновления.
// Возвращает true, если в хранилище лежит новый действующий access-токен.
func (s *Service) RefreshAccessToken(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.refreshLocked(ctx)
}

// Login выполняет вход; при успехе сохраняет оба токена.
// При ошибке хранилище не трогается — прежняя сессия (если была) остаётся.
func (s *Service) Login(ctx context.Context, email, password string) error {
	const op = "session.Login"

	lg := log.From(ctx)

	pair, err := s.auth.Login(ctx, email, password)
	if err != nil {
		lg.Warn("login_failed",
			slog.String("op", op),
			slog.String("email", redact.Email(email)),
		)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("login_ok", slog.String("email", redact.Email(email)))
	return nil
}

// Register регистрирует пользователя; при успехе сохраняет оба токена.
func (s *Service) Register(ctx context.Context, username, email, password string) error {
	const op = "session.Register"

	lg := log.From(ctx)

	pair, err := s.auth.Signup(ctx, username, email, password)
	if err != nil {
		lg.Warn("register_failed",
			slog.String("op", op),
			slog.String("email", redact.Email(email)),
		)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("register_ok", slog.String("email", redact.Email(email)))
	return nil
}

// Logout удаляет оба токена.
func (s *Service) Logout(ctx context.Context) error {
	const op = "session.Logout"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ensureAccess возвращает действующий access-токен.
//
// Порядок: чтение -> проверка срока -> (однократно) тихое обновление ->
// повторное чтение. Явный двухшаговый автомат вместо рекурсии: после
// неудачного обновления выхода два — токен или ErrUnauthenticated.
func (s *Service) ensureAccess(ctx context.Context) (string, error) {
	const op = "session.ensureAccess"

	lg := log.From(ctx)

	access, err := s.store.AccessToken(ctx)
	if err != nil {
		// Нет токена — нет сессии; сетевых вызовов не делаем.
		return "", ErrUnauthenticated
	}

	claims, err := decodeClaims(access)
	if err != nil {
		// Битый токен: аварийная очистка, чтобы не предъявлять его бэкенду.
		lg.Warn("access_token_malformed",
			slog.String("op", op),
			slog.String("token", redact.Token()),
		)
		_ = s.clear(ctx)
		return "", ErrUnauthenticated
	}

	if !claims.expiredAt(s.now()) {
		return access, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Пока брали мьютекс, параллельный вызов мог уже обновить токен.
	if access, err := s.store.AccessToken(ctx); err == nil {
		if claims, err := decodeClaims(access); err == nil && !claims.expiredAt(s.now()) {
			return access, nil
		}
	}

	if !s.refreshLocked(ctx) {
		lg.Info("silent_refresh_failed", slog.String("op", op))
		_ = s.store.Clear(ctx)
		return "", ErrUnauthenticated
	}

	access, err = s.store.AccessToken(ctx)
	if err != nil {
		return "", ErrUnauthenticated
	}

	lg.Debug("silent_refresh_ok", slog.String("op", op))
	return access, nil
}

// refreshLocked — тело refresh-цикла; вызывается строго под s.mu.
//
// Контракт:
//   - refresh-токена нет -> false, без сетевого вызова;
//   - refresh-токен бит -> очистка обоих токенов, false, без вызова;
//   - refresh-токен просрочен -> false, без вызова и без очистки;
//   - сбой вызова -> очистка обоих токенов, false (полный re-login
//     вместо частичного состояния);
//   - успех -> атомарная замена access-токена, refresh не трогаем.
func (s *Service) refreshLocked(ctx context.Context) bool {
	const op = "session.refreshLocked"

	lg := log.From(ctx)

	refresh, err := s.store.RefreshToken(ctx)
	if err != nil {
		return false
	}

	claims, err := decodeClaims(refresh)
	if err != nil {
		lg.Warn("refresh_token_malformed", slog.String("op", op))
		_ = s.store.Clear(ctx)
		return false
	}

	if claims.expiredAt(s.now()) {
		return false
	}

	access, err := s.auth.Refresh(ctx, refresh)
	if err != nil {
		lg.Warn("refresh_call_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		_ = s.store.Clear(ctx)
		return false
	}

	if err := s.store.SaveAccessToken(ctx, access); err != nil {
		lg.Error("refresh_save_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		_ = s.store.Clear(ctx)
		return false
	}

	return true
}

// clear — очистка под мьютексом для путей вне refresh-цикла.
func (s *Service) clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.Clear(ctx)
}
