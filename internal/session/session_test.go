package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-orderbook-dashboard/internal/models"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/tokenstore"
	"github.com/pribylovaa/go-orderbook-dashboard/mocks"
)

// Подпись не проверяется на клиенте, поэтому секрет произвольный.
var testSigningKey = []byte("unit-test-secret")

// mintToken собирает подписанный JWT с заданным сроком действия.
// user_id — число, как у настоящего бэкенда (целочисленный pk).
func mintToken(t *testing.T, name string, expiresAt time.Time) string {
	t.Helper()

	return mintTokenClaims(t, jwt.MapClaims{
		"user_id": 42,
		"name":    name,
		"email":   "trader@example.com",
		"balance": int64(1000),
		"exp":     expiresAt.Unix(),
	})
}

func mintTokenClaims(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	require.NoError(t, err)

	return token
}

// mintTokenNoExp собирает токен без exp (битый с точки зрения клиента).
func mintTokenNoExp(t *testing.T) string {
	t.Helper()

	return mintTokenClaims(t, jwt.MapClaims{"user_id": 42})
}

func newService(t *testing.T, now time.Time) (*Service, *tokenstore.MemoryStore, *mocks.MockAuthAPI) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	store := tokenstore.NewMemoryStore()
	auth := mocks.NewMockAuthAPI(ctrl)

	svc := New(store, auth)
	svc.SetClock(func() time.Time { return now })

	return svc, store, auth
}

func TestIsAuthenticated_NoToken(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, _, _ := newService(t, now)

	// Мок без ожиданий: любой сетевой вызов провалит тест.
	require.False(t, svc.IsAuthenticated(context.Background()))
}

func TestIsAuthenticated_ValidToken(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store, _ := newService(t, now)

	access := mintToken(t, "alice", now.Add(time.Hour))
	require.NoError(t, store.SaveTokens(context.Background(), access, access))

	require.True(t, svc.IsAuthenticated(context.Background()))
	// Повторная проверка не порождает сетевых вызовов.
	require.True(t, svc.IsAuthenticated(context.Background()))

	got, err := store.AccessToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, access, got)
}

func TestIsAuthenticated_MalformedToken_PurgesBoth(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store, _ := newService(t, now)

	refresh := mintToken(t, "alice", now.Add(24*time.Hour))
	require.NoError(t, store.SaveTokens(context.Background(), "not-a-jwt", refresh))

	require.False(t, svc.IsAuthenticated(context.Background()))

	_, err := store.AccessToken(context.Background())
	require.ErrorIs(t, err, tokenstore.ErrNoToken)
	_, err = store.RefreshToken(context.Background())
	require.ErrorIs(t, err, tokenstore.ErrNoToken)
}

func TestIsAuthenticated_MissingExp_TreatedAsMalformed(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store, _ := newService(t, now)

	require.NoError(t, store.SaveTokens(context.Background(), mintTokenNoExp(t), mintTokenNoExp(t)))

	require.False(t, svc.IsAuthenticated(context.Background()))

	_, err := store.AccessToken(context.Background())
	require.ErrorIs(t, err, tokenstore.ErrNoToken)
}

func TestIsAuthenticated_ExpiredAccess_SilentRefreshSucceeds(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store, auth := newService(t, now)

	expired := mintToken(t, "alice", now.Add(-time.Minute))
	refresh := mintToken(t, "alice", now.Add(24*time.Hour))
	fresh := mintToken(t, "alice", now.Add(time.Hour))
	require.NoError(t, store.SaveTokens(context.Background(), expired, refresh))

	auth.EXPECT().Refresh(gomock.Any(), refresh).Return(fresh, nil).Times(1)

	require.True(t, svc.IsAuthenticated(context.Background()))

	got, err := store.AccessToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, fresh, got)

	// Refresh-токен замена access не трогает.
	gotRefresh, err := store.RefreshToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, refresh, gotRefresh)
}

func TestIsAuthenticated_ExpiredAccess_RefreshCallFails_PurgesBoth(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store, auth := newService(t, now)

	expired := mintToken(t, "alice", now.Add(-time.Minute))
	refresh := mintToken(t, "alice", now.Add(24*time.Hour))
	require.NoError(t, store.SaveTokens(context.Background(), expired, refresh))

	auth.EXPECT().Refresh(gomock.Any(), refresh).Return("", errors.New("backend down")).Times(1)

	require.False(t, svc.IsAuthenticated(context.Background()))

	_, err := store.AccessToken(context.Background())
	require.ErrorIs(t, err, tokenstore.ErrNoToken)
	_, err = store.RefreshToken(context.Background())
	require.ErrorIs(t, err, tokenstore.ErrNoToken)
}

func TestIsAuthenticated_ExpiredAccess_ExpiredRefresh_NoNetworkCall(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store, _ := newService(t, now)

	expired := mintToken(t, "alice", now.Add(-time.Minute))
	expiredRefresh := mintToken(t, "alice", now.Add(-time.Second))
	require.NoError(t, store.SaveTokens(context.Background(), expired, expiredRefresh))

	// Мок без ожиданий: Refresh вызываться не должен.
	require.False(t, svc.IsAuthenticated(context.Background()))
}

func TestRefreshAccessToken_NoRefreshToken(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, _, _ := newService(t, now)

	require.False(t, svc.RefreshAccessToken(context.Background()))
}

func TestRefreshAccessToken_ExpiredRefresh_NoPurge(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store, _ := newService(t, now)

	access := mintToken(t, "alice", now.Add(time.Hour))
	expiredRefresh := mintToken(t, "alice", now.Add(-time.Hour))
	require.NoError(t, store.SaveTokens(context.Background(), access, expiredRefresh))

	require.False(t, svc.RefreshAccessToken(context.Background()))

	// Просроченный refresh сам по себе хранилище не чистит.
	got, err := store.AccessToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, access, got)
}

func TestRefreshAccessToken_MalformedRefresh_PurgesBoth(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store, _ := newService(t, now)

	access := mintToken(t, "alice", now.Add(time.Hour))
	require.NoError(t, store.SaveTokens(context.Background(), access, "garbage"))

	require.False(t, svc.RefreshAccessToken(context.Background()))

	_, err := store.AccessToken(context.Background())
	require.ErrorIs(t, err, tokenstore.ErrNoToken)
}

func TestRefreshAccessToken_Success_ReplacesAccessOnly(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store, auth := newService(t, now)

	access := mintToken(t, "alice", now.Add(-time.Minute))
	refresh := mintToken(t, "alice", now.Add(24*time.Hour))
	fresh := mintToken(t, "alice", now.Add(time.Hour))
	require.NoError(t, store.SaveTokens(context.Background(), access, refresh))

	auth.EXPECT().Refresh(gomock.Any(), refresh).Return(fresh, nil).Times(1)

	require.True(t, svc.RefreshAccessToken(context.Background()))

	gotAccess, err := store.AccessToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, fresh, gotAccess)

	gotRefresh, err := store.RefreshToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, refresh, gotRefresh)
}

// Токен с числовым user_id (форма настоящего бэкенда) — действующий:
// он не считается битым и не приводит к очистке хранилища.
func TestIsAuthenticated_IntegerUserIDClaim(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store, _ := newService(t, now)

	access := mintTokenClaims(t, jwt.MapClaims{
		"user_id": 42,
		"name":    "alice",
		"email":   "trader@example.com",
		"balance": int64(1000),
		"exp":     now.Add(time.Hour).Unix(),
	})
	require.NoError(t, store.SaveTokens(context.Background(), access, access))

	require.True(t, svc.IsAuthenticated(context.Background()))

	// Хранилище не тронуто.
	got, err := store.AccessToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, access, got)

	user, err := svc.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, "42", user.ID)
}

// Строковая форма user_id тоже принимается.
func TestCurrentUser_StringUserIDClaim(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store, _ := newService(t, now)

	access := mintTokenClaims(t, jwt.MapClaims{
		"user_id": "42",
		"name":    "alice",
		"email":   "trader@example.com",
		"balance": int64(1000),
		"exp":     now.Add(time.Hour).Unix(),
	})
	require.NoError(t, store.SaveTokens(context.Background(), access, access))

	user, err := svc.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, "42", user.ID)
}

func TestCurrentUser_ReadsClaims(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store, _ := newService(t, now)

	access := mintToken(t, "alice", now.Add(time.Hour))
	require.NoError(t, store.SaveTokens(context.Background(), access, access))

	user, err := svc.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, &models.UserProfile{
		ID:      "42",
		Name:    "alice",
		Email:   "trader@example.com",
		Balance: 1000,
	}, user)
}

func TestCurrentUser_AfterRefresh_UsesFreshToken(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store, auth := newService(t, now)

	expired := mintToken(t, "stale-name", now.Add(-time.Minute))
	refresh := mintToken(t, "stale-name", now.Add(24*time.Hour))
	fresh := mintToken(t, "fresh-name", now.Add(time.Hour))
	require.NoError(t, store.SaveTokens(context.Background(), expired, refresh))

	auth.EXPECT().Refresh(gomock.Any(), refresh).Return(fresh, nil).Times(1)

	user, err := svc.CurrentUser(context.Background())
	require.NoError(t, err)
	// Профиль перечитан из свежесохранённого токена.
	require.Equal(t, "fresh-name", user.Name)
}

func TestCurrentUser_Unauthenticated(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, _, _ := newService(t, now)

	_, err := svc.CurrentUser(context.Background())
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestLogin_Success_StoresPair(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store, auth := newService(t, now)

	access := mintToken(t, "alice", now.Add(time.Hour))
	refresh := mintToken(t, "alice", now.Add(24*time.Hour))

	auth.EXPECT().Login(gomock.Any(), "trader@example.com", "secret").
		Return(&models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil)

	require.NoError(t, svc.Login(context.Background(), "trader@example.com", "secret"))

	got, err := store.AccessToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, access, got)
}

func TestLogin_Failure_StoreUntouched(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store, auth := newService(t, now)

	oldAccess := mintToken(t, "alice", now.Add(time.Hour))
	require.NoError(t, store.SaveTokens(context.Background(), oldAccess, oldAccess))

	auth.EXPECT().Login(gomock.Any(), "trader@example.com", "wrong").
		Return(nil, errors.New("invalid credentials"))

	require.Error(t, svc.Login(context.Background(), "trader@example.com", "wrong"))

	// Прежняя сессия пережила неудачный вход.
	got, err := store.AccessToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, oldAccess, got)
}

func TestRegister_Success_StoresPair(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store, auth := newService(t, now)

	access := mintToken(t, "bob", now.Add(time.Hour))
	refresh := mintToken(t, "bob", now.Add(24*time.Hour))

	auth.EXPECT().Signup(gomock.Any(), "bob", "bob@example.com", "secret").
		Return(&models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil)

	require.NoError(t, svc.Register(context.Background(), "bob", "bob@example.com", "secret"))

	got, err := store.RefreshToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, refresh, got)
}

func TestLogout_ClearsSession(t *testing.T) {
	t.Parallel()

	now := time.Now()
	svc, store, _ := newService(t, now)

	access := mintToken(t, "alice", now.Add(time.Hour))
	require.NoError(t, store.SaveTokens(context.Background(), access, access))

	require.NoError(t, svc.Logout(context.Background()))
	require.False(t, svc.IsAuthenticated(context.Background()))
}

func TestAccessToken_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)

	// exp == now считается просроченным (секундная гранулярность).
	svc, store, _ := newService(t, now)
	boundary := mintToken(t, "alice", now)
	expiredRefresh := mintToken(t, "alice", now)
	require.NoError(t, store.SaveTokens(context.Background(), boundary, expiredRefresh))

	_, err := svc.AccessToken(context.Background())
	require.ErrorIs(t, err, ErrUnauthenticated)
}
