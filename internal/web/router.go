// web — локальный HTTP-интерфейс дашборда: JSON API поверх
// session/market/dashboard-слоёв для браузерного фронта.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-orderbook-dashboard/internal/web/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(h *Handlers, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации всех эндпойнтов локального API.
func registerRoutes(r chi.Router, h *Handlers) {
	// сессия
	r.Post("/api/register", h.Register)
	r.Post("/api/login", h.Login)
	r.Post("/api/logout", h.Logout)
	r.Get("/api/session", h.CurrentSession)

	// торговля и снимок дашборда
	r.Post("/api/orders", h.SubmitOrder)
	r.Post("/api/refresh", h.Refresh)
	r.Get("/api/snapshot", h.Snapshot)
}
