package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-orderbook-dashboard/internal/api"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/config"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/dashboard"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/market"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/session"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/tokenstore"
	"github.com/pribylovaa/go-orderbook-dashboard/internal/web"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const usageText = `usage: dashboard [--config path] <command> [flags]

commands:
  register  -username -email -password   register and start a session
  login     -email -password             log in and store tokens
  logout                                 drop the stored session
  whoami                                 show the current session owner
  submit    -side -price -quantity       place an order
  show                                   one-shot dashboard snapshot
  watch     [-interval]                  periodic dashboard refresh
  serve                                  local JSON API for the web UI
`

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usageText) }
	flag.Parse()

	// .env — удобство локального запуска; отсутствие файла не ошибка.
	_ = godotenv.Load()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	app, err := newApp(rootCtx, cfg, log)
	if err != nil {
		log.Error("init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer app.close()

	if err := app.run(rootCtx, args[0], args[1:]); err != nil {
		log.Error("command_failed",
			slog.String("command", args[0]),
			slog.String("err", err.Error()),
		)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app — собранное приложение: хранилище, сессия, торговый слой, синхронизатор.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	store   tokenstore.Store
	session *session.Service
	market  *market.Service
	sync    *dashboard.Synchronizer
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	store, err := buildStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	client, err := api.New(cfg.API.BaseURL, cfg.API.Timeout)
	if err != nil {
		return nil, err
	}

	sess := session.New(store, client)
	mkt := market.New(sess, client)

	return &app{
		cfg:     cfg,
		log:     log,
		store:   store,
		session: sess,
		market:  mkt,
		sync:    dashboard.New(mkt, sess),
	}, nil
}

// buildStore выбирает бэкенд хранилища токенов по конфигурации.
func buildStore(ctx context.Context, cfg config.StoreConfig) (tokenstore.Store, error) {
	switch cfg.Kind {
	case "file", "":
		return tokenstore.NewFileStore(cfg.Path)
	case "memory":
		return tokenstore.NewMemoryStore(), nil
	case "redis":
		return tokenstore.NewRedisStore(ctx, cfg.RedisURL, "")
	default:
		return nil, fmt.Errorf("unknown token store kind %q", cfg.Kind)
	}
}

func (a *app) close() {
	if c, ok := a.store.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			a.log.Warn("store_close_failed", slog.String("err", err.Error()))
		}
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return a.cmdRegister(ctx, args)
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		return a.cmdLogout(ctx)
	case "whoami":
		return a.cmdWhoami(ctx)
	case "submit":
		return a.cmdSubmit(ctx, args)
	case "show":
		return a.cmdShow(ctx)
	case "watch":
		return a.cmdWatch(ctx, args)
	case "serve":
		return a.cmdServe(ctx)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

// cmdServe поднимает локальный HTTP-сервер дашборда с graceful-остановкой.
func (a *app) cmdServe(ctx context.Context) error {
	handlers := web.NewHandlers(a.session, a.market, a.sync)
	apiHandler := web.NewRouter(handlers, web.Options{
		Logger:  a.log,
		Timeout: a.cfg.Timeouts.Service,
	})

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", apiHandler)

	httpAddr := a.cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", httpAddr, err)
	}

	a.log.Info("http_listen_start", slog.String("addr", httpAddr))

	// Первоначальная загрузка: без сессии молча пропускается.
	if err := a.sync.InitialLoad(ctx); err != nil {
		a.log.Warn("initial_load_failed", slog.String("err", err.Error()))
	}

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)
	a.log.Info("dashboard_ready")

	select {
	case <-ctx.Done():
		a.log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			a.log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		a.log.Info("http_stopped")
	}

	return nil
}
