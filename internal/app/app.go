package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/squaredbusinessman/storefront-client/internal/auth"
	"github.com/squaredbusinessman/storefront-client/internal/client"
	"github.com/squaredbusinessman/storefront-client/internal/config"
	"github.com/squaredbusinessman/storefront-client/internal/handler"
	myMiddleware "github.com/squaredbusinessman/storefront-client/internal/middleware"
	"github.com/squaredbusinessman/storefront-client/internal/repository"
	"github.com/squaredbusinessman/storefront-client/internal/server"
	"github.com/squaredbusinessman/storefront-client/internal/service"
	"github.com/squaredbusinessman/storefront-client/internal/session"
	"github.com/squaredbusinessman/storefront-client/internal/view"
	"github.com/squaredbusinessman/storefront-client/migrations"
)

func Run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	slot, closeSlot, err := openSlot(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSlot()
	log.Info("session storage ready", zap.String("storage", cfg.SessionStorage))

	sessions := session.NewStore(slot, auth.NewTokenInspector())

	// без таймаута: запрос к сервису живет, пока жив запрос браузера
	httpClient := &http.Client{}
	users := client.NewUserClient(client.New(cfg.UserServiceAddress, httpClient))
	products := client.NewProductClient(client.New(cfg.ProductServiceAddress, httpClient))
	orders := client.NewOrderClient(client.New(cfg.OrderServiceAddress, httpClient))

	board := view.NewBoard(cfg.AlertTTL, nil)
	ctrl := service.NewController(users, products, orders, sessions, board)

	// восстановление сессии до старта сервера, первая страница уже знает экран
	h := handler.NewHandler(ctrl, board, ctrl.Start(ctx))

	// WriteTimeout не ставим, действие UI ждет ответа сервиса сколько нужно
	srv, err := server.New(server.Config{
		Addr:              cfg.RunAddress,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}, buildHandlers(h), log)
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	return srv.Run(ctx)
}

// openSlot поднимает выбранное хранилище сессии. Вторым значением идет закрытие ресурсов.
func openSlot(ctx context.Context, cfg config.Config) (repository.Slot, func(), error) {
	switch cfg.SessionStorage {
	case config.StorageRedis:
		rdb, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("init redis: %w", err)
		}
		return repository.NewRedisStorage(rdb, cfg.SessionKey), func() { _ = rdb.Close() }, nil

	case config.StoragePostgres:
		// контекст-таймаут для старта БД, чтобы избежать зависаний при запуске
		startCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		pool, err := pgxpool.New(startCtx, cfg.DatabaseURI)
		if err != nil {
			return nil, nil, fmt.Errorf("init pgxpool: %w", err)
		}
		if err = pool.Ping(startCtx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("db ping: %w", err)
		}
		if err = migrations.Up(pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrations up: %w", err)
		}
		return repository.NewDBStorage(pool, cfg.SessionKey), pool.Close, nil

	case config.StorageFile:
		return repository.NewFileStorage(cfg.SessionFile), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown session storage %q", cfg.SessionStorage)
	}
}

func buildHandlers(h *handler.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.StripSlashes)

	// открытые маршруты
	r.Get("/", h.Index)
	r.Get("/healthz", h.Healthz)
	r.Get("/auth/login", h.ShowLogin)
	r.Get("/auth/register", h.ShowRegister)
	r.Post("/login", h.Login)
	r.Post("/register", h.Register)
	r.Post("/logout", h.Logout)
	r.Post("/alerts/{id}/dismiss", h.DismissAlert)

	// только с активной сессией
	r.Group(func(mainRoutes chi.Router) {
		mainRoutes.Use(myMiddleware.SessionGuard(h))
		mainRoutes.Get("/tabs/{tab}", h.SwitchTab)
		mainRoutes.Get("/products/search", h.Search)
		mainRoutes.Post("/products/add", h.AddProduct)
		mainRoutes.Post("/draft", h.OpenDraft)
		mainRoutes.Post("/draft/submit", h.SubmitDraft)
		mainRoutes.Post("/draft/cancel", h.CancelDraft)
	})

	// RequestID снаружи логгера, чтобы id попал в лог запроса
	return myMiddleware.Conveyor(r, myMiddleware.RequestLogger(h), chiMiddleware.RequestID)
}
