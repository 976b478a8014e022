package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// Server жизненный цикл локального http сервера витрины
type Server struct {
	log *zap.Logger
	srv *http.Server
	cfg Config
}

func New(cfg Config, h http.Handler, log *zap.Logger) (*Server, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("server addr is empty")
	}
	if h == nil {
		return nil, fmt.Errorf("server handler is nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	return &Server{
		log: log,
		cfg: cfg,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           h,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
	}, nil
}

// Run занимает порт сразу, чтобы ошибка bind вернулась до ожидания ctx
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает ln до отмены ctx, после чего делает graceful shutdown
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("storefront is up", zap.String("url", "http://"+ln.Addr().String()))
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		s.log.Info("shutdown requested", zap.Error(ctx.Err()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}

		s.log.Info("shutdown complete")
		return nil

	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}
}
