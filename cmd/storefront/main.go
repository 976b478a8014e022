package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/squaredbusinessman/storefront-client/internal/app"
	"github.com/squaredbusinessman/storefront-client/internal/config"
	"github.com/squaredbusinessman/storefront-client/internal/logger"
)

func main() {
	// грузим конфиг
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// валидируем загруженный конфиг
	if err = cfg.Validate(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err = logger.Initialize(cfg.LogLevel); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = app.Run(ctx, cfg, logger.Log); err != nil {
		logger.Log.Error("storefront stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
