package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/DoyleJ11/word-guess-backend/internal/config"
	"github.com/DoyleJ11/word-guess-backend/internal/httpapi"
	"github.com/DoyleJ11/word-guess-backend/internal/hub"
	"github.com/DoyleJ11/word-guess-backend/internal/lobby"
	"github.com/DoyleJ11/word-guess-backend/internal/logging"
	"github.com/DoyleJ11/word-guess-backend/internal/store"
	"github.com/DoyleJ11/word-guess-backend/internal/ws"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type archive interface {
	lobby.Recorder
	httpapi.Archive
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var games archive = store.Nop{}
	if cfg.DatabaseURL != "" {
		s, err := store.Open(cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		games = s
		logger.Info("game archive enabled")
	}

	h := hub.NewHub(context.Background(), hub.Config{Logger: logger, Recorder: games})

	// Build the router *with* the hub injected
	handler := httpapi.SetupRoutes(httpapi.Deps{
		Hub:            h,
		Archive:        games,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		WS: ws.Options{
			Logger:         logger,
			OriginPatterns: cfg.AllowedOrigins,
			ReadTimeout:    cfg.ReadTimeout,
			MessageRate:    cfg.MessageRate,
			MessageBurst:   cfg.MessageBurst,
		},
	})

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: handler,
		// Websocket handlers outlive Shutdown; this context ends them on a signal.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return multierr.Append(err, games.Close())
		}
		return games.Close()
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Stop accepting connections, stop every room and its pending archive
	// writes, then close the archive.
	err := srv.Shutdown(shutdownCtx)
	err = multierr.Append(err, h.Shutdown(shutdownCtx))
	err = multierr.Append(err, games.Close())
	return err
}
