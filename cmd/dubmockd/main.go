// Command dubmockd serves an in-memory stand-in for the dubbing
// platform backend, for demos and local development of the dubdeck
// CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"dubdeck/internal/config"
	"dubdeck/internal/logging"
	"dubdeck/internal/mockserver"
)

func main() {
	addr := flag.String("addr", ":8787", "listen address")
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	server := &http.Server{
		Addr:    *addr,
		Handler: mockserver.New(logger).Handler(),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("mock backend failed", slog.Any("error", err))
			cancel()
		}
	}()
	logger.Info("mock backend listening", slog.String("addr", *addr))

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", slog.Any("error", err))
	}
	logger.Info("dubmockd shutting down")
}
