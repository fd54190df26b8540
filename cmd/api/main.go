package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gambit-server/internal/server"
)

func gracefulShutdown(gameServer *server.Server, httpServer *http.Server, log *zap.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("shutdown signal received")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close push connections first so clients see a clean goaway before the
	// listener stops accepting.
	if err := gameServer.Shutdown(ctx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("http server forced to shut down", zap.Error(err))
	}

	done <- true
}

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("logger: %s", err))
	}
	defer log.Sync()

	cfg, err := server.LoadConfig()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	gameServer, httpServer := server.NewHTTPServer(cfg, log)

	done := make(chan bool, 1)
	go gracefulShutdown(gameServer, httpServer, log, done)

	log.Info("listening", zap.Int("port", cfg.Port))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("http server error", zap.Error(err))
	}

	<-done
	log.Info("graceful shutdown complete")
}
