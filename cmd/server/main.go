package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blockbase/internal/config"
	"blockbase/internal/handler"
	"blockbase/internal/hub"
	"blockbase/internal/logging"
	"blockbase/internal/middleware"
	"blockbase/internal/repository/sqlite"
	"blockbase/internal/service"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "config file path (overrides search path)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	var (
		cfg  *config.Config
		from string
		err  error
	)
	if *configPath != "" {
		cfg, from, err = config.LoadFromPath(*configPath)
	} else {
		cfg, from, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if from != "" {
		logger.Info("config loaded", zap.String("path", from))
	}

	// Bring the store to the latest schema before anything else runs.
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer store.Close()
	logger.Info("database opened", zap.String("path", cfg.Database.Path))

	bus := service.NewEventBus()

	sseHub := hub.New(logger)
	go sseHub.Run()

	eventChan := make(chan service.Event, 100)
	bus.Subscribe(eventChan)
	go func() {
		for event := range eventChan {
			sseHub.Broadcast(event)
		}
	}()

	svc := service.New(store, bus)

	mux := http.NewServeMux()
	handler.New(svc, logger).Register(mux)
	mux.Handle("GET /api/events", sseHub)

	finalHandler := middleware.Chain(mux,
		middleware.CORS(cfg.Server.CORSOrigins),
		middleware.Recover(logger),
		middleware.Logger(logger),
		middleware.RequestID,
	)

	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     finalHandler,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
		// No WriteTimeout: the SSE stream stays open indefinitely.
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
