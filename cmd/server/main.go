package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pricelens/backend/config"
	httpDelivery "github.com/pricelens/backend/internal/delivery/http"
	"github.com/pricelens/backend/internal/infrastructure/cache"
	"github.com/pricelens/backend/internal/infrastructure/metrics"
	"github.com/pricelens/backend/internal/infrastructure/settings"
	"github.com/pricelens/backend/internal/infrastructure/sqlite"
	"github.com/pricelens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting PriceLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	repo, err := sqlite.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open history store: %v", err)
	}
	defer repo.Close()
	log.Printf("History store: %s", cfg.Store.Path)

	memoryCache := cache.NewMemoryCache(cfg.Cache.CleanupInterval)
	defer memoryCache.Close()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	provider, err := settings.NewProvider(cfg.Comparison.DefaultTaxRate, cfg.Comparison.DefaultUnit)
	if err != nil {
		log.Fatalf("Invalid comparison defaults: %v", err)
	}

	// Initialize usecase layer
	debug := cfg.Server.Environment == "development"
	engine := usecase.NewComparisonEngine(usecase.EngineConfig{
		EnableTrace: cfg.Comparison.EnableTrace,
	})
	historyService := usecase.NewHistoryService(
		repo,
		memoryCache,
		engine,
		usecase.HistoryServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			MaxParallel:        cfg.Comparison.MaxParallel,
			DefaultListLimit:   cfg.Comparison.HistoryLimit,
			EnableDebugLogging: debug,
		},
	)

	log.Printf("Comparison: default tax=%v, default unit=%s, trace=%v, debug=%v",
		cfg.Comparison.DefaultTaxRate,
		cfg.Comparison.DefaultUnit,
		cfg.Comparison.EnableTrace,
		debug)

	m := metrics.New()
	handler := httpDelivery.NewHandler(engine, historyService, provider, m)
	router := httpDelivery.SetupRouter(cfg, handler, m)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutdown signal received, draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
