package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet-backend/internal/cache"
	"fleet-backend/internal/config"
	"fleet-backend/internal/database"
	"fleet-backend/internal/db"
	"fleet-backend/internal/fleet"
	"fleet-backend/internal/handlers"
	"fleet-backend/internal/health"
	h "fleet-backend/internal/http"
	"fleet-backend/internal/middleware"
	"fleet-backend/internal/repositories"
	"fleet-backend/internal/services"
	"fleet-backend/internal/upstream"
	"fleet-backend/internal/ws"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg := config.Load()

	// Summary cache is optional; every accessor degrades to a miss
	if err := cache.Init(cfg); err != nil {
		log.Printf("[Cache] Redis unavailable, running without summary cache: %v", err)
	} else {
		log.Printf("[Cache] Redis connected")
	}

	// Collection journal is optional
	var pool *pgxpool.Pool
	var journal *repositories.CollectionEventRepository
	if cfg.Journal.Enabled {
		pool = db.Connect(cfg)
		defer pool.Close()

		migrator := database.NewMigrator(pool)
		if err := migrator.RunMigrations(context.Background()); err != nil {
			log.Fatalf("journal migrations failed: %v", err)
		}
		journal = repositories.NewCollectionEventRepository(pool)
		log.Printf("[Journal] Collection history enabled")
	} else {
		log.Printf("[Journal] Collection history disabled")
	}

	client := upstream.NewClient(
		cfg.Upstream.BaseURL,
		cfg.Upstream.SessionToken,
		time.Duration(cfg.Upstream.TimeoutSeconds)*time.Second,
	)

	store := fleet.NewStore(client, fleet.LogNotifier{})

	hub := ws.NewHub()
	go hub.Run()

	fleetService := services.NewFleetService(store, client, journal, hub)
	reportService := services.NewReportService(store, journal)

	healthChecker := health.NewHealthChecker(pool, store)

	router := h.NewRouter(
		handlers.NewDispenserHandler(fleetService),
		handlers.NewOwnerHandler(fleetService),
		handlers.NewHistoryHandler(journal),
		handlers.NewReportHandler(reportService),
		handlers.NewUserHandler(fleetService),
		handlers.NewHealthHandler(healthChecker),
		handlers.NewSystemHandler(),
		hub,
	)

	corsHandler := middleware.NewCORS(cfg)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: corsHandler(router),
	}

	// Warm the fleet snapshot; failures are retried lazily on first request
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := store.Load(ctx); err != nil {
			log.Printf("[Fleet] Initial load failed, will retry on demand: %v", err)
		} else {
			log.Printf("[Fleet] Snapshot loaded: %d dispensers, %d owners", len(store.Dispensers()), len(store.Owners()))
		}
	}()

	go func() {
		log.Printf("[Server] Listening on %s (upstream %s)", server.Addr, cfg.Upstream.BaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("[Server] Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[Server] Forced shutdown: %v", err)
	}
}
