package main

import (
	"chatapp/backend/internal/api/handler"
	"chatapp/backend/internal/chat"
	"chatapp/backend/internal/chathub"
	"chatapp/backend/internal/config"
	"chatapp/backend/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-only-secret"

// setupStorage returns the message store and, when one is configured, the
// presence mirror.
func setupStorage(ctx context.Context, cfg config.Config) (storage.Storage, storage.PresenceStore) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Println("WARNING: Using in-memory storage, data is lost on restart.")
		s := storage.NewMemoryStore()
		return s, s

	case config.StoragePostgres:
		db, err := storage.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to set up PostgreSQL: %v", err)
		}
		rdb, err := storage.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect Redis: %v", err)
		}
		log.Println("Database connection established, migrations complete.")

		s := storage.NewStorageService(db, rdb)
		if rdb == nil {
			return s, nil
		}
		// Entries left by a previous run are stale.
		if err := s.ResetPresence(ctx); err != nil {
			log.Printf("WARNING: Failed to reset presence: %v", err)
		}
		return s, s

	default:
		log.Fatalf("Unknown STORAGE_DRIVER %q", cfg.StorageDriver)
		return nil, nil
	}
}

func main() {
	log.Println("Starting chat backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			log.Fatal("JWT_SECRET is not set")
		}
		log.Println("WARNING: JWT_SECRET is not set, using a development secret.")
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, presence := setupStorage(ctx, cfg)

	hub := chathub.NewManagerService(presence)
	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		hub.Run(hubCtx)
		close(hubDone)
	}()

	chatSvc := chat.NewService(store, hub)
	h := handler.NewHandler(chatSvc, hub, store, cfg)

	server := &http.Server{
		Addr:           cfg.Addr(),
		Handler:        handler.NewRouter(h),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Server is running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: HTTP shutdown: %v", err)
	}

	// Hijacked WebSocket connections are not tracked by the server; the hub
	// closes them.
	stopHub()
	<-hubDone
	log.Println("Server stopped.")
}
