package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"rentfunnel/internal/config"
	"rentfunnel/internal/database"
	"rentfunnel/internal/repository"
	"rentfunnel/internal/session"
	"rentfunnel/internal/storage"
	"rentfunnel/internal/storage/memory"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := config.InitLogger(cfg.Log); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zap.L().Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, sessions, closeDB, err := openStorage(ctx, cfg)
	if err != nil {
		zap.L().Fatal("open storage", zap.Error(err))
	}
	defer closeDB()

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	a := newApp(cfg, provider, sessions)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("starting server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("storage", provider.Name()),
			zap.String("env", cfg.AppEnv),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("shutting down")

	a.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("graceful shutdown", zap.Error(err))
	}
}

// openStorage picks the backend from STORAGE_DRIVER. Session blobs follow
// the same backend so a restart keeps visitor state on sql.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Provider, session.Store, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		return memory.New(), session.NewMemoryStore(), func() {}, nil
	}

	db, err := database.Connect(cfg.DatabaseURL, database.Options{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		LogQueries:      cfg.Log.Level == "debug",
	})
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		if err := database.Close(db); err != nil {
			zap.L().Error("close database", zap.Error(err))
		}
	}

	p, err := repository.New(ctx, db)
	if err != nil {
		closeDB()
		return nil, nil, nil, err
	}
	return p, repository.NewSessionStore(db), closeDB, nil
}
