package main

import (
	"GophBox/internal/blob"
	"GophBox/internal/config"
	"GophBox/internal/handlers"
	"GophBox/internal/middleware"
	"GophBox/internal/repo"
	"GophBox/internal/service"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := newLogger(cfg.LogJSON)
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	store, err := blob.NewStore(ctx, cfg.BlobConfig())
	if err != nil {
		sugar.Fatalw("failed to initialize blob storage", "type", cfg.StorageType, "error", err)
	}
	var blobs http.Handler
	if local, ok := store.(*blob.LocalStore); ok {
		blobs = local.Handler(handlers.BlobsPrefix)
	}

	userService := service.NewUserService(repo.NewUserRepository(gormDB))
	fileService := service.NewFileService(
		repo.NewFileRepository(gormDB),
		store,
		sugar,
		service.WithTrashWorkers(cfg.TrashWorkers),
		service.WithMaxDepth(cfg.MaxFolderDepth),
	)

	h := handlers.NewHandler(userService, fileService, sugar, cfg, blobs)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"StorageType", cfg.StorageType,
		"MaxUploadMB", cfg.MaxUploadMB,
		"TrashWorkers", cfg.TrashWorkers,
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("graceful shutdown failed", "error", err)
		}
	}()

	sugar.Infow("Starting server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}

func newLogger(json bool) (*zap.Logger, error) {
	if json {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
