package main

import (
	"BlogHub/internal/cache"
	"BlogHub/internal/chatbot"
	"BlogHub/internal/config"
	"BlogHub/internal/handlers"
	"BlogHub/internal/middleware"
	"BlogHub/internal/repo"
	"BlogHub/internal/scheduler"
	"BlogHub/internal/service"
	"BlogHub/internal/storage"
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
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		sugar.Fatalw("failed to get sql.DB", "error", err)
	}
	defer sqlDB.Close()

	store, err := storage.NewStore(ctx, cfg.BlobBackend, cfg.BlobBucket, cfg.S3Region, gormDB)
	if err != nil {
		sugar.Fatalw("failed to initialize blob storage", "backend", cfg.BlobBackend, "error", err)
	}

	// кэш опционален: без REDIS_URL работаем напрямую с БД
	var blogCache cache.Cache = cache.Noop{}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL, "bloghub:")
		if err != nil {
			sugar.Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer rc.Close()
			blogCache = rc
		}
	}

	userRepo := repo.NewUserRepository(gormDB)
	blogRepo := repo.NewBlogRepository(gormDB)
	commentRepo := repo.NewCommentRepository(gormDB)

	userService := service.NewUserService(userRepo, blogCache, sugar)
	blogService := service.NewBlogService(
		blogRepo,
		commentRepo,
		store,
		storage.NewUploader(store, cfg.BlobMaxBytes()),
		sugar,
		service.WithCache(blogCache, cfg.CacheTTL),
	)

	if err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		sugar.Errorw("failed to seed admin account", "email", cfg.AdminEmail, "error", err)
	}

	var provider chatbot.Provider
	if cfg.ChatAPIKey != "" {
		provider = chatbot.NewOpenAIClient(cfg.ChatAPIURL, cfg.ChatAPIKey, cfg.ChatModel, cfg.ChatTimeout)
	} else {
		sugar.Warnw("CHAT_API_KEY is not set, chatbot answers only from rules")
	}
	bot := chatbot.NewBot(chatbot.DefaultRules, provider, sugar)

	if cfg.BlobGCCron != "" {
		gc := scheduler.NewBlobGC(store, blogRepo, cfg.BlobGCGrace, sugar)
		if err := gc.Start(cfg.BlobGCCron); err != nil {
			sugar.Fatalw("failed to schedule blob gc", "error", err)
		}
		defer gc.Stop()
	}

	h := handlers.NewHandler(userService, blogService, bot, sqlDB.PingContext, sugar, cfg)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sugar.Infow("Starting server",
		"addr", cfg.BaseURL,
		"db_driver", cfg.DBDriver,
		"blob_backend", cfg.BlobBackend,
		"static_dir", cfg.StaticDir,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			sugar.Errorw("Server failed", "error", err)
		}
	case <-ctx.Done():
		sugar.Infow("Shutting down")
		shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Graceful shutdown failed", "error", err)
		}
	}
}
