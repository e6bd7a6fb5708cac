package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tryon-bot/config"
	telegram "tryon-bot/internal/api"
	"tryon-bot/internal/container"
	"tryon-bot/internal/httpapi"
	"tryon-bot/internal/infrastructure/storage"
	"tryon-bot/internal/logger"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Server.Mode)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	// Создаём хранилище пользователей
	userRepo := storage.NewMemoryUserRepository()

	// Собираем сервисы приложения
	appContainer, err := container.New(cfg, userRepo, log)
	if err != nil {
		log.Fatal("failed to build container", zap.Error(err))
	}
	defer appContainer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.Mode)
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      httpapi.NewRouter(appContainer.Handler, log, cfg.Server.MaxBodySize),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.Telegram.Token != "" {
		bot, err := telegram.NewBot(cfg.Telegram.Token, appContainer.UserService, appContainer.SessionService, log)
		if err != nil {
			log.Fatal("failed to create bot", zap.Error(err))
		}
		g.Go(func() error {
			log.Info("bot is running")
			return bot.Run(gctx)
		})
	} else {
		log.Warn("TRYON_TELEGRAM_TOKEN is empty, bot disabled")
	}

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		return
	}
	log.Info("server exiting")
}
