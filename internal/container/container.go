package container

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tryon-bot/config"
	app "tryon-bot/internal/application"
	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/domain/port"
	"tryon-bot/internal/guard"
	"tryon-bot/internal/httpapi"
	"tryon-bot/internal/infrastructure/cache"
	"tryon-bot/internal/infrastructure/generation"
	"tryon-bot/internal/infrastructure/vision"
	"tryon-bot/internal/raster"
)

type Container struct {
	UserService         *app.UserService
	SegmentationService *app.SegmentationService
	ProfileService      *app.ProfileService
	TryOnService        *app.TryOnService
	SessionService      *app.TryOnSessionService
	Guard               *guard.Guard
	Handler             *httpapi.Handler

	closers []func() error
}

// New собирает сервисы по конфигу. Недоступный redis не ошибка: остаётся кэш в памяти.
func New(cfg *config.Config, userRepo port.UserRepository, log *zap.Logger) (*Container, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Container{}

	scorer, err := raster.ScorerByName(cfg.Guard.Scorer)
	if err != nil {
		return nil, fmt.Errorf("guard: %w", err)
	}

	analyzer, err := c.buildAnalyzer(cfg.Vision, log)
	if err != nil {
		c.Close()
		return nil, err
	}

	segMemory := cache.NewMemoryStore[*entity.SegmentationResult](cfg.Cache.TTL, cfg.Cache.Cleanup)
	profileMemory := cache.NewMemoryStore[entity.AppearanceProfile](cfg.Cache.TTL, cfg.Cache.Cleanup)
	var (
		segCache     port.Cache[*entity.SegmentationResult] = segMemory
		profileCache port.Cache[entity.AppearanceProfile]   = profileMemory
	)

	if client := c.connectRedis(cfg.Redis, log); client != nil {
		segCache = cache.NewLayered[*entity.SegmentationResult](segMemory,
			cache.NewRedisStore[*entity.SegmentationResult](client, "tryon:", cfg.Cache.TTL, cache.SegmentationCodec{}, log))
		profileCache = cache.NewLayered[entity.AppearanceProfile](profileMemory,
			cache.NewRedisStore[entity.AppearanceProfile](client, "tryon:", cfg.Cache.TTL, cache.MsgpackCodec[entity.AppearanceProfile]{}, log))
	}

	generator := generation.NewClient(cfg.Generation.Endpoint, cfg.Generation.APIKey, cfg.Generation.Timeout, log)

	c.Guard = guard.New(scorer, log)
	c.UserService = app.NewUserService(userRepo)
	c.SegmentationService = app.NewSegmentationService(analyzer, segCache, cfg.MaskOptions(), log)
	c.ProfileService = app.NewProfileService(profileCache, log)
	c.TryOnService = app.NewTryOnService(c.SegmentationService, c.ProfileService, generator, c.Guard, cfg.PostProcessingOptions, log)
	c.SessionService = app.NewTryOnSessionService(c.UserService, c.TryOnService)
	c.Handler = httpapi.NewHandler(c.SegmentationService, c.TryOnService, c.Guard, cfg.PostProcessingOptions, log)

	return c, nil
}

// connectRedis nil, если адрес не задан или redis не отвечает
func (c *Container) connectRedis(cfg config.RedisConfig, log *zap.Logger) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis connection failed, cache is memory only", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = client.Close()
		return nil
	}

	log.Info("redis connected", zap.String("addr", cfg.Addr))
	c.closers = append(c.closers, client.Close)
	return client
}

// buildAnalyzer цепочка: удалённая модель, затем pigo, затем haar. Пустые пути пропускаются.
func (c *Container) buildAnalyzer(cfg config.VisionConfig, log *zap.Logger) (port.FaceAnalyzer, error) {
	var analyzers []port.FaceAnalyzer

	if cfg.Endpoint != "" {
		analyzers = append(analyzers, vision.NewRemoteAnalyzer(cfg.Endpoint, cfg.APIKey, cfg.Timeout, log))
	}
	if cfg.PigoCascade != "" {
		pigo, err := vision.NewPigoAnalyzer(cfg.PigoCascade, log)
		if err != nil {
			return nil, fmt.Errorf("pigo analyzer: %w", err)
		}
		analyzers = append(analyzers, pigo)
	}
	if cfg.HaarCascade != "" {
		haar, err := vision.NewHaarAnalyzer(cfg.HaarCascade, log)
		if err != nil {
			return nil, fmt.Errorf("haar analyzer: %w", err)
		}
		c.closers = append(c.closers, haar.Close)
		analyzers = append(analyzers, haar)
	}

	if len(analyzers) == 0 {
		log.Warn("no face analyzer configured, fallback region will be used")
	}
	return vision.NewChainAnalyzer(analyzers...), nil
}

// Close освобождает внешние ресурсы
func (c *Container) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}
