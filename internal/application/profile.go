package app

import (
	"context"

	"go.uber.org/zap"

	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/domain/port"
	"tryon-bot/internal/raster"
)

// ProfileService грубый профиль внешности по селфи, с отдельным кэшем.
type ProfileService struct {
	cache port.Cache[entity.AppearanceProfile]
	log   *zap.Logger
}

func NewProfileService(cache port.Cache[entity.AppearanceProfile], log *zap.Logger) *ProfileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileService{cache: cache, log: log}
}

func (s *ProfileService) Profile(ctx context.Context, image string) (entity.AppearanceProfile, error) {
	key := cacheKey("profile:", image)
	if s.cache != nil {
		if p, ok := s.cache.Get(ctx, key); ok {
			return p, nil
		}
	}

	img, err := raster.DecodeImage(image)
	if err != nil {
		return entity.AppearanceProfile{}, err
	}
	p := raster.Profile(img)
	if s.cache != nil {
		s.cache.Set(ctx, key, p)
	}
	s.log.Debug("appearance profile computed", zap.Strings("colors", p.DominantColors), zap.String("orientation", p.Orientation))
	return p, nil
}
