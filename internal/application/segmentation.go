package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/domain/port"
	"tryon-bot/internal/raster"
)

// SegmentationService строит и кэширует SegmentationResult для селфи.
type SegmentationService struct {
	analyzer       port.FaceAnalyzer
	cache          port.Cache[*entity.SegmentationResult]
	mask           entity.MaskOptions
	extractPadding float64
	log            *zap.Logger
}

func NewSegmentationService(analyzer port.FaceAnalyzer, cache port.Cache[*entity.SegmentationResult], mask entity.MaskOptions, log *zap.Logger) *SegmentationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SegmentationService{
		analyzer:       analyzer,
		cache:          cache,
		mask:           mask,
		extractPadding: entity.DefaultExtractPadding,
		log:            log,
	}
}

// Segment всегда возвращает результат, если изображение декодируется: когда детектор
// не нашёл лицо или ответил мусором, используется запасной регион.
func (s *SegmentationService) Segment(ctx context.Context, image string) (*entity.SegmentationResult, error) {
	key := cacheKey("seg:", image)
	if s.cache != nil {
		if seg, ok := s.cache.Get(ctx, key); ok {
			s.log.Debug("segmentation cache hit", zap.String("key", key))
			return seg, nil
		}
	}

	data, _, err := raster.DecodeBase64(image)
	if err != nil {
		return nil, err
	}
	img, _, err := raster.DecodeBytes(data)
	if err != nil {
		return nil, err
	}

	region, fallback := s.detect(ctx, data)
	seg, err := raster.Segment(img, region, s.mask, s.extractPadding)
	if err != nil && !fallback {
		s.log.Warn("segmentation with detected region failed, using fallback", zap.Error(err))
		region, fallback = entity.FallbackFaceRegion(), true
		seg, err = raster.Segment(img, region, s.mask, s.extractPadding)
	}
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	seg.Fallback = fallback

	if s.cache != nil {
		s.cache.Set(ctx, key, seg)
	}
	s.log.Info("segmentation computed",
		zap.String("key", key),
		zap.Int("width", seg.Width),
		zap.Int("height", seg.Height),
		zap.Float64("confidence", region.Confidence),
		zap.Bool("fallback", fallback),
	)
	return seg, nil
}

func (s *SegmentationService) detect(ctx context.Context, data []byte) (entity.FaceRegion, bool) {
	if s.analyzer == nil {
		return entity.FallbackFaceRegion(), true
	}
	d := s.analyzer.Analyze(ctx, data)
	if !d.Found() {
		s.log.Warn("face not detected, using fallback region",
			zap.String("kind", d.Kind.String()),
			zap.String("source", d.Source),
			zap.String("reason", d.Reason),
		)
		return entity.FallbackFaceRegion(), true
	}
	if err := d.Region.Validate(); err != nil {
		s.log.Warn("detected region is invalid, using fallback region", zap.Error(err))
		return entity.FallbackFaceRegion(), true
	}
	return d.Region, false
}
