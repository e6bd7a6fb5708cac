package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/domain/port"
	"tryon-bot/internal/guard"
	"tryon-bot/internal/raster"
	"tryon-bot/internal/retry"
)

// OptionsFunc выдаёт настройки постобработки для режима
type OptionsFunc func(mode entity.Mode) entity.PostProcessingOptions

// TryOnInput запрос на примерку
type TryOnInput struct {
	Person  string
	Garment string
	Mode    entity.Mode
}

// TryOnOutput результат примерки
type TryOnOutput struct {
	RunID               string                       `json:"run_id"`
	Image               string                       `json:"image"`
	Mode                entity.Mode                  `json:"mode"`
	FaceCorrupted       bool                         `json:"face_corrupted"`
	PostProcessing      *entity.PostProcessingResult `json:"post_processing,omitempty"`
	Attempts            int                          `json:"attempts"`
	GenerationSucceeded bool                         `json:"generation_succeeded"`
	FallbackRegion      bool                         `json:"fallback_region"`
	Elapsed             time.Duration                `json:"elapsed"`
}

// TryOnService полный конвейер: сегментация и профиль параллельно, генерация с повторами,
// дешёвая проверка лица и восстановление при необходимости.
type TryOnService struct {
	segments  *SegmentationService
	profiles  *ProfileService
	generator port.Generator
	guard     *guard.Guard
	options   OptionsFunc
	log       *zap.Logger
}

func NewTryOnService(segments *SegmentationService, profiles *ProfileService, generator port.Generator, g *guard.Guard, options OptionsFunc, log *zap.Logger) *TryOnService {
	if options == nil {
		options = entity.OptionsForMode
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TryOnService{
		segments:  segments,
		profiles:  profiles,
		generator: generator,
		guard:     g,
		options:   options,
		log:       log,
	}
}

// TryOn ошибки возвращаются только для неразбираемых входных изображений
// и когда генератор не выдал ни одного кандидата.
func (s *TryOnService) TryOn(ctx context.Context, in TryOnInput) (*TryOnOutput, error) {
	start := time.Now()
	if in.Mode == "" {
		in.Mode = entity.ModeFullBody
	}
	out := &TryOnOutput{RunID: uuid.NewString(), Mode: in.Mode}
	log := s.log.With(zap.String("run_id", out.RunID), zap.String("mode", string(in.Mode)))

	if _, err := raster.DecodeConfig(in.Garment); err != nil {
		return nil, fmt.Errorf("garment: %w", err)
	}

	var (
		seg     *entity.SegmentationResult
		profile entity.AppearanceProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		seg, err = s.segments.Segment(gctx, in.Person)
		return err
	})
	g.Go(func() error {
		var err error
		profile, err = s.profiles.Profile(gctx, in.Person)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("person: %w", err)
	}
	out.FallbackRegion = seg.Fallback

	opts := s.options(in.Mode)
	req := entity.GenerationRequest{
		PersonImage:  in.Person,
		GarmentImage: in.Garment,
		Instructions: BuildInstructions(in.Mode, seg, profile),
		PreserveFace: true,
	}
	if in.Mode == entity.ModeInpainting {
		mask, err := raster.EncodePNG(raster.TorsoMask(seg))
		if err != nil {
			return nil, err
		}
		req.MaskImage = mask
	}

	gen := retry.Do(ctx, opts.MaxRetries,
		func(ctx context.Context) (string, error) {
			return s.generator.Generate(ctx, req)
		},
		func(_ context.Context, candidate string) bool {
			report := raster.ValidateImageContent(candidate)
			if !report.IsValid {
				log.Warn("generated image rejected", zap.Strings("issues", report.Issues))
			}
			return report.IsValid
		},
	)
	out.Attempts = gen.Attempts
	out.GenerationSucceeded = gen.Success
	if gen.Value == "" {
		if gen.Err != nil {
			return nil, fmt.Errorf("%w: %w", entity.ErrGenerationFailed, gen.Err)
		}
		return nil, entity.ErrGenerationFailed
	}
	if !gen.Success {
		log.Warn("retries exhausted, continuing with last candidate", zap.Int("attempts", gen.Attempts))
	}

	corrupted, err := s.guard.DetectFaceCorruption(in.Person, gen.Value, seg, opts.Threshold)
	if err != nil {
		return nil, err
	}
	out.FaceCorrupted = corrupted
	out.Image = gen.Value

	if corrupted {
		res, err := s.guard.Restore(in.Person, gen.Value, seg, opts)
		if err != nil {
			return nil, err
		}
		out.PostProcessing = res
		out.Image = res.Image
	}

	out.Elapsed = time.Since(start)
	fields := []zap.Field{
		zap.Int("attempts", out.Attempts),
		zap.Bool("generation_succeeded", out.GenerationSucceeded),
		zap.Bool("face_corrupted", corrupted),
		zap.Duration("elapsed", out.Elapsed),
	}
	if out.PostProcessing != nil {
		fields = append(fields,
			zap.String("method", string(out.PostProcessing.Method)),
			zap.Float64("similarity", out.PostProcessing.Similarity),
		)
	}
	log.Info("try-on finished", fields...)
	return out, nil
}

// BuildInstructions текст для модели генерации
func BuildInstructions(mode entity.Mode, seg *entity.SegmentationResult, profile entity.AppearanceProfile) string {
	var b strings.Builder
	if mode == entity.ModeInpainting {
		b.WriteString("Replace only the clothing inside the mask with the garment from the second image. ")
	} else {
		b.WriteString("Dress the person from the first image in the garment from the second image, full body. ")
	}
	b.WriteString("Keep the face, hairstyle, pose and background unchanged. ")
	fmt.Fprintf(&b, "Skin tone %s. ", seg.SkinTone.Hex)
	if profile.UpperColor != "" {
		fmt.Fprintf(&b, "Hair colour close to %s. ", profile.UpperColor)
	}
	if len(profile.DominantColors) > 0 {
		fmt.Fprintf(&b, "Scene palette: %s. ", strings.Join(profile.DominantColors, ", "))
	}
	if profile.Orientation != "" {
		fmt.Fprintf(&b, "Output a %s photo.", profile.Orientation)
	}
	return strings.TrimSpace(b.String())
}
