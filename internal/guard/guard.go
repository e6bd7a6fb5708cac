package guard

import (
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/raster"
)

// FaceScorer оценивает сходство лица кандидата с исходным фрагментом
type FaceScorer interface {
	FaceScore(candidate *image.NRGBA, seg *entity.SegmentationResult) float64
}

var _ FaceScorer = raster.Scorer{}

// Guard прогоняет результат генерации через проверку сходства лица и, при
// необходимости, через наложение исходного лица. Всегда возвращает пригодное изображение.
type Guard struct {
	scorer FaceScorer
	color  raster.ColorOptions
	log    *zap.Logger
}

func New(scorer FaceScorer, log *zap.Logger) *Guard {
	if scorer == nil {
		scorer = raster.DefaultScorer
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{scorer: scorer, color: raster.DefaultColorOptions(), log: log}
}

// run состояние одного прогона
type run struct {
	seg       *entity.SegmentationResult
	opts      entity.PostProcessingOptions
	original  *image.NRGBA
	candidate *image.NRGBA
	rawInput  string
	mime      string
	working   *image.NRGBA
	score     float64
	res       *entity.PostProcessingResult
}

// Restore основная точка входа. Ошибка возвращается только если не декодируется оригинал,
// любые сбои на последующих шагах дают method=failed и нетронутого кандидата.
func (g *Guard) Restore(original, candidate string, seg *entity.SegmentationResult, opts entity.PostProcessingOptions) (*entity.PostProcessingResult, error) {
	start := time.Now()
	orig, err := raster.DecodeImage(original)
	if err != nil {
		return nil, fmt.Errorf("decode original: %w", err)
	}

	r := &run{
		seg:      seg,
		opts:     opts,
		original: orig,
		rawInput: candidate,
		res:      &entity.PostProcessingResult{Image: candidate, Method: entity.MethodFailed},
	}
	if err := g.execute(r); err != nil {
		g.log.Warn("identity restore failed, returning candidate as is",
			zap.Error(err), zap.Strings("trace", r.res.Trace))
		r.fail(err)
	}
	r.res.Elapsed = time.Since(start)

	g.log.Debug("identity restore finished",
		zap.String("method", string(r.res.Method)),
		zap.Float64("initial_similarity", r.res.InitialSimilarity),
		zap.Float64("similarity", r.res.Similarity),
		zap.Bool("color_corrected", r.res.ColorCorrected),
		zap.Duration("elapsed", r.res.Elapsed),
	)
	return r.res, nil
}

func (g *Guard) execute(r *run) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in state machine: %v", p)
		}
	}()

	state := StateInitial
	for {
		r.res.Trace = append(r.res.Trace, state.String())
		if err := g.enter(state, r); err != nil {
			return fmt.Errorf("%s: %w", state, err)
		}
		if state == StateTerminal {
			return nil
		}
		state = Next(state, r.score, r.opts)
	}
}

// enter выполняет действие при входе в состояние
func (g *Guard) enter(state State, r *run) error {
	switch state {
	case StateInitial:
		if r.seg == nil {
			return errors.New("segmentation is nil")
		}
		if b := r.original.Bounds(); b.Dx() != r.seg.Width || b.Dy() != r.seg.Height {
			return fmt.Errorf("%w: original %dx%d, segmentation %dx%d",
				entity.ErrSegmentationMismatch, b.Dx(), b.Dy(), r.seg.Width, r.seg.Height)
		}
		data, mime, err := raster.DecodeBase64(r.rawInput)
		if err != nil {
			return err
		}
		img, format, err := raster.DecodeBytes(data)
		if err != nil {
			return err
		}
		if mime == "" {
			mime = raster.MIMEForFormat(format)
		}
		r.candidate, r.mime = img, mime

	case StateScoreComputed:
		r.score = g.scorer.FaceScore(r.candidate, r.seg)
		r.res.InitialSimilarity = r.score
		r.res.Similarity = r.score

	case StatePassthrough:
		payload, _ := raster.StripDataURI(r.rawInput)
		r.res.Image = raster.WithDataURI(payload, r.mime)
		r.res.Method = entity.MethodPassthrough
		r.res.ValidationPassed = true

	case StateOverlayApplied:
		r.working = raster.BlendOverlay(r.candidate, r.seg, r.opts.FeatherRadius)
		r.res.FaceOverlaid = true
		r.res.Method = entity.MethodBlendedOverlay

	case StateColorCorrected:
		img, corrected := raster.CorrectSkinTone(r.working, r.seg, g.color)
		if corrected {
			r.working = img
			r.res.ColorCorrected = true
			r.res.Method = entity.MethodColorMatchedOverlay
		}

	case StateValidated:
		if r.opts.Validation {
			r.score = g.scorer.FaceScore(r.working, r.seg)
			r.res.Similarity = r.score
		}

	case StateAccepted:
		r.res.ValidationPassed = r.opts.Validation
		return r.encode(r.working)

	case StateFallbackDirectCopy:
		img, err := raster.DirectFaceCopy(r.original, r.candidate, r.seg)
		if err != nil {
			return err
		}
		r.working = img
		r.score = g.scorer.FaceScore(img, r.seg)
		r.res.Similarity = r.score
		r.res.Method = entity.MethodDirectCopy
		r.res.ValidationPassed = r.score >= r.opts.HardFloor
		return r.encode(img)
	}
	return nil
}

func (r *run) encode(img *image.NRGBA) error {
	uri, err := raster.EncodePNG(img)
	if err != nil {
		return err
	}
	r.res.Image = uri
	return nil
}

// fail откатывает результат к нетронутому кандидату
func (r *run) fail(err error) {
	out := r.rawInput
	if r.mime != "" {
		payload, _ := raster.StripDataURI(r.rawInput)
		out = raster.WithDataURI(payload, r.mime)
	}
	r.res.Image = out
	r.res.FaceOverlaid = false
	r.res.ValidationPassed = false
	r.res.ColorCorrected = false
	r.res.Method = entity.MethodFailed
	r.res.Similarity = r.res.InitialSimilarity
	r.res.Error = err.Error()
}

// DetectFaceCorruption дешёвая предварительная проверка: только сходство, без исправлений.
// Кандидат, который не удаётся декодировать, считается испорченным.
func (g *Guard) DetectFaceCorruption(original, candidate string, seg *entity.SegmentationResult, threshold float64) (bool, error) {
	cfg, err := raster.DecodeConfig(original)
	if err != nil {
		return false, fmt.Errorf("decode original: %w", err)
	}
	if seg == nil || cfg.Width != seg.Width || cfg.Height != seg.Height {
		return false, entity.ErrSegmentationMismatch
	}

	img, err := raster.DecodeImage(candidate)
	if err != nil {
		g.log.Debug("candidate is not decodable, treating as corrupted", zap.Error(err))
		return true, nil
	}
	score := g.scorer.FaceScore(img, seg)
	g.log.Debug("face corruption check", zap.Float64("similarity", score), zap.Float64("threshold", threshold))
	return score < threshold, nil
}
