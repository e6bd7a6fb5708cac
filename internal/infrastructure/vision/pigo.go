package vision

import (
	"context"
	"fmt"
	"math"
	"os"

	pigo "github.com/esimov/pigo/core"
	"go.uber.org/zap"

	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/domain/port"
	"tryon-bot/internal/raster"
)

const pigoSource = "pigo"

// PigoAnalyzer локальный детектор лица на каскаде pigo
type PigoAnalyzer struct {
	classifier   *pigo.Pigo
	MinSize      int
	MaxSize      int
	ShiftFactor  float64
	ScaleFactor  float64
	IoUThreshold float64
	QThreshold   float32
	log          *zap.Logger
}

// NewPigoAnalyzer загружает каскад facefinder из файла.
func NewPigoAnalyzer(cascadePath string, log *zap.Logger) (*PigoAnalyzer, error) {
	data, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("read pigo cascade: %w", err)
	}
	// Unpack возвращает классификатор с деревьями каскада
	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack pigo cascade: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PigoAnalyzer{
		classifier:   classifier,
		MinSize:      40,
		MaxSize:      2000,
		ShiftFactor:  0.1,
		ScaleFactor:  1.1,
		IoUThreshold: 0.2,
		QThreshold:   5.0,
		log:          log,
	}, nil
}

// Analyze ищет лицо с максимальной оценкой
func (a *PigoAnalyzer) Analyze(ctx context.Context, imageData []byte) entity.Detection {
	_ = ctx
	img, _, err := raster.DecodeBytes(imageData)
	if err != nil {
		return entity.Malformed(pigoSource, err.Error())
	}
	if a.classifier == nil {
		return entity.NotFound(pigoSource, "cascade is not loaded")
	}

	cols, rows := img.Bounds().Dx(), img.Bounds().Dy()
	params := pigo.CascadeParams{
		MinSize:     a.MinSize,
		MaxSize:     min(a.MaxSize, max(cols, rows)),
		ShiftFactor: a.ShiftFactor,
		ScaleFactor: a.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(img),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	faces := a.classifier.RunCascade(params, 0)
	faces = a.classifier.ClusterDetections(faces, a.IoUThreshold)

	f, ok := bestDetection(faces, a.QThreshold)
	if !ok {
		return entity.NotFound(pigoSource, fmt.Sprintf("no detections above q=%.1f", a.QThreshold))
	}
	box := detectionBox(f, cols, rows)

	region := entity.FaceRegion{
		Box:        box,
		Confidence: pigoConfidence(f.Q),
		Landmarks:  entity.EstimateLandmarks(box),
		SkinTone:   raster.SampleSkinTone(img, box),
	}
	if err := region.Validate(); err != nil {
		return entity.Malformed(pigoSource, err.Error())
	}

	a.log.Debug("pigo detection", zap.Float32("q", f.Q), zap.Int("faces", len(faces)))
	return entity.Detected(pigoSource, region)
}

// bestDetection самая уверенная детекция с Q не ниже порога
func bestDetection(faces []pigo.Detection, threshold float32) (pigo.Detection, bool) {
	best := -1
	for i, f := range faces {
		if f.Q < threshold {
			continue
		}
		if best < 0 || f.Q > faces[best].Q {
			best = i
		}
	}
	if best < 0 {
		return pigo.Detection{}, false
	}
	return faces[best], true
}

// detectionBox переводит квадрат pigo (центр Col,Row и сторона Scale)
// в нормализованную рамку, обрезанную по краям кадра.
func detectionBox(f pigo.Detection, cols, rows int) entity.BoundingBox {
	return entity.BoundingBox{
		X:      float64(f.Col-f.Scale/2) / float64(cols),
		Y:      float64(f.Row-f.Scale/2) / float64(rows),
		Width:  float64(f.Scale) / float64(cols),
		Height: float64(f.Scale) / float64(rows),
	}.Clamp()
}

// pigoConfidence переводит оценку каскада в [0,1]
func pigoConfidence(q float32) float64 {
	return 1 - math.Exp(-float64(q)/20)
}

var _ port.FaceAnalyzer = (*PigoAnalyzer)(nil)
