//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/domain/port"
	"tryon-bot/internal/raster"
)

const haarSource = "haar"

// HaarAnalyzer детектор лица на каскаде Хаара из OpenCV
type HaarAnalyzer struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
	MaxSide    int
	MinFace    int
	log        *zap.Logger
}

// NewHaarAnalyzer загружает каскад (например haarcascade_frontalface_default.xml).
func NewHaarAnalyzer(cascadePath string, log *zap.Logger) (*HaarAnalyzer, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("load haar cascade %s", cascadePath)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HaarAnalyzer{classifier: classifier, MaxSide: 1024, MinFace: 40, log: log}, nil
}

// Analyze выбирает самое крупное лицо
func (a *HaarAnalyzer) Analyze(ctx context.Context, imageData []byte) entity.Detection {
	_ = ctx
	mat, err := decodeToMat(imageData)
	if err != nil {
		return entity.Malformed(haarSource, err.Error())
	}
	defer mat.Close()

	cols, rows := mat.Cols(), mat.Rows()
	// Приводим изображение к стандартному размеру для стабильной детекции.
	if cols > a.MaxSide || rows > a.MaxSide {
		scale := float64(a.MaxSide) / float64(max(cols, rows))
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(int(float64(cols)*scale), int(float64(rows)*scale)), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)
	gocv.EqualizeHist(gray, &gray)

	a.mu.Lock()
	rects := a.classifier.DetectMultiScaleWithParams(gray, 1.1, 5, 0, image.Pt(a.MinFace, a.MinFace), image.Pt(0, 0))
	a.mu.Unlock()

	if len(rects) == 0 {
		return entity.NotFound(haarSource, entity.ErrNoFace.Error())
	}
	best := rects[0]
	for _, r := range rects[1:] {
		if r.Dx()*r.Dy() > best.Dx()*best.Dy() {
			best = r
		}
	}

	w, h := float64(mat.Cols()), float64(mat.Rows())
	box := entity.BoundingBox{
		X:      float64(best.Min.X) / w,
		Y:      float64(best.Min.Y) / h,
		Width:  float64(best.Dx()) / w,
		Height: float64(best.Dy()) / h,
	}.Clamp()

	skin := entity.NeutralSkinTone()
	if img, err := mat.ToImage(); err == nil {
		skin = raster.SampleSkinTone(imaging.Clone(img), box)
	}

	region := entity.FaceRegion{
		Box:        box,
		Confidence: 0.8,
		Landmarks:  entity.EstimateLandmarks(box),
		SkinTone:   skin,
	}
	if err := region.Validate(); err != nil {
		return entity.Malformed(haarSource, err.Error())
	}
	a.log.Debug("haar detection", zap.Int("faces", len(rects)))
	return entity.Detected(haarSource, region)
}

// Close освобождает каскад
func (a *HaarAnalyzer) Close() error {
	return a.classifier.Close()
}

// decodeToMat превращает байты изображения в gocv.Mat.
// При ошибке возвращает нулевой Mat, закрывать его не нужно.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil {
		mat.Close()
		return gocv.Mat{}, fmt.Errorf("failed to decode image: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, errors.New("failed to decode image")
	}
	return mat, nil
}

var _ port.FaceAnalyzer = (*HaarAnalyzer)(nil)
