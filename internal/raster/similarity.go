package raster

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"tryon-bot/internal/domain/entity"
)

// Scorer приближённая оценка сходства двух фрагментов лица.
//
// Оба фрагмента приводятся к Size×Size, считается средняя абсолютная разница
// по каналам R, G, B, и similarity = max(0, 1 - mad/Scale). Это эвристика в
// пиксельном пространстве, а не расстояние между эмбеддингами лица: она не
// различает людей, а только ловит заметные изменения пикселей.
type Scorer struct {
	Size  int
	Scale float64
}

var (
	// DefaultScorer основная проверка: 128×128, константа 128
	DefaultScorer = Scorer{Size: 128, Scale: 128}
	// StrictScorer более строгая проверка: 256×256, та же константа
	StrictScorer = Scorer{Size: 256, Scale: 128}
)

// ScorerByName выбирает проверку по имени из конфига: default или strict.
func ScorerByName(name string) (Scorer, error) {
	switch name {
	case "", "default":
		return DefaultScorer, nil
	case "strict":
		return StrictScorer, nil
	}
	return Scorer{}, fmt.Errorf("unknown scorer %q", name)
}

// Score возвращает сходство в [0,1]. Для одинаковых входов результат ровно 1.
func (s Scorer) Score(a, b image.Image) float64 {
	if a == nil || b == nil || a.Bounds().Empty() || b.Bounds().Empty() {
		return 0
	}
	size := s.Size
	if size <= 0 {
		size = DefaultScorer.Size
	}
	scale := s.Scale
	if scale <= 0 {
		scale = DefaultScorer.Scale
	}

	ra := imaging.Resize(a, size, size, imaging.Linear)
	rb := imaging.Resize(b, size, size, imaging.Linear)

	var sum uint64
	for i := 0; i+3 < len(ra.Pix) && i+3 < len(rb.Pix); i += 4 {
		sum += absDiff(ra.Pix[i], rb.Pix[i])
		sum += absDiff(ra.Pix[i+1], rb.Pix[i+1])
		sum += absDiff(ra.Pix[i+2], rb.Pix[i+2])
	}
	mad := float64(sum) / float64(size*size*3)
	return math.Max(0, 1-mad/scale)
}

// FaceScore сравнивает центральную часть лица кандидата с оригинальным фрагментом из сегментации.
// Кандидат другого размера предварительно растягивается до размера оригинала.
func (s Scorer) FaceScore(candidate *image.NRGBA, seg *entity.SegmentationResult) float64 {
	if candidate == nil || seg == nil || seg.FaceCrop == nil {
		return 0
	}
	aligned := AlignTo(candidate, seg.Width, seg.Height)
	ref := imaging.Crop(seg.FaceCrop, seg.CoreRect.Sub(seg.CropRect.Min))
	got := imaging.Crop(aligned, seg.CoreRect)
	return s.Score(ref, got)
}

func absDiff(a, b uint8) uint64 {
	if a > b {
		return uint64(a - b)
	}
	return uint64(b - a)
}
