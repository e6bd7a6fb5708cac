package raster

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"tryon-bot/internal/domain/entity"
)

// matteInner доля радиуса фрагмента с полной непрозрачностью
const matteInner = 0.55

// Extraction вырезанный фрагмент лица
type Extraction struct {
	Rect   image.Rectangle // всегда внутри границ исходника
	Crop   *image.NRGBA
	Matted *image.NRGBA
}

// ExtractFace вырезает расширенный прямоугольник лица: непрозрачную копию и копию
// с радиальной альфой (1 в центре, 0 у края фрагмента) для бесшовного наложения.
func ExtractFace(img *image.NRGBA, region entity.FaceRegion, padding float64) (*Extraction, error) {
	b := img.Bounds()
	rect := PixelRect(PadBox(region.Box, padding), b.Dx(), b.Dy()).Add(b.Min).Intersect(b)
	if rect.Empty() {
		return nil, fmt.Errorf("extraction rectangle is empty for %dx%d image", b.Dx(), b.Dy())
	}

	crop := imaging.Crop(img, rect)
	return &Extraction{
		Rect:   rect.Sub(b.Min),
		Crop:   crop,
		Matted: applyRadialAlpha(crop),
	}, nil
}

func applyRadialAlpha(crop *image.NRGBA) *image.NRGBA {
	matted := imaging.Clone(crop)
	b := matted.Bounds()
	e := ellipseIn(b)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			a := radialAlpha(e.dist(float64(x)+0.5, float64(y)+0.5), matteInner, 1)
			i := y*matted.Stride + x*4 + 3
			matted.Pix[i] = uint8(uint16(matted.Pix[i]) * uint16(a) / 255)
		}
	}
	return matted
}
