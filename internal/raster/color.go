package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"tryon-bot/internal/domain/entity"
)

// ColorOptions параметры грубой цветокоррекции
type ColorOptions struct {
	Threshold   float64 // допустимое отклонение канала, из 255
	Strength    float64 // доля от нужной поправки
	StripHeight float64 // высота полосы шеи, доля высоты изображения
}

// DefaultColorOptions значения по умолчанию
func DefaultColorOptions() ColorOptions {
	return ColorOptions{Threshold: 5, Strength: 0.3, StripHeight: 0.04}
}

// NeckStrip узкая полоса сразу под прямоугольником лица (без отступов), средние 50% его ширины.
func NeckStrip(region entity.FaceRegion, w, h int, stripHeight float64) image.Rectangle {
	face := PixelRect(region.Box, w, h)
	sh := max(2, int(math.Round(stripHeight*float64(h))))
	quarter := face.Dx() / 4
	return image.Rect(face.Min.X+quarter, face.Max.Y, face.Max.X-quarter, face.Max.Y+sh).
		Intersect(image.Rect(0, 0, w, h))
}

// CorrectSkinTone сдвигает общую яркость изображения так, чтобы цвет шеи приблизился к цвету кожи.
// Возвращает исходное изображение и false, если полоса пуста или отклонение в пределах порога.
func CorrectSkinTone(img *image.NRGBA, seg *entity.SegmentationResult, opts ColorOptions) (*image.NRGBA, bool) {
	b := img.Bounds()
	strip := NeckStrip(seg.Region, b.Dx(), b.Dy(), opts.StripHeight)
	if strip.Empty() {
		return img, false
	}
	mean, ok := MeanColor(img, strip.Add(b.Min))
	if !ok {
		return img, false
	}

	target := [3]float64{float64(seg.SkinTone.R), float64(seg.SkinTone.G), float64(seg.SkinTone.B)}
	var total float64
	exceeds := false
	for i := range target {
		d := target[i] - mean[i]
		if math.Abs(d) > opts.Threshold {
			exceeds = true
		}
		total += d
	}
	if !exceeds {
		return img, false
	}

	shift := opts.Strength * total / 3
	if math.Abs(shift) < 0.5 {
		return img, false
	}
	return imaging.AdjustBrightness(img, shift/255*100), true
}

// MeanColor средний цвет RGB в прямоугольнике
func MeanColor(img *image.NRGBA, r image.Rectangle) ([3]float64, bool) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return [3]float64{}, false
	}
	var sum [3]uint64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			sum[0] += uint64(img.Pix[i])
			sum[1] += uint64(img.Pix[i+1])
			sum[2] += uint64(img.Pix[i+2])
			i += 4
		}
	}
	n := float64(r.Dx() * r.Dy())
	return [3]float64{float64(sum[0]) / n, float64(sum[1]) / n, float64(sum[2]) / n}, true
}

// Границы кожи в пространстве YCrCb.
const (
	skinCrMin = 133
	skinCrMax = 173
	skinCbMin = 77
	skinCbMax = 127
)

// SampleSkinTone усредняет пиксели кожи внутри прямоугольника лица.
// Если пикселей кожи не нашлось, возвращается нейтральный цвет.
func SampleSkinTone(img *image.NRGBA, box entity.BoundingBox) entity.SkinTone {
	b := img.Bounds()
	r := PixelRect(box, b.Dx(), b.Dy()).Add(b.Min)
	var sum [3]uint64
	var n uint64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			_, cb, cr := color.RGBToYCbCr(c.R, c.G, c.B)
			if cr < skinCrMin || cr > skinCrMax || cb < skinCbMin || cb > skinCbMax {
				continue
			}
			sum[0] += uint64(c.R)
			sum[1] += uint64(c.G)
			sum[2] += uint64(c.B)
			n++
		}
	}
	if n == 0 {
		return entity.NeutralSkinTone()
	}
	return entity.NewSkinTone(uint8(sum[0]/n), uint8(sum[1]/n), uint8(sum[2]/n))
}
