package raster

import (
	"image"

	"github.com/disintegration/imaging"

	"tryon-bot/internal/domain/entity"
)

// AlignTo приводит изображение к размеру w×h. Совпадающий размер возвращается как есть.
func AlignTo(img *image.NRGBA, w, h int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h && b.Min == (image.Point{}) {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Linear)
}

// BlendOverlay накладывает фрагмент лица с альфой на кандидата (смешивание "over").
// Растушёванный край убирает шов, но не гарантирует попиксельную точность на границе.
func BlendOverlay(candidate *image.NRGBA, seg *entity.SegmentationResult, featherRadius int) *image.NRGBA {
	base := AlignTo(candidate, seg.Width, seg.Height)
	matte := seg.MattedCrop
	if featherRadius > 0 {
		matte = softenAlpha(matte, float64(featherRadius)/8)
	}
	return imaging.Overlay(base, matte, seg.CropRect.Min, 1.0)
}

// DirectFaceCopy копирует пиксели оригинала везде, где маска тела отмечает лицо.
// Защищённая область совпадает с оригиналом бит в бит (с точностью до выравнивания размеров).
func DirectFaceCopy(original, candidate *image.NRGBA, seg *entity.SegmentationResult) (*image.NRGBA, error) {
	ob := original.Bounds()
	if ob.Dx() != seg.Width || ob.Dy() != seg.Height {
		return nil, entity.ErrSegmentationMismatch
	}
	if err := CheckDimensions(seg.BodyMask, seg.Width, seg.Height); err != nil {
		return nil, err
	}

	out := imaging.Clone(AlignTo(candidate, seg.Width, seg.Height))
	src := original
	if ob.Min != (image.Point{}) {
		src = imaging.Clone(original)
	}
	mask := seg.BodyMask
	r := seg.MaskRect.Intersect(out.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if mask.Pix[y*mask.Stride+x] < 128 {
				continue
			}
			i := y*out.Stride + x*4
			j := y*src.Stride + x*4
			copy(out.Pix[i:i+4], src.Pix[j:j+4])
		}
	}
	return out, nil
}

// softenAlpha размывает только альфа-канал, не трогая цвет.
func softenAlpha(img *image.NRGBA, sigma float64) *image.NRGBA {
	b := img.Bounds()
	alpha := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			alpha.Pix[y*alpha.Stride+x] = img.Pix[y*img.Stride+x*4+3]
		}
	}
	blurred := imaging.Blur(alpha, sigma)

	out := imaging.Clone(img)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Pix[y*out.Stride+x*4+3] = blurred.Pix[y*blurred.Stride+x*4]
		}
	}
	return out
}
