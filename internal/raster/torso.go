package raster

import (
	"image"
	"image/draw"

	"tryon-bot/internal/domain/entity"
)

// TorsoMask маска области одежды для режима inpainting: прямоугольник по центру
// кадра (20–80% по обеим осям), из которого вычтен эллипс лица.
func TorsoMask(seg *entity.SegmentationResult) *image.Gray {
	w, h := seg.Width, seg.Height
	mask := image.NewGray(image.Rect(0, 0, w, h))
	torso := image.Rect(int(float64(w)*0.2), int(float64(h)*0.2), int(float64(w)*0.8), int(float64(h)*0.8))
	draw.Draw(mask, torso, image.White, image.Point{}, draw.Src)

	if seg.FaceMask == nil || CheckDimensions(seg.FaceMask, w, h) != nil {
		return mask
	}
	for i, v := range seg.FaceMask.Pix {
		if v < 128 {
			mask.Pix[i] = 0
		}
	}
	return mask
}
