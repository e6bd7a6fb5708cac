package raster

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"

	"tryon-bot/internal/domain/entity"
)

// Annotate рисует поверх изображения результат сегментации: прямоугольник лица (зелёный,
// красный для подставленного региона), эллипс маски, проверяемую область и опорные точки.
func Annotate(img image.Image, seg *entity.SegmentationResult) image.Image {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	dc := gg.NewContextForImage(img)
	dc.SetLineWidth(2)

	box := seg.Region.Box
	if seg.Fallback {
		dc.SetRGB(1, 0, 0)
	} else {
		dc.SetRGB(0, 1, 0)
	}
	dc.DrawRectangle(box.X*w, box.Y*h, box.Width*w, box.Height*h)
	dc.Stroke()

	e := ellipseIn(seg.MaskRect)
	dc.SetRGB(1, 1, 0)
	dc.DrawEllipse(e.cx, e.cy, e.rx, e.ry)
	dc.Stroke()

	core := seg.CoreRect
	dc.SetRGB(0, 0.5, 1)
	dc.DrawRectangle(float64(core.Min.X), float64(core.Min.Y), float64(core.Dx()), float64(core.Dy()))
	dc.Stroke()

	dc.SetRGB(1, 0, 1)
	for _, p := range seg.Region.Landmarks {
		dc.DrawCircle(p.X*w, p.Y*h, 3)
		dc.Fill()
	}

	label := fmt.Sprintf("conf %.2f skin %s", seg.Region.Confidence, seg.SkinTone.Hex)
	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(0, 0, w, 18)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	dc.DrawString(label, 4, 13)

	return dc.Image()
}
