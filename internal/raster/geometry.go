package raster

import (
	"image"
	"math"

	"tryon-bot/internal/domain/entity"
)

// PadBox расширяет прямоугольник лица: по горизонтали симметрично, сверху в 1.5 раза
// больше (линия волос), снизу в 2.5 раза (подбородок и шея). Результат обрезается по [0,1].
func PadBox(b entity.BoundingBox, padding float64) entity.BoundingBox {
	x0 := b.X - b.Width*padding
	x1 := b.X + b.Width + b.Width*padding
	y0 := b.Y - b.Height*padding*entity.PaddingTopFactor
	y1 := b.Y + b.Height + b.Height*padding*entity.PaddingBottomFactor
	return entity.BoundingBox{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}.Clamp()
}

// PixelRect переводит нормализованный прямоугольник в пиксели и обрезает по границам изображения.
func PixelRect(b entity.BoundingBox, w, h int) image.Rectangle {
	r := image.Rect(
		int(math.Floor(b.X*float64(w)+1e-9)),
		int(math.Floor(b.Y*float64(h)+1e-9)),
		int(math.Ceil((b.X+b.Width)*float64(w)-1e-9)),
		int(math.Ceil((b.Y+b.Height)*float64(h)-1e-9)),
	)
	return r.Intersect(image.Rect(0, 0, w, h))
}

// ellipse эллипс, вписанный в прямоугольник
type ellipse struct {
	cx, cy float64
	rx, ry float64
}

func ellipseIn(r image.Rectangle) ellipse {
	return ellipse{
		cx: float64(r.Min.X+r.Max.X) / 2,
		cy: float64(r.Min.Y+r.Max.Y) / 2,
		rx: math.Max(float64(r.Dx())/2, 0.5),
		ry: math.Max(float64(r.Dy())/2, 0.5),
	}
}

// dist нормализованное эллиптическое расстояние: 1 на границе эллипса.
func (e ellipse) dist(x, y float64) float64 {
	dx := (x - e.cx) / e.rx
	dy := (y - e.cy) / e.ry
	return math.Sqrt(dx*dx + dy*dy)
}

// InscribedRect прямоугольник, целиком лежащий внутри эллипса, вписанного в r,
// с отступом inset пикселей от его углов.
func InscribedRect(r image.Rectangle, inset int) image.Rectangle {
	e := ellipseIn(r)
	hx := e.rx / math.Sqrt2
	hy := e.ry / math.Sqrt2
	core := image.Rect(
		int(math.Ceil(e.cx-hx))+inset,
		int(math.Ceil(e.cy-hy))+inset,
		int(math.Floor(e.cx+hx))-inset,
		int(math.Floor(e.cy+hy))-inset,
	)
	if core.Empty() {
		cx, cy := int(e.cx), int(e.cy)
		return image.Rect(cx, cy, cx+1, cy+1).Intersect(r)
	}
	return core
}

// radialAlpha линейное затухание: 255 до inner, 0 начиная с outer.
func radialAlpha(d, inner, outer float64) uint8 {
	switch {
	case d <= inner:
		return 255
	case d >= outer:
		return 0
	}
	return uint8(math.Round(255 * (outer - d) / (outer - inner)))
}
