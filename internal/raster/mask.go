package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"tryon-bot/internal/domain/entity"
)

const (
	// featherInner доля радиуса, внутри которой растушёванная маска непрозрачна
	featherInner = 0.70
	// coreInset начальный отступ вписанного прямоугольника от границы эллипса, px
	coreInset = 2
)

// Masks три маски одного размера с исходником
type Masks struct {
	Face    *image.Gray // лицо чёрное (защищено), остальное белое
	Body    *image.Gray // точная инверсия Face
	Feather *image.Gray // 255 в центре лица, плавно до 0 за границей эллипса
	Rect    image.Rectangle
	Core    image.Rectangle
}

// GenerateMasks строит маску лица, маску тела и растушёванную маску размером w×h.
func GenerateMasks(w, h int, region entity.FaceRegion, opts entity.MaskOptions) (*Masks, error) {
	if w <= 0 || h <= 0 {
		return nil, entity.ErrEmptyImage
	}
	rect := PixelRect(PadBox(region.Box, opts.Padding), w, h)
	if rect.Empty() {
		return nil, fmt.Errorf("face rectangle is empty for %dx%d image", w, h)
	}

	var face *image.Gray
	rw, rh, scale := renderSize(w, h, opts.Resolution)
	if scale < 1 {
		small := scaleRect(rect, scale).Intersect(image.Rect(0, 0, rw, rh))
		face = upscaleMask(renderFaceMask(rw, rh, small), w, h)
	} else {
		face = renderFaceMask(w, h, rect)
	}
	// после растяжения эллипс может сместиться по любой оси, поэтому ядро
	// подгоняется по самой маске, а не по геометрии
	core := fitCore(face, InscribedRect(rect, coreInset))
	if core.Empty() {
		c := image.Pt((rect.Min.X+rect.Max.X)/2, (rect.Min.Y+rect.Max.Y)/2)
		face.SetGray(c.X, c.Y, color.Gray{})
		core = image.Rect(c.X, c.Y, c.X+1, c.Y+1)
	}

	masks := &Masks{
		Face:    face,
		Body:    invertMask(face),
		Feather: featherMask(w, h, rect, opts.FeatherRadius),
		Rect:    rect,
		Core:    core,
	}
	for _, m := range []*image.Gray{masks.Face, masks.Body, masks.Feather} {
		if err := CheckDimensions(m, w, h); err != nil {
			return nil, err
		}
	}
	return masks, nil
}

// fitCore сужает прямоугольник, пока на его краях есть пиксели вне лица.
// Каждый шаг срезает край с наибольшей долей таких пикселей.
func fitCore(face *image.Gray, core image.Rectangle) image.Rectangle {
	core = core.Intersect(face.Bounds())
	for !core.Empty() {
		w, h := float64(core.Dx()), float64(core.Dy())
		edges := [4]float64{
			float64(outsideRow(face, core.Min.Y, core.Min.X, core.Max.X)) / w,
			float64(outsideRow(face, core.Max.Y-1, core.Min.X, core.Max.X)) / w,
			float64(outsideCol(face, core.Min.X, core.Min.Y, core.Max.Y)) / h,
			float64(outsideCol(face, core.Max.X-1, core.Min.Y, core.Max.Y)) / h,
		}
		worst := 0
		for i, v := range edges {
			if v > edges[worst] {
				worst = i
			}
		}
		if edges[worst] == 0 {
			return core
		}
		switch worst {
		case 0:
			core.Min.Y++
		case 1:
			core.Max.Y--
		case 2:
			core.Min.X++
		case 3:
			core.Max.X--
		}
	}
	return image.Rectangle{}
}

func outsideRow(face *image.Gray, y, x0, x1 int) int {
	n := 0
	row := face.Pix[y*face.Stride:]
	for x := x0; x < x1; x++ {
		if row[x] >= 128 {
			n++
		}
	}
	return n
}

func outsideCol(face *image.Gray, x, y0, y1 int) int {
	n := 0
	for y := y0; y < y1; y++ {
		if face.Pix[y*face.Stride+x] >= 128 {
			n++
		}
	}
	return n
}

// CheckDimensions проверяет, что маска совпадает по размеру с исходником.
func CheckDimensions(mask *image.Gray, w, h int) error {
	if mask == nil {
		return fmt.Errorf("%w: nil mask", entity.ErrDimensionMismatch)
	}
	b := mask.Bounds()
	if b.Dx() != w || b.Dy() != h {
		return fmt.Errorf("%w: mask %dx%d, source %dx%d", entity.ErrDimensionMismatch, b.Dx(), b.Dy(), w, h)
	}
	return nil
}

// renderFaceMask рисует чёрный эллипс на белом холсте и бинаризует результат.
func renderFaceMask(w, h int, rect image.Rectangle) *image.Gray {
	e := ellipseIn(rect)

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.DrawEllipse(e.cx, e.cy, e.rx, e.ry)
	dc.SetRGB(0, 0, 0)
	dc.Fill()

	return binarize(dc.Image())
}

func binarize(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	rgba, fast := img.(*image.RGBA)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			var v uint8
			if fast {
				v = rgba.Pix[y*rgba.Stride+x*4]
			} else {
				r, _, _, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				v = uint8(r >> 8)
			}
			if v >= 128 {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

func invertMask(m *image.Gray) *image.Gray {
	out := image.NewGray(m.Bounds())
	for i, v := range m.Pix {
		out.Pix[i] = 255 - v
	}
	return out
}

// featherMask альфа-маска с радиальным градиентом вокруг эллипса лица.
func featherMask(w, h int, rect image.Rectangle, radius int) *image.Gray {
	e := ellipseIn(rect)
	outer := 1 + float64(radius)/math.Max(1, math.Min(e.rx, e.ry))
	out := image.NewGray(image.Rect(0, 0, w, h))

	// за пределами outer всё равно 0
	area := image.Rect(
		int(math.Floor(e.cx-e.rx*outer)),
		int(math.Floor(e.cy-e.ry*outer)),
		int(math.Ceil(e.cx+e.rx*outer)),
		int(math.Ceil(e.cy+e.ry*outer)),
	).Intersect(out.Bounds())

	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			d := e.dist(float64(x)+0.5, float64(y)+0.5)
			out.Pix[y*out.Stride+x] = radialAlpha(d, featherInner, outer)
		}
	}
	return out
}

func renderSize(w, h, resolution int) (int, int, float64) {
	longest := max(w, h)
	if resolution <= 0 || longest <= resolution {
		return w, h, 1
	}
	scale := float64(resolution) / float64(longest)
	return max(1, int(math.Round(float64(w)*scale))), max(1, int(math.Round(float64(h)*scale))), scale
}

func scaleRect(r image.Rectangle, scale float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(float64(r.Min.X)*scale)),
		int(math.Floor(float64(r.Min.Y)*scale)),
		int(math.Ceil(float64(r.Max.X)*scale)),
		int(math.Ceil(float64(r.Max.Y)*scale)),
	)
}

// upscaleMask растягивает маску до точного размера исходника и повторно бинаризует.
func upscaleMask(m *image.Gray, w, h int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), m, m.Bounds(), xdraw.Src, nil)
	for i, v := range dst.Pix {
		if v >= 128 {
			dst.Pix[i] = 255
		} else {
			dst.Pix[i] = 0
		}
	}
	return dst
}
