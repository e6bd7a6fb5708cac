package raster

import (
	"image"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"tryon-bot/internal/domain/entity"
)

const (
	profileColors     = 3
	profileMergeDist  = 0.12
	profileUpperShare = 0.15
	profileSampleSize = 96
)

type colorBin struct {
	c     colorful.Color
	count int
}

// Profile грубый профиль внешности: доминирующие цвета, цвет верхней части кадра,
// средняя яркость и ориентация.
func Profile(img image.Image) entity.AppearanceProfile {
	b := img.Bounds()
	p := entity.AppearanceProfile{Orientation: orientation(b.Dx(), b.Dy())}
	if b.Dy() > 0 {
		p.AspectRatio = float64(b.Dx()) / float64(b.Dy())
	}
	if b.Empty() {
		return p
	}

	small := AlignTo(toNRGBA(img), min(profileSampleSize, b.Dx()), min(profileSampleSize, b.Dy()))
	sb := small.Bounds()

	counts := make(map[[3]uint8]int)
	var brightness float64
	for y := 0; y < sb.Dy(); y++ {
		for x := 0; x < sb.Dx(); x++ {
			c := small.NRGBAAt(x, y)
			brightness += luma(c.R, c.G, c.B)
			counts[[3]uint8{c.R >> 4, c.G >> 4, c.B >> 4}]++
		}
	}
	p.MeanBrightness = brightness / float64(sb.Dx()*sb.Dy())
	p.DominantColors = dominantColors(counts, profileColors)

	upper := image.Rect(0, 0, sb.Dx(), max(1, int(float64(sb.Dy())*profileUpperShare)))
	if mean, ok := MeanColor(small, upper); ok {
		p.UpperColor = colorful.Color{R: mean[0] / 255, G: mean[1] / 255, B: mean[2] / 255}.Hex()
	}
	return p
}

// dominantColors сливает близкие в Lab корзины и возвращает самые частые цвета.
func dominantColors(counts map[[3]uint8]int, n int) []string {
	bins := make([]colorBin, 0, len(counts))
	for q, cnt := range counts {
		c := colorful.Color{
			R: (float64(q[0])*16 + 8) / 255,
			G: (float64(q[1])*16 + 8) / 255,
			B: (float64(q[2])*16 + 8) / 255,
		}
		bins = append(bins, colorBin{c: c, count: cnt})
	}
	sort.Slice(bins, func(i, j int) bool {
		if bins[i].count != bins[j].count {
			return bins[i].count > bins[j].count
		}
		return bins[i].c.Hex() < bins[j].c.Hex()
	})

	var merged []colorBin
	for _, bin := range bins {
		joined := false
		for i := range merged {
			if merged[i].c.DistanceLab(bin.c) < profileMergeDist {
				merged[i].count += bin.count
				joined = true
				break
			}
		}
		if !joined {
			merged = append(merged, bin)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].count > merged[j].count })

	out := make([]string, 0, n)
	for i := 0; i < len(merged) && i < n; i++ {
		out = append(out, merged[i].c.Hex())
	}
	return out
}

func orientation(w, h int) string {
	switch {
	case w > h:
		return "landscape"
	case h > w:
		return "portrait"
	default:
		return "square"
	}
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}
