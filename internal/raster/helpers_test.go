package raster

import (
	"image"
	"image/color"
	"math/rand"

	"tryon-bot/internal/domain/entity"
)

func testRegion() entity.FaceRegion {
	box := entity.BoundingBox{X: 0.30, Y: 0.20, Width: 0.40, Height: 0.50}
	return entity.FaceRegion{
		Box:        box,
		Confidence: 0.92,
		Landmarks:  entity.EstimateLandmarks(box),
		SkinTone:   entity.NewSkinTone(230, 190, 160),
	}
}

// portrait серый фон и светлый прямоугольник лица с лёгкой текстурой
func portrait(w, h int, region entity.FaceRegion) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	face := PixelRect(region.Box, w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 120, G: 120, B: 120, A: 255}
			if (image.Point{X: x, Y: y}).In(face) {
				c = color.NRGBA{R: 230, G: uint8(180 + (x+y)%20), B: 160, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func noise(w, h int, seed int64) *image.NRGBA {
	rnd := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(rnd.Intn(256))
		img.Pix[i+1] = uint8(rnd.Intn(256))
		img.Pix[i+2] = uint8(rnd.Intn(256))
		img.Pix[i+3] = 255
	}
	return img
}
