package entity

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Имена опорных точек лица.
const (
	LandmarkLeftEye     = "left_eye"
	LandmarkRightEye    = "right_eye"
	LandmarkNose        = "nose"
	LandmarkMouthLeft   = "mouth_left"
	LandmarkMouthRight  = "mouth_right"
	LandmarkChin        = "chin"
	LandmarkLeftEar     = "left_ear"
	LandmarkRightEar    = "right_ear"
	LandmarkForeheadTop = "forehead_top"
)

// BoundingBox нормализованный прямоугольник лица (доли ширины и высоты изображения)
type BoundingBox struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Width  float64 `json:"width" msgpack:"w"`
	Height float64 `json:"height" msgpack:"h"`
}

// Center возвращает центр прямоугольника
func (b BoundingBox) Center() (x, y float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Clamp обрезает прямоугольник так, чтобы он не выходил за пределы [0,1].
func (b BoundingBox) Clamp() BoundingBox {
	x0 := clamp01(b.X)
	y0 := clamp01(b.Y)
	x1 := clamp01(b.X + b.Width)
	y1 := clamp01(b.Y + b.Height)
	return BoundingBox{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Point нормализованная точка на изображении
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Landmarks набор именованных опорных точек
type Landmarks map[string]Point

// SkinTone цвет кожи (RGB + hex)
type SkinTone struct {
	R   uint8  `json:"r" msgpack:"r"`
	G   uint8  `json:"g" msgpack:"g"`
	B   uint8  `json:"b" msgpack:"b"`
	Hex string `json:"hex" msgpack:"hex"`
}

// NewSkinTone собирает цвет кожи и заполняет hex-представление.
func NewSkinTone(r, g, b uint8) SkinTone {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	return SkinTone{R: r, G: g, B: b, Hex: c.Hex()}
}

// ParseSkinTone разбирает цвет вида #rrggbb.
func ParseSkinTone(hex string) (SkinTone, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return SkinTone{}, fmt.Errorf("parse skin tone %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return NewSkinTone(r, g, b), nil
}

// NeutralSkinTone используется, когда цвет кожи определить не удалось
func NeutralSkinTone() SkinTone {
	return NewSkinTone(200, 160, 140)
}

// FaceRegion результат детекции лица
type FaceRegion struct {
	Box        BoundingBox `json:"bounding_box" msgpack:"box"`
	Confidence float64     `json:"confidence" msgpack:"conf"`
	Landmarks  Landmarks   `json:"landmarks" msgpack:"lm"`
	SkinTone   SkinTone    `json:"skin_tone" msgpack:"skin"`
}

// Validate проверяет, что все координаты лежат в [0,1] и прямоугольник не вырожден.
func (r FaceRegion) Validate() error {
	b := r.Box
	for _, v := range []float64{b.X, b.Y, b.Width, b.Height} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("bounding box out of range: %+v", b)
		}
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("degenerate bounding box: %+v", b)
	}
	if b.X+b.Width > 1+1e-9 || b.Y+b.Height > 1+1e-9 {
		return fmt.Errorf("bounding box exceeds image: %+v", b)
	}
	for name, p := range r.Landmarks {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			return fmt.Errorf("landmark %s out of range: %+v", name, p)
		}
	}
	return nil
}

// EstimateLandmarks раскладывает опорные точки по типовым пропорциям лица внутри прямоугольника.
func EstimateLandmarks(b BoundingBox) Landmarks {
	at := func(fx, fy float64) Point {
		return Point{X: clamp01(b.X + b.Width*fx), Y: clamp01(b.Y + b.Height*fy)}
	}
	return Landmarks{
		LandmarkLeftEye:     at(0.30, 0.38),
		LandmarkRightEye:    at(0.70, 0.38),
		LandmarkNose:        at(0.50, 0.58),
		LandmarkMouthLeft:   at(0.36, 0.76),
		LandmarkMouthRight:  at(0.64, 0.76),
		LandmarkChin:        at(0.50, 0.98),
		LandmarkLeftEar:     at(0.02, 0.48),
		LandmarkRightEar:    at(0.98, 0.48),
		LandmarkForeheadTop: at(0.50, 0.02),
	}
}

// FallbackFaceRegion детерминированная замена, когда лицо не найдено:
// прямоугольник по центру верхней части кадра и нейтральный цвет кожи.
func FallbackFaceRegion() FaceRegion {
	box := BoundingBox{X: 0.30, Y: 0.10, Width: 0.40, Height: 0.40}
	return FaceRegion{
		Box:        box,
		Confidence: 0,
		Landmarks:  EstimateLandmarks(box),
		SkinTone:   NeutralSkinTone(),
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
