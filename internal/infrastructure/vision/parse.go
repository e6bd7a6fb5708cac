package vision

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"tryon-bot/internal/domain/entity"
)

// wireRegion ответ vision-модели. Все поля необязательные, модель может прислать что угодно.
type wireRegion struct {
	FaceFound   *bool                `json:"face_found"`
	BoundingBox *wireBox             `json:"bounding_box"`
	Confidence  *float64             `json:"confidence"`
	Landmarks   map[string]wirePoint `json:"landmarks"`
	SkinTone    *wireSkinTone        `json:"skin_tone"`
}

type wireBox struct {
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

type wirePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type wireSkinTone struct {
	R   *int   `json:"r"`
	G   *int   `json:"g"`
	B   *int   `json:"b"`
	Hex string `json:"hex"`
}

// ParseDetection разбирает текстовый ответ модели. Текст может содержать
// пояснения и markdown-блок вокруг JSON.
func ParseDetection(source, text string) entity.Detection {
	raw, ok := extractJSON(text)
	if !ok {
		return entity.Malformed(source, "no json object in response")
	}

	var w wireRegion
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return entity.Malformed(source, fmt.Sprintf("invalid json: %v", err))
	}
	if w.FaceFound != nil && !*w.FaceFound {
		return entity.NotFound(source, entity.ErrNoFace.Error())
	}

	box, err := w.BoundingBox.toBox()
	if err != nil {
		return entity.Malformed(source, err.Error())
	}

	region := entity.FaceRegion{
		Box:        box,
		Confidence: 1,
		SkinTone:   w.SkinTone.toSkinTone(),
	}
	if w.Confidence != nil && !math.IsNaN(*w.Confidence) {
		region.Confidence = math.Min(1, math.Max(0, *w.Confidence))
	}

	region.Landmarks = entity.EstimateLandmarks(box)
	for name, p := range w.Landmarks {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			continue
		}
		region.Landmarks[name] = entity.Point{X: clamp(p.X), Y: clamp(p.Y)}
	}

	if err := region.Validate(); err != nil {
		return entity.Malformed(source, err.Error())
	}
	return entity.Detected(source, region)
}

func (b *wireBox) toBox() (entity.BoundingBox, error) {
	if b == nil || b.X == nil || b.Y == nil || b.Width == nil || b.Height == nil {
		return entity.BoundingBox{}, fmt.Errorf("%w: bounding box is incomplete", entity.ErrMalformedResponse)
	}
	for _, v := range []float64{*b.X, *b.Y, *b.Width, *b.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return entity.BoundingBox{}, fmt.Errorf("%w: bounding box is not finite", entity.ErrMalformedResponse)
		}
	}
	if *b.Width <= 0 || *b.Height <= 0 {
		return entity.BoundingBox{}, fmt.Errorf("%w: bounding box is degenerate", entity.ErrMalformedResponse)
	}

	box := entity.BoundingBox{X: *b.X, Y: *b.Y, Width: *b.Width, Height: *b.Height}.Clamp()
	if box.Width <= 0 || box.Height <= 0 {
		return entity.BoundingBox{}, fmt.Errorf("%w: bounding box is outside the image", entity.ErrMalformedResponse)
	}
	return box, nil
}

func (s *wireSkinTone) toSkinTone() entity.SkinTone {
	if s == nil {
		return entity.NeutralSkinTone()
	}
	if s.Hex != "" {
		if tone, err := entity.ParseSkinTone(s.Hex); err == nil {
			return tone
		}
	}
	if s.R == nil || s.G == nil || s.B == nil {
		return entity.NeutralSkinTone()
	}
	return entity.NewSkinTone(channel(*s.R), channel(*s.G), channel(*s.B))
}

// extractJSON вырезает первый JSON-объект из текста, снимая markdown-ограждение.
func extractJSON(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "```"); i >= 0 {
		rest := text[i+3:]
		rest = strings.TrimPrefix(rest, "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		text = rest
	}
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func clamp(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func channel(v int) uint8 {
	return uint8(min(255, max(0, v)))
}
