package app

import (
	"context"
	"image"
	"image/color"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/guard"
	"tryon-bot/internal/infrastructure/cache"
	"tryon-bot/internal/raster"
)

func scenarioRegion() entity.FaceRegion {
	box := entity.BoundingBox{X: 0.30, Y: 0.20, Width: 0.40, Height: 0.50}
	return entity.FaceRegion{
		Box:        box,
		Confidence: 0.92,
		Landmarks:  entity.EstimateLandmarks(box),
		SkinTone:   entity.NewSkinTone(230, 190, 160),
	}
}

func personImage(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 200, 300))
	box := raster.PixelRect(scenarioRegion().Box, 200, 300)
	for y := 0; y < 300; y++ {
		for x := 0; x < 200; x++ {
			c := color.NRGBA{R: 120, G: 120, B: 120, A: 255}
			if (image.Point{X: x, Y: y}).In(box) {
				c = color.NRGBA{R: 230, G: 190, B: 160, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return encode(t, img)
}

func noiseImage(t *testing.T, w, h int, seed int64) string {
	t.Helper()
	rnd := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(40 + rnd.Intn(200))
		img.Pix[i+1] = uint8(40 + rnd.Intn(200))
		img.Pix[i+2] = uint8(40 + rnd.Intn(200))
		img.Pix[i+3] = 255
	}
	return encode(t, img)
}

func blackImage(t *testing.T) string {
	t.Helper()
	return encode(t, image.NewNRGBA(image.Rect(0, 0, 200, 300)))
}

func encode(t *testing.T, img image.Image) string {
	t.Helper()
	uri, err := raster.EncodePNG(img)
	require.NoError(t, err)
	return uri
}

// fakeAnalyzer отдаёт заданный результат и считает вызовы
type fakeAnalyzer struct {
	mu    sync.Mutex
	d     entity.Detection
	calls int
}

func (f *fakeAnalyzer) Analyze(context.Context, []byte) entity.Detection {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.d
}

// fakeGenerator отдаёт ответы по порядку, последний повторяет
type fakeGenerator struct {
	mu       sync.Mutex
	outputs  []string
	errs     []error
	calls    int
	requests []entity.GenerationRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req entity.GenerationRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	f.requests = append(f.requests, req)
	var err error
	if len(f.errs) > 0 {
		err = f.errs[min(i, len(f.errs)-1)]
	}
	if err != nil {
		return "", err
	}
	return f.outputs[min(i, len(f.outputs)-1)], nil
}

func newSegmentationService(analyzer *fakeAnalyzer) *SegmentationService {
	return NewSegmentationService(
		analyzer,
		cache.NewMemoryStore[*entity.SegmentationResult](5*time.Minute, time.Minute),
		entity.DefaultMaskOptions(),
		nil,
	)
}

func newTryOnService(analyzer *fakeAnalyzer, gen *fakeGenerator) *TryOnService {
	return NewTryOnService(
		newSegmentationService(analyzer),
		NewProfileService(cache.NewMemoryStore[entity.AppearanceProfile](5*time.Minute, time.Minute), nil),
		gen,
		guard.New(raster.DefaultScorer, nil),
		nil,
		nil,
	)
}
