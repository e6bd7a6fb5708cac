package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	app "tryon-bot/internal/application"
	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/guard"
	"tryon-bot/internal/infrastructure/cache"
	"tryon-bot/internal/raster"
)

type stubAnalyzer struct{ d entity.Detection }

func (s stubAnalyzer) Analyze(context.Context, []byte) entity.Detection { return s.d }

type stubGenerator struct {
	out string
	err error
}

func (s stubGenerator) Generate(context.Context, entity.GenerationRequest) (string, error) {
	return s.out, s.err
}

func faceRegion() entity.FaceRegion {
	box := entity.BoundingBox{X: 0.30, Y: 0.20, Width: 0.40, Height: 0.50}
	return entity.FaceRegion{
		Box:        box,
		Confidence: 0.9,
		Landmarks:  entity.EstimateLandmarks(box),
		SkinTone:   entity.NewSkinTone(230, 190, 160),
	}
}

func person(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 200, 300))
	box := raster.PixelRect(faceRegion().Box, 200, 300)
	for y := 0; y < 300; y++ {
		for x := 0; x < 200; x++ {
			c := color.NRGBA{R: 120, G: 120, B: 120, A: 255}
			if (image.Point{X: x, Y: y}).In(box) {
				c = color.NRGBA{R: 230, G: uint8(180 + (x+y)%20), B: 160, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	uri, err := raster.EncodePNG(img)
	require.NoError(t, err)
	return uri
}

func black(t *testing.T) string {
	t.Helper()
	uri, err := raster.EncodePNG(image.NewNRGBA(image.Rect(0, 0, 200, 300)))
	require.NoError(t, err)
	return uri
}

func newTestRouter(gen stubGenerator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	segments := app.NewSegmentationService(
		stubAnalyzer{d: entity.Detected("stub", faceRegion())},
		cache.NewMemoryStore[*entity.SegmentationResult](5*time.Minute, time.Minute),
		entity.DefaultMaskOptions(),
		log,
	)
	profiles := app.NewProfileService(cache.NewMemoryStore[entity.AppearanceProfile](5*time.Minute, time.Minute), log)
	g := guard.New(raster.DefaultScorer, log)
	tryOn := app.NewTryOnService(segments, profiles, gen, g, nil, log)
	return NewRouter(NewHandler(segments, tryOn, g, nil, log), log, 32<<20)
}

func post(t *testing.T, r http.Handler, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHealth(t *testing.T) {
	r := newTestRouter(stubGenerator{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"ok"`)
}

func TestSegment(t *testing.T) {
	r := newTestRouter(stubGenerator{})

	w, resp := post(t, r, "/api/v1/segment", SegmentRequest{Image: person(t), IncludeMasks: true})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, resp["success"])
	data := resp["data"].(map[string]any)
	require.Equal(t, float64(200), data["width"])
	require.Equal(t, false, data["fallback"])
	require.True(t, strings.HasPrefix(data["face_mask"].(string), "data:image/png;base64,"))
	require.NotEmpty(t, data["body_mask"])

	w, resp = post(t, r, "/api/v1/segment", SegmentRequest{Image: "bm90IGFuIGltYWdl"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, false, resp["success"])

	w, _ = post(t, r, "/api/v1/segment", map[string]string{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRestore(t *testing.T) {
	r := newTestRouter(stubGenerator{})

	w, resp := post(t, r, "/api/v1/restore", RestoreRequest{Original: person(t), Candidate: black(t)})
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]any)
	require.NotEqual(t, string(entity.MethodFailed), data["method"])
	require.GreaterOrEqual(t, data["similarity"].(float64), 0.85)

	w, resp = post(t, r, "/api/v1/restore", RestoreRequest{Original: person(t), Candidate: person(t)})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, string(entity.MethodPassthrough), resp["message"])
}

func TestRestore_Overrides(t *testing.T) {
	r := newTestRouter(stubGenerator{})
	off := false

	_, resp := post(t, r, "/api/v1/restore", RestoreRequest{
		Original:       person(t),
		Candidate:      black(t),
		GuardOverrides: GuardOverrides{Validation: &off, ColorCorrection: &off},
	})
	data := resp["data"].(map[string]any)
	require.Equal(t, string(entity.MethodBlendedOverlay), data["method"])
	require.Equal(t, false, data["color_corrected"])
}

func TestDetectCorruption(t *testing.T) {
	r := newTestRouter(stubGenerator{})

	_, resp := post(t, r, "/api/v1/detect-corruption", DetectCorruptionRequest{Original: person(t), Candidate: person(t)})
	data := resp["data"].(map[string]any)
	require.Equal(t, false, data["corrupted"])
	require.Equal(t, 0.99, data["threshold"])

	_, resp = post(t, r, "/api/v1/detect-corruption", DetectCorruptionRequest{Original: person(t), Candidate: black(t)})
	require.Equal(t, true, resp["data"].(map[string]any)["corrupted"])
}

func TestValidate(t *testing.T) {
	r := newTestRouter(stubGenerator{})

	w, resp := post(t, r, "/api/v1/validate", ValidateRequest{Image: black(t)})
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]any)
	require.Equal(t, false, data["is_valid"])
	require.Contains(t, data["issues"], raster.IssuePredominantlyBlack)

	_, resp = post(t, r, "/api/v1/validate", ValidateRequest{Image: person(t)})
	require.Equal(t, true, resp["data"].(map[string]any)["is_valid"])
}

func TestTryOn(t *testing.T) {
	selfie := person(t)
	r := newTestRouter(stubGenerator{out: selfie})

	w, resp := post(t, r, "/api/v1/tryon", TryOnRequest{PersonImage: selfie, ClothImage: black(t)})
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]any)
	require.Equal(t, selfie, data["image"])
	require.Equal(t, false, data["face_corrupted"])
	require.Equal(t, float64(1), data["attempts"])
}

func TestTryOn_GenerationFailed(t *testing.T) {
	r := newTestRouter(stubGenerator{err: errors.New("upstream 500")})

	w, resp := post(t, r, "/api/v1/tryon", TryOnRequest{PersonImage: person(t), ClothImage: black(t)})
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Contains(t, resp["error"], "upstream 500")
}

func TestAnnotate(t *testing.T) {
	r := newTestRouter(stubGenerator{})

	w, resp := post(t, r, "/api/v1/annotate", AnnotateRequest{Image: person(t)})
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]any)
	require.True(t, strings.HasPrefix(data["image"].(string), "data:image/png;base64,"))
}
