package container

import (
	"context"
	"image"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"tryon-bot/config"
	"tryon-bot/internal/infrastructure/storage"
	"tryon-bot/internal/raster"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.New()
	require.NoError(t, err)
	return cfg
}

func TestNew_MemoryOnly(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis.Addr = ""

	c, err := New(cfg, storage.NewMemoryUserRepository(), nil)
	require.NoError(t, err)
	require.NotNil(t, c.TryOnService)
	require.NotNil(t, c.SessionService)
	require.NotNil(t, c.Handler)
	require.NoError(t, c.Close())
}

func TestNew_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.Addr = mr.Addr()

	c, err := New(cfg, storage.NewMemoryUserRepository(), nil)
	require.NoError(t, err)
	defer c.Close()

	img := image.NewNRGBA(image.Rect(0, 0, 120, 160))
	for i := range img.Pix {
		img.Pix[i] = uint8(60 + i%150)
	}
	uri, err := raster.EncodePNG(img)
	require.NoError(t, err)

	seg, err := c.SegmentationService.Segment(context.Background(), uri)
	require.NoError(t, err)
	require.True(t, seg.Fallback)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	require.Regexp(t, `^tryon:seg:[0-9a-f]{32}$`, keys[0])
}

func TestNew_UnreachableRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis.Addr = "127.0.0.1:1"

	c, err := New(cfg, storage.NewMemoryUserRepository(), nil)
	require.NoError(t, err)
	require.NoError(t, c.Close())
}

func TestNew_GuardScorer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Guard.Scorer = "strict"

	c, err := New(cfg, storage.NewMemoryUserRepository(), nil)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	cfg.Guard.Scorer = "fuzzy"
	_, err = New(cfg, storage.NewMemoryUserRepository(), nil)
	require.ErrorContains(t, err, "unknown scorer")
}

func TestNew_MissingCascade(t *testing.T) {
	cfg := testConfig(t)
	cfg.Vision.PigoCascade = "/nonexistent/facefinder"

	_, err := New(cfg, storage.NewMemoryUserRepository(), nil)
	require.Error(t, err)
}
