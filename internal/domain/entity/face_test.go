package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoundingBoxCenter(t *testing.T) {
	b := BoundingBox{X: 0.30, Y: 0.20, Width: 0.40, Height: 0.50}
	x, y := b.Center()
	require.InDelta(t, 0.50, x, 1e-9)
	require.InDelta(t, 0.45, y, 1e-9)
}

func TestBoundingBoxClamp(t *testing.T) {
	b := BoundingBox{X: -0.1, Y: 0.8, Width: 0.5, Height: 0.5}.Clamp()
	require.Equal(t, 0.0, b.X)
	require.InDelta(t, 0.4, b.Width, 1e-9)
	require.InDelta(t, 0.2, b.Height, 1e-9)
}

func TestNewSkinTone_Hex(t *testing.T) {
	tone := NewSkinTone(230, 190, 160)
	require.Equal(t, "#e6bea0", tone.Hex)

	parsed, err := ParseSkinTone("#e6bea0")
	require.NoError(t, err)
	require.Equal(t, tone, parsed)

	_, err = ParseSkinTone("not-a-colour")
	require.Error(t, err)
}

func TestFaceRegionValidate(t *testing.T) {
	region := FaceRegion{Box: BoundingBox{X: 0.30, Y: 0.20, Width: 0.40, Height: 0.50}, Confidence: 0.92}
	require.NoError(t, region.Validate())

	region.Box.Width = 0.9
	require.Error(t, region.Validate())

	region.Box = BoundingBox{X: 0.1, Y: 0.1, Width: 0, Height: 0.2}
	require.Error(t, region.Validate())
}

func TestFallbackFaceRegion_IsValid(t *testing.T) {
	region := FallbackFaceRegion()
	require.NoError(t, region.Validate())
	require.Equal(t, 0.0, region.Confidence)
	require.Equal(t, NeutralSkinTone(), region.SkinTone)
	require.Len(t, region.Landmarks, 9)

	for name, p := range region.Landmarks {
		require.GreaterOrEqual(t, p.X, region.Box.X, name)
		require.LessOrEqual(t, p.X, region.Box.X+region.Box.Width, name)
	}
}

func TestDetection_Found(t *testing.T) {
	require.True(t, Detected("test", FallbackFaceRegion()).Found())
	require.False(t, NotFound("test", "empty").Found())
	require.Equal(t, "malformed", Malformed("test", "bad json").Kind.String())
}

func TestOptionsForMode(t *testing.T) {
	require.Equal(t, 0.99, OptionsForMode(ModeFullBody).Threshold)
	require.Less(t, OptionsForMode(ModeInpainting).Threshold, 0.99)
	require.Equal(t, 0.85, OptionsForMode(ModeInpainting).HardFloor)
}
