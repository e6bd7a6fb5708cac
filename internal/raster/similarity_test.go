package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"tryon-bot/internal/domain/entity"
)

func TestScorer_Identical(t *testing.T) {
	for _, img := range []*image.NRGBA{
		noise(90, 70, 1),
		portrait(200, 300, testRegion()),
		solid(5, 5, color.NRGBA{R: 10, G: 20, B: 30, A: 255}),
	} {
		require.Equal(t, 1.0, DefaultScorer.Score(img, img))
		require.Equal(t, 1.0, StrictScorer.Score(img, img))
	}
}

func TestScorerByName(t *testing.T) {
	for name, want := range map[string]Scorer{"": DefaultScorer, "default": DefaultScorer, "strict": StrictScorer} {
		s, err := ScorerByName(name)
		require.NoError(t, err)
		require.Equal(t, want, s)
	}
	_, err := ScorerByName("Strict")
	require.Error(t, err)
}

func TestScorer_Opposite(t *testing.T) {
	black := solid(32, 32, color.NRGBA{A: 255})
	white := solid(32, 32, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	require.Equal(t, 0.0, DefaultScorer.Score(black, white))

	grey := solid(32, 32, color.NRGBA{R: 64, G: 64, B: 64, A: 255})
	require.InDelta(t, 0.5, DefaultScorer.Score(black, grey), 1e-9)
}

func TestScorer_Empty(t *testing.T) {
	require.Equal(t, 0.0, DefaultScorer.Score(nil, solid(4, 4, color.NRGBA{})))
	require.Equal(t, 0.0, DefaultScorer.Score(image.NewNRGBA(image.Rect(0, 0, 0, 0)), solid(4, 4, color.NRGBA{})))
}

func TestFaceScore_Original(t *testing.T) {
	img := portrait(200, 300, testRegion())
	seg, err := Segment(img, testRegion(), entity.DefaultMaskOptions(), entity.DefaultExtractPadding)
	require.NoError(t, err)

	require.Equal(t, 1.0, DefaultScorer.FaceScore(img, seg))
	require.Less(t, DefaultScorer.FaceScore(noise(200, 300, 7), seg), 0.8)
}
