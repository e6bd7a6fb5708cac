package raster

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tryon-bot/internal/domain/entity"
)

func TestTorsoMask(t *testing.T) {
	seg, err := Segment(portrait(200, 300, testRegion()), testRegion(), entity.DefaultMaskOptions(), entity.DefaultExtractPadding)
	require.NoError(t, err)

	mask := TorsoMask(seg)
	require.NoError(t, CheckDimensions(mask, 200, 300))
	require.EqualValues(t, 0, mask.GrayAt(5, 5).Y)
	require.EqualValues(t, 0, mask.GrayAt(100, 140).Y, "face stays protected")
	require.EqualValues(t, 255, mask.GrayAt(45, 235).Y)
}

func TestAnnotate(t *testing.T) {
	img := portrait(200, 300, testRegion())
	seg, err := Segment(img, testRegion(), entity.DefaultMaskOptions(), entity.DefaultExtractPadding)
	require.NoError(t, err)

	out := Annotate(img, seg)
	require.Equal(t, img.Bounds(), out.Bounds())
}
