package raster

import (
	"image"
	"time"

	"github.com/disintegration/imaging"

	"tryon-bot/internal/domain/entity"
)

// Segment строит полный SegmentationResult для одного изображения и региона лица.
func Segment(img *image.NRGBA, region entity.FaceRegion, opts entity.MaskOptions, extractPadding float64) (*entity.SegmentationResult, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, entity.ErrEmptyImage
	}
	if b.Min != (image.Point{}) {
		img = imaging.Clone(img)
	}

	masks, err := GenerateMasks(b.Dx(), b.Dy(), region, opts)
	if err != nil {
		return nil, err
	}
	ext, err := ExtractFace(img, region, extractPadding)
	if err != nil {
		return nil, err
	}

	core := masks.Core.Intersect(ext.Rect)
	if core.Empty() {
		core = ext.Rect
	}

	return &entity.SegmentationResult{
		FaceMask:    masks.Face,
		BodyMask:    masks.Body,
		FeatherMask: masks.Feather,
		FaceCrop:    ext.Crop,
		MattedCrop:  ext.Matted,
		Region:      region,
		SkinTone:    region.SkinTone,
		Width:       b.Dx(),
		Height:      b.Dy(),
		MaskRect:    masks.Rect,
		CropRect:    ext.Rect,
		CoreRect:    core,
		CreatedAt:   time.Now(),
	}, nil
}
