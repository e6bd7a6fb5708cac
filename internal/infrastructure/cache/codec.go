package cache

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"time"

	"github.com/disintegration/imaging"
	"github.com/vmihailenco/msgpack/v5"

	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/raster"
)

// Codec сериализация значений для внешнего хранилища
type Codec[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

// MsgpackCodec для простых структур с msgpack-тегами
type MsgpackCodec[V any] struct{}

func (MsgpackCodec[V]) Marshal(v V) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (MsgpackCodec[V]) Unmarshal(data []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(data, &v)
	return v, err
}

// segmentationRecord растры хранятся в PNG, остальное как есть
type segmentationRecord struct {
	FaceMask    []byte            `msgpack:"fm"`
	BodyMask    []byte            `msgpack:"bm"`
	FeatherMask []byte            `msgpack:"ft"`
	FaceCrop    []byte            `msgpack:"fc"`
	MattedCrop  []byte            `msgpack:"mc"`
	Region      entity.FaceRegion `msgpack:"rg"`
	SkinTone    entity.SkinTone   `msgpack:"st"`
	Width       int               `msgpack:"w"`
	Height      int               `msgpack:"h"`
	MaskRect    [4]int            `msgpack:"mr"`
	CropRect    [4]int            `msgpack:"cr"`
	CoreRect    [4]int            `msgpack:"co"`
	Fallback    bool              `msgpack:"fb"`
	CreatedAt   time.Time         `msgpack:"ts"`
}

// SegmentationCodec сериализует SegmentationResult в msgpack-запись с PNG-растрами.
type SegmentationCodec struct{}

func (SegmentationCodec) Marshal(s *entity.SegmentationResult) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("nil segmentation")
	}
	rec := segmentationRecord{
		Region:    s.Region,
		SkinTone:  s.SkinTone,
		Width:     s.Width,
		Height:    s.Height,
		MaskRect:  packRect(s.MaskRect),
		CropRect:  packRect(s.CropRect),
		CoreRect:  packRect(s.CoreRect),
		Fallback:  s.Fallback,
		CreatedAt: s.CreatedAt,
	}
	for _, f := range []struct {
		dst *[]byte
		img image.Image
	}{
		{&rec.FaceMask, s.FaceMask},
		{&rec.BodyMask, s.BodyMask},
		{&rec.FeatherMask, s.FeatherMask},
		{&rec.FaceCrop, s.FaceCrop},
		{&rec.MattedCrop, s.MattedCrop},
	} {
		data, err := raster.EncodePNGBytes(f.img)
		if err != nil {
			return nil, err
		}
		*f.dst = data
	}
	return msgpack.Marshal(&rec)
}

func (SegmentationCodec) Unmarshal(data []byte) (*entity.SegmentationResult, error) {
	var rec segmentationRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal segmentation: %w", err)
	}

	s := &entity.SegmentationResult{
		Region:    rec.Region,
		SkinTone:  rec.SkinTone,
		Width:     rec.Width,
		Height:    rec.Height,
		MaskRect:  unpackRect(rec.MaskRect),
		CropRect:  unpackRect(rec.CropRect),
		CoreRect:  unpackRect(rec.CoreRect),
		Fallback:  rec.Fallback,
		CreatedAt: rec.CreatedAt,
	}

	var err error
	if s.FaceMask, err = decodeGray(rec.FaceMask); err != nil {
		return nil, err
	}
	if s.BodyMask, err = decodeGray(rec.BodyMask); err != nil {
		return nil, err
	}
	if s.FeatherMask, err = decodeGray(rec.FeatherMask); err != nil {
		return nil, err
	}
	if s.FaceCrop, _, err = raster.DecodeBytes(rec.FaceCrop); err != nil {
		return nil, err
	}
	if s.MattedCrop, _, err = raster.DecodeBytes(rec.MattedCrop); err != nil {
		return nil, err
	}
	for _, m := range []*image.Gray{s.FaceMask, s.BodyMask, s.FeatherMask} {
		if err := raster.CheckDimensions(m, s.Width, s.Height); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func decodeGray(data []byte) (*image.Gray, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode mask: %w", err)
	}
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g, nil
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), imaging.Clone(img), image.Point{}, draw.Src)
	return g, nil
}

func packRect(r image.Rectangle) [4]int {
	return [4]int{r.Min.X, r.Min.Y, r.Max.X, r.Max.Y}
}

func unpackRect(v [4]int) image.Rectangle {
	return image.Rect(v[0], v[1], v[2], v[3])
}

var (
	_ Codec[*entity.SegmentationResult] = SegmentationCodec{}
	_ Codec[entity.AppearanceProfile]   = MsgpackCodec[entity.AppearanceProfile]{}
)
