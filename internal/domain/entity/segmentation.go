package entity

import (
	"image"
	"time"
)

// MaskOptions настройки построения масок
type MaskOptions struct {
	Padding       float64 // базовый отступ вокруг лица (доля размера лица)
	FeatherRadius int     // радиус растушёвки в пикселях
	Resolution    int     // длинная сторона при отрисовке масок, 0 означает полный размер
}

// DefaultMaskOptions значения по умолчанию
func DefaultMaskOptions() MaskOptions {
	return MaskOptions{
		Padding:       0.15,
		FeatherRadius: 20,
		Resolution:    0,
	}
}

// DefaultExtractPadding отступ при вырезании лица. Чуть больше, чем у масок,
// чтобы при наложении оставался контекст для смешивания.
const DefaultExtractPadding = 0.20

// Коэффициенты асимметрии отступа: сверху волосы, снизу подбородок и шея.
const (
	PaddingTopFactor    = 1.5
	PaddingBottomFactor = 2.5
)

// SegmentationResult неизменяемый снимок сегментации одного исходного изображения.
// Создаётся один раз на селфи и только читается всеми запусками IdentityGuard.
type SegmentationResult struct {
	FaceMask    *image.Gray  // чёрный эллипс (лицо) на белом фоне
	BodyMask    *image.Gray  // точная инверсия FaceMask
	FeatherMask *image.Gray  // альфа с радиальным затуханием, 255 в центре лица
	FaceCrop    *image.NRGBA // непрозрачный фрагмент лица
	MattedCrop  *image.NRGBA // фрагмент лица с радиальной альфой

	Region   FaceRegion
	SkinTone SkinTone
	Width    int
	Height   int

	MaskRect image.Rectangle // прямоугольник эллипса маски
	CropRect image.Rectangle // прямоугольник вырезанного фрагмента
	CoreRect image.Rectangle // прямоугольник, вписанный в эллипс маски

	Fallback  bool // регион подставлен вместо детекции
	CreatedAt time.Time
}

// Bounds возвращает прямоугольник исходного изображения
func (s *SegmentationResult) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// AppearanceProfile грубое описание внешности по селфи, используется в инструкциях генерации.
type AppearanceProfile struct {
	DominantColors []string `json:"dominant_colors" msgpack:"dc"`
	UpperColor     string   `json:"upper_color" msgpack:"uc"`
	MeanBrightness float64  `json:"mean_brightness" msgpack:"mb"`
	AspectRatio    float64  `json:"aspect_ratio" msgpack:"ar"`
	Orientation    string   `json:"orientation" msgpack:"or"`
}
