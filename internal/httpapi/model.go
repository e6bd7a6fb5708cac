package httpapi

import (
	"image"

	"tryon-bot/internal/domain/entity"
)

// Response успешный ответ
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse ответ с ошибкой
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type SegmentRequest struct {
	Image        string `json:"image" binding:"required"`
	IncludeMasks bool   `json:"include_masks"`
}

// Rect прямоугольник в пикселях
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func toRect(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

type SegmentResponse struct {
	Width    int               `json:"width"`
	Height   int               `json:"height"`
	Region   entity.FaceRegion `json:"region"`
	SkinTone entity.SkinTone   `json:"skin_tone"`
	MaskRect Rect              `json:"mask_rect"`
	CropRect Rect              `json:"crop_rect"`
	CoreRect Rect              `json:"core_rect"`
	Fallback bool              `json:"fallback"`

	FaceMask    string `json:"face_mask,omitempty"`
	BodyMask    string `json:"body_mask,omitempty"`
	FeatherMask string `json:"feather_mask,omitempty"`
	FaceCrop    string `json:"face_crop,omitempty"`
}

// GuardOverrides необязательные поправки к настройкам режима
type GuardOverrides struct {
	Threshold       *float64 `json:"threshold"`
	HardFloor       *float64 `json:"hard_floor"`
	ColorCorrection *bool    `json:"color_correction"`
	FeatherRadius   *int     `json:"feather_radius"`
	Validation      *bool    `json:"validation"`
}

func (o GuardOverrides) apply(opts entity.PostProcessingOptions) entity.PostProcessingOptions {
	if o.Threshold != nil {
		opts.Threshold = *o.Threshold
	}
	if o.HardFloor != nil {
		opts.HardFloor = *o.HardFloor
	}
	if o.ColorCorrection != nil {
		opts.ColorCorrection = *o.ColorCorrection
	}
	if o.FeatherRadius != nil {
		opts.FeatherRadius = *o.FeatherRadius
	}
	if o.Validation != nil {
		opts.Validation = *o.Validation
	}
	return opts
}

type RestoreRequest struct {
	Original  string      `json:"original" binding:"required"`
	Candidate string      `json:"candidate" binding:"required"`
	Mode      entity.Mode `json:"mode"`
	GuardOverrides
}

type DetectCorruptionRequest struct {
	Original  string      `json:"original" binding:"required"`
	Candidate string      `json:"candidate" binding:"required"`
	Mode      entity.Mode `json:"mode"`
	Threshold *float64    `json:"threshold"`
}

type DetectCorruptionResponse struct {
	Corrupted bool    `json:"corrupted"`
	Threshold float64 `json:"threshold"`
}

type ValidateRequest struct {
	Image string `json:"image" binding:"required"`
}

// TryOnRequest поля названы так же, как у сервиса генерации
type TryOnRequest struct {
	PersonImage string      `json:"person_image" binding:"required"`
	ClothImage  string      `json:"cloth_image" binding:"required"`
	Mode        entity.Mode `json:"mode"`
}

type AnnotateRequest struct {
	Image string `json:"image" binding:"required"`
}

type AnnotateResponse struct {
	Image    string `json:"image"`
	Fallback bool   `json:"fallback"`
}
