package entity

import "time"

// Method способ, которым получено итоговое изображение
type Method string

const (
	MethodPassthrough         Method = "passthrough"
	MethodBlendedOverlay      Method = "blended_overlay"
	MethodColorMatchedOverlay Method = "color_matched_overlay"
	MethodDirectCopy          Method = "direct_copy"
	MethodFailed              Method = "failed"
)

// Mode режим генерации
type Mode string

const (
	ModeFullBody   Mode = "full_body"
	ModeInpainting Mode = "inpainting"
)

// PostProcessingOptions пороги и переключатели IdentityGuard
type PostProcessingOptions struct {
	Threshold       float64 // порог принятия без изменений
	HardFloor       float64 // минимальное сходство после наложения
	ColorCorrection bool
	FeatherRadius   int
	Validation      bool
	MaxRetries      int
}

// DefaultPostProcessingOptions строгие настройки для полного роста.
func DefaultPostProcessingOptions() PostProcessingOptions {
	return PostProcessingOptions{
		Threshold:       0.99,
		HardFloor:       0.85,
		ColorCorrection: true,
		FeatherRadius:   20,
		Validation:      true,
		MaxRetries:      2,
	}
}

// InpaintingPostProcessingOptions более мягкий порог для режима inpainting.
func InpaintingPostProcessingOptions() PostProcessingOptions {
	opts := DefaultPostProcessingOptions()
	opts.Threshold = 0.90
	return opts
}

// OptionsForMode возвращает настройки по режиму
func OptionsForMode(mode Mode) PostProcessingOptions {
	if mode == ModeInpainting {
		return InpaintingPostProcessingOptions()
	}
	return DefaultPostProcessingOptions()
}

// PostProcessingResult итог одного запуска IdentityGuard. Создаётся заново на каждую попытку.
type PostProcessingResult struct {
	Image             string        `json:"image"`
	FaceOverlaid      bool          `json:"face_overlaid"`
	Similarity        float64       `json:"similarity"`
	InitialSimilarity float64       `json:"initial_similarity"`
	ColorCorrected    bool          `json:"color_corrected"`
	Elapsed           time.Duration `json:"elapsed"`
	ValidationPassed  bool          `json:"validation_passed"`
	Method            Method        `json:"method"`
	Trace             []string      `json:"trace,omitempty"`
	Error             string        `json:"error,omitempty"`
}

// ContentReport результат грубой проверки содержимого изображения
type ContentReport struct {
	IsValid        bool     `json:"is_valid"`
	Issues         []string `json:"issues"`
	MeanBrightness float64  `json:"mean_brightness"`
	StdDev         float64  `json:"std_dev"`
}

// GenerationRequest запрос к внешней модели примерки
type GenerationRequest struct {
	PersonImage  string
	GarmentImage string
	MaskImage    string // маска области одежды, только для inpainting
	Instructions string
	PreserveFace bool
}
