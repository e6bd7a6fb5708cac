package httpapi

import (
	"errors"
	"image"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	app "tryon-bot/internal/application"
	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/guard"
	"tryon-bot/internal/raster"
)

// Handler HTTP-обработчики конвейера
type Handler struct {
	segments *app.SegmentationService
	tryOn    *app.TryOnService
	guard    *guard.Guard
	options  app.OptionsFunc
	log      *zap.Logger
}

func NewHandler(segments *app.SegmentationService, tryOn *app.TryOnService, g *guard.Guard, options app.OptionsFunc, log *zap.Logger) *Handler {
	if options == nil {
		options = entity.OptionsForMode
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		segments: segments,
		tryOn:    tryOn,
		guard:    g,
		options:  options,
		log:      log,
	}
}

// Health проверка живости
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Segment сегментация селфи
func (h *Handler) Segment(c *gin.Context) {
	var req SegmentRequest
	if !h.bind(c, &req) {
		return
	}

	seg, err := h.segments.Segment(c.Request.Context(), req.Image)
	if err != nil {
		h.fail(c, "segmentation failed", err)
		return
	}

	resp := SegmentResponse{
		Width:    seg.Width,
		Height:   seg.Height,
		Region:   seg.Region,
		SkinTone: seg.SkinTone,
		MaskRect: toRect(seg.MaskRect),
		CropRect: toRect(seg.CropRect),
		CoreRect: toRect(seg.CoreRect),
		Fallback: seg.Fallback,
	}
	if req.IncludeMasks {
		if err := encodeMasks(&resp, seg); err != nil {
			h.fail(c, "mask encoding failed", err)
			return
		}
	}

	c.JSON(http.StatusOK, Response{Success: true, Message: "ok", Data: resp})
}

// Restore сегментирует оригинал и прогоняет IdentityGuard
func (h *Handler) Restore(c *gin.Context) {
	var req RestoreRequest
	if !h.bind(c, &req) {
		return
	}

	seg, err := h.segments.Segment(c.Request.Context(), req.Original)
	if err != nil {
		h.fail(c, "segmentation failed", err)
		return
	}

	opts := req.GuardOverrides.apply(h.options(req.Mode))
	res, err := h.guard.Restore(req.Original, req.Candidate, seg, opts)
	if err != nil {
		h.fail(c, "restore failed", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Message: string(res.Method), Data: res})
}

// DetectCorruption быстрая проверка лица без восстановления
func (h *Handler) DetectCorruption(c *gin.Context) {
	var req DetectCorruptionRequest
	if !h.bind(c, &req) {
		return
	}

	seg, err := h.segments.Segment(c.Request.Context(), req.Original)
	if err != nil {
		h.fail(c, "segmentation failed", err)
		return
	}

	threshold := h.options(req.Mode).Threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	corrupted, err := h.guard.DetectFaceCorruption(req.Original, req.Candidate, seg, threshold)
	if err != nil {
		h.fail(c, "detection failed", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "ok",
		Data:    DetectCorruptionResponse{Corrupted: corrupted, Threshold: threshold},
	})
}

// Validate грубая проверка содержимого. Ответ всегда 200, вердикт в is_valid.
func (h *Handler) Validate(c *gin.Context) {
	var req ValidateRequest
	if !h.bind(c, &req) {
		return
	}
	report := raster.ValidateImageContent(req.Image)
	c.JSON(http.StatusOK, Response{Success: true, Message: "ok", Data: report})
}

// TryOn полный конвейер примерки
func (h *Handler) TryOn(c *gin.Context) {
	var req TryOnRequest
	if !h.bind(c, &req) {
		return
	}

	out, err := h.tryOn.TryOn(c.Request.Context(), app.TryOnInput{
		Person:  req.PersonImage,
		Garment: req.ClothImage,
		Mode:    req.Mode,
	})
	if err != nil {
		h.fail(c, "try-on failed", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Message: "ok", Data: out})
}

// Annotate рисует найденный регион и маски поверх селфи
func (h *Handler) Annotate(c *gin.Context) {
	var req AnnotateRequest
	if !h.bind(c, &req) {
		return
	}

	img, err := raster.DecodeImage(req.Image)
	if err != nil {
		h.fail(c, "decode failed", err)
		return
	}
	seg, err := h.segments.Segment(c.Request.Context(), req.Image)
	if err != nil {
		h.fail(c, "segmentation failed", err)
		return
	}
	out, err := raster.EncodePNG(raster.Annotate(img, seg))
	if err != nil {
		h.fail(c, "encode failed", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Message: "ok", Data: AnnotateResponse{Image: out, Fallback: seg.Fallback}})
}

func encodeMasks(resp *SegmentResponse, seg *entity.SegmentationResult) error {
	for _, m := range []struct {
		dst *string
		img image.Image
	}{
		{&resp.FaceMask, seg.FaceMask},
		{&resp.BodyMask, seg.BodyMask},
		{&resp.FeatherMask, seg.FeatherMask},
		{&resp.FaceCrop, seg.FaceCrop},
	} {
		uri, err := raster.EncodePNG(m.img)
		if err != nil {
			return err
		}
		*m.dst = uri
	}
	return nil
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Message: "invalid request",
			Error:   err.Error(),
		})
		return false
	}
	return true
}

func (h *Handler) fail(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrImageDecode):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrCapabilityUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, entity.ErrGenerationFailed), errors.Is(err, entity.ErrMalformedResponse):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		h.log.Error(message, zap.Error(err))
	} else {
		h.log.Warn(message, zap.Error(err))
	}
	c.JSON(status, ErrorResponse{
		Success: false,
		Message: message,
		Error:   err.Error(),
	})
}
