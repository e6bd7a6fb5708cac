package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/domain/port"
	"tryon-bot/internal/raster"
)

// Client адаптер внешнего сервиса примерки (эндпоинт /tryon)
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
	log      *zap.Logger
}

func NewClient(endpoint, apiKey string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
		log:      log,
	}
}

type tryOnRequest struct {
	PersonImage  string `json:"person_image"`
	ClothImage   string `json:"cloth_image"`
	MaskImage    string `json:"mask_image,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	PreserveFace bool   `json:"preserve_face"`
}

type tryOnResponse struct {
	ResultImage string         `json:"result_image"`
	Metadata    map[string]any `json:"metadata"`
	Error       string         `json:"error"`
}

// Generate отправляет запрос и возвращает результат как data URI
func (c *Client) Generate(ctx context.Context, req entity.GenerationRequest) (string, error) {
	if c.endpoint == "" {
		return "", entity.ErrCapabilityUnavailable
	}

	body, err := json.Marshal(tryOnRequest{
		PersonImage:  req.PersonImage,
		ClothImage:   req.GarmentImage,
		MaskImage:    req.MaskImage,
		Instructions: req.Instructions,
		PreserveFace: req.PreserveFace,
	})
	if err != nil {
		return "", fmt.Errorf("marshal tryon request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", entity.ErrGenerationFailed, err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: server returned status %s", entity.ErrGenerationFailed, resp.Status)
	}

	var out tryOnResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrMalformedResponse, err)
	}
	if out.ResultImage == "" {
		if out.Error != "" {
			return "", fmt.Errorf("%w: %s", entity.ErrGenerationFailed, out.Error)
		}
		return "", fmt.Errorf("%w: empty result_image", entity.ErrMalformedResponse)
	}

	c.log.Debug("generation finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Any("metadata", out.Metadata),
	)

	payload, mime := raster.StripDataURI(out.ResultImage)
	if mime == "" {
		mime = "image/png"
	}
	return raster.WithDataURI(payload, mime), nil
}

var _ port.Generator = (*Client)(nil)
