package vision

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

const remoteSource = "remote"

// DefaultPrompt инструкция для vision-модели
const DefaultPrompt = `Analyze the face in this photo. Reply with JSON only:
{"face_found": bool, "bounding_box": {"x","y","width","height"} as fractions of the image,
"confidence": 0..1, "landmarks": {"left_eye","right_eye","nose","mouth_left","mouth_right",
"chin","left_ear","right_ear","forehead_top"} each {"x","y"} as fractions,
"skin_tone": {"r","g","b","hex"} sampled from the cheeks}`

// RemoteAnalyzer детектор лица через внешнюю vision-модель
type RemoteAnalyzer struct {
	endpoint string
	apiKey   string
	prompt   string
	client   *http.Client
	log      *zap.Logger
}

func NewRemoteAnalyzer(endpoint, apiKey string, timeout time.Duration, log *zap.Logger) *RemoteAnalyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &RemoteAnalyzer{
		endpoint: endpoint,
		apiKey:   apiKey,
		prompt:   DefaultPrompt,
		client:   &http.Client{Timeout: timeout},
		log:      log,
	}
}

type analyzeRequest struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
}

type analyzeResponse struct {
	Text string `json:"text"`
}

// Analyze отправляет изображение модели и разбирает ответ
func (a *RemoteAnalyzer) Analyze(ctx context.Context, imageData []byte) entity.Detection {
	if a.endpoint == "" {
		return entity.NotFound(remoteSource, entity.ErrCapabilityUnavailable.Error())
	}

	body, err := json.Marshal(analyzeRequest{Image: raster.BytesToDataURI(imageData), Prompt: a.prompt})
	if err != nil {
		return entity.NotFound(remoteSource, err.Error())
	}

	data, err := a.do(ctx, body)
	if err != nil {
		a.log.Warn("vision request failed", zap.Error(err))
		return entity.NotFound(remoteSource, err.Error())
	}

	// модель отвечает либо {"text": "..."}, либо сразу текстом
	text := string(data)
	var resp analyzeResponse
	if err := json.Unmarshal(data, &resp); err == nil && resp.Text != "" {
		text = resp.Text
	}

	d := ParseDetection(remoteSource, text)
	if d.Kind == entity.DetectionMalformed {
		a.log.Warn("vision response is malformed", zap.String("reason", d.Reason))
	}
	return d
}

func (a *RemoteAnalyzer) do(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("vision model returned status %s", resp.Status)
	}
	return data, nil
}

var _ port.FaceAnalyzer = (*RemoteAnalyzer)(nil)
