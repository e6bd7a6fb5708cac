//go:build !gocv
// +build !gocv

package vision

import (
	"context"

	"go.uber.org/zap"

	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/domain/port"
)

const haarSource = "haar"

// HaarAnalyzer заглушка без OpenCV
type HaarAnalyzer struct{}

// NewHaarAnalyzer создаёт детектор-заглушку (без OpenCV).
func NewHaarAnalyzer(cascadePath string, log *zap.Logger) (*HaarAnalyzer, error) {
	_ = cascadePath
	_ = log
	return &HaarAnalyzer{}, nil
}

// Analyze всегда NotFound, если сборка без тега gocv.
func (a *HaarAnalyzer) Analyze(ctx context.Context, imageData []byte) entity.Detection {
	_ = ctx
	_ = imageData
	return entity.NotFound(haarSource, "gocv build tag is not enabled")
}

// Close ничего не делает
func (a *HaarAnalyzer) Close() error {
	return nil
}

var _ port.FaceAnalyzer = (*HaarAnalyzer)(nil)
