package port

import (
	"context"

	"tryon-bot/internal/domain/entity"
)

// FaceAnalyzer внешний детектор лица. Не возвращает ошибок: любые сбои
// и неразборчивые ответы превращаются в NotFound или Malformed.
type FaceAnalyzer interface {
	// Analyze ищет лицо на изображении
	Analyze(ctx context.Context, imageData []byte) entity.Detection
}
