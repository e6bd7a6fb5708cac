package port

import (
	"context"

	"tryon-bot/internal/domain/entity"
)

// Generator внешняя модель примерки
type Generator interface {
	// Generate возвращает сгенерированное изображение в виде data URI
	Generate(ctx context.Context, req entity.GenerationRequest) (string, error)
}
