package port

import (
	"context"

	"tryon-bot/internal/domain/entity"
)

// UserRepository хранит диалоговое состояние и режим примерки.
// Реализации отдают копии: изменения возвращённого *entity.User
// не видны другим обработчикам до Save.
type UserRepository interface {
	// Get возвращает копию пользователя, при отсутствии заводит нового
	// с StateMainMenu и ModeFullBody
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save целиком заменяет запись, включая Mode
	Save(ctx context.Context, user *entity.User) error

	// UpdateState меняет только состояние, Mode не трогает
	UpdateState(ctx context.Context, userID int64, state entity.UserState) error
}
