package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu        UserState = "main_menu"        // В главном меню
	StateAwaitingSelfie  UserState = "awaiting_selfie"  // Ожидание селфи
	StateAwaitingGarment UserState = "awaiting_garment" // Ожидание фото одежды
	StateProcessing      UserState = "processing"       // Идёт примерка
)

// User представляет пользователя бота
type User struct {
	ID     int64     // Telegram User ID
	ChatID int64     // Telegram Chat ID
	State  UserState // Текущее состояние пользователя
	Mode   Mode      // Режим генерации для следующей примерки
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
		Mode:   ModeFullBody,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}
