package storage

import (
	"context"
	"sync"

	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище пользователей.
// Хранит значения и отдаёт копии: сообщения одного пользователя обрабатываются параллельно.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[int64]entity.User
}

// NewMemoryUserRepository создаёт новое in-memory хранилище
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]entity.User),
	}
}

// Get возвращает копию пользователя, создаёт нового если не найден
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	user, exists := r.users[userID]
	r.mu.RUnlock()
	if exists {
		return &user, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// могли создать между RUnlock и Lock
	if user, exists := r.users[userID]; exists {
		return &user, nil
	}
	user = *entity.NewUser(userID, chatID)
	r.users[userID] = user

	return &user, nil
}

// Save сохраняет состояние пользователя
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	r.users[user.ID] = *user
	r.mu.Unlock()

	return nil
}

// UpdateState обновляет состояние существующего пользователя
func (r *MemoryUserRepository) UpdateState(ctx context.Context, userID int64, state entity.UserState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if user, exists := r.users[userID]; exists {
		user.SetState(state)
		r.users[userID] = user
	}

	return nil
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*MemoryUserRepository)(nil)
