package app

import (
	"context"
	"errors"
	"sync"

	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/raster"
)

// ErrSelfieMissing гардероб прислан раньше селфи
var ErrSelfieMissing = errors.New("selfie is not found")

// TryOnSessionService сценарий бота: селфи, затем фото одежды, затем примерка.
type TryOnSessionService struct {
	users   *UserService
	tryOn   *TryOnService
	selfies map[int64]string
	mu      sync.RWMutex
}

// NewTryOnSessionService создаёт сервис диалога примерки.
func NewTryOnSessionService(users *UserService, tryOn *TryOnService) *TryOnSessionService {
	return &TryOnSessionService{
		users:   users,
		tryOn:   tryOn,
		selfies: make(map[int64]string),
	}
}

// Begin начинает новую примерку
func (s *TryOnSessionService) Begin(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	s.forget(userID)
	return s.users.BeginTryOn(ctx, userID, chatID)
}

// AcceptSelfie запоминает селфи до прихода фото одежды.
func (s *TryOnSessionService) AcceptSelfie(ctx context.Context, userID, chatID int64, photo []byte) (*entity.User, error) {
	s.mu.Lock()
	s.selfies[userID] = raster.BytesToDataURI(photo)
	s.mu.Unlock()
	return s.users.SetState(ctx, userID, chatID, entity.StateAwaitingGarment)
}

// AcceptGarment запускает примерку. Пользователь возвращается в главное меню при любом исходе.
func (s *TryOnSessionService) AcceptGarment(ctx context.Context, userID, chatID int64, photo []byte) (*TryOnOutput, error) {
	s.mu.RLock()
	selfie, ok := s.selfies[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSelfieMissing
	}

	user, err := s.users.SetState(ctx, userID, chatID, entity.StateProcessing)
	if err != nil {
		return nil, err
	}
	defer func() {
		s.forget(userID)
		_, _ = s.users.SetState(context.WithoutCancel(ctx), userID, chatID, entity.StateMainMenu)
	}()

	return s.tryOn.TryOn(ctx, TryOnInput{
		Person:  selfie,
		Garment: raster.BytesToDataURI(photo),
		Mode:    user.Mode,
	})
}

// Cancel сбрасывает диалог
func (s *TryOnSessionService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	s.forget(userID)
	return s.users.Cancel(ctx, userID, chatID)
}

func (s *TryOnSessionService) forget(userID int64) {
	s.mu.Lock()
	delete(s.selfies, userID)
	s.mu.Unlock()
}
