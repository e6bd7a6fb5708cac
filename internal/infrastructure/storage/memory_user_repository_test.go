package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"tryon-bot/internal/domain/entity"
)

func TestMemoryUserRepository_GetCreatesUser(t *testing.T) {
	repo := NewMemoryUserRepository()

	user, err := repo.Get(context.Background(), 7, 70)
	require.NoError(t, err)
	require.Equal(t, int64(7), user.ID)
	require.Equal(t, int64(70), user.ChatID)
	require.Equal(t, entity.StateMainMenu, user.State)
	require.Equal(t, entity.ModeFullBody, user.Mode)
}

func TestMemoryUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	user, err := repo.Get(ctx, 1, 1)
	require.NoError(t, err)
	user.SetState(entity.StateProcessing)

	stored, err := repo.Get(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, stored.State)

	require.NoError(t, repo.Save(ctx, user))
	stored, err = repo.Get(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, stored.State)
}

func TestMemoryUserRepository_UpdateState(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	require.NoError(t, repo.UpdateState(ctx, 5, entity.StateAwaitingSelfie))
	user, err := repo.Get(ctx, 5, 5)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)

	require.NoError(t, repo.UpdateState(ctx, 5, entity.StateAwaitingGarment))
	user, err = repo.Get(ctx, 5, 5)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingGarment, user.State)

	user.Mode = entity.ModeInpainting
	require.NoError(t, repo.Save(ctx, user))
	require.NoError(t, repo.UpdateState(ctx, 5, entity.StateProcessing))
	user, err = repo.Get(ctx, 5, 5)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, user.State)
	require.Equal(t, entity.ModeInpainting, user.Mode)
}

func TestMemoryUserRepository_Concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user, err := repo.Get(ctx, int64(i%4), 0)
			require.NoError(t, err)
			user.Mode = entity.ModeInpainting
			require.NoError(t, repo.Save(ctx, user))
		}(i)
	}
	wg.Wait()

	user, err := repo.Get(ctx, 3, 0)
	require.NoError(t, err)
	require.Equal(t, entity.ModeInpainting, user.Mode)
}

func TestMemoryUserRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryUserRepository().Get(ctx, 1, 1)
	require.ErrorIs(t, err, context.Canceled)
}
