package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/infrastructure/storage"
	"tryon-bot/internal/raster"
)

func pngBytes(t *testing.T, uri string) []byte {
	t.Helper()
	data, _, err := raster.DecodeBase64(uri)
	require.NoError(t, err)
	return data
}

func TestTryOnSessionService_Flow(t *testing.T) {
	ctx := context.Background()
	person := personImage(t)
	users := NewUserService(storage.NewMemoryUserRepository())
	gen := &fakeGenerator{outputs: []string{person}}
	svc := NewTryOnSessionService(users, newTryOnService(&fakeAnalyzer{d: entity.Detected("fake", scenarioRegion())}, gen))

	user, err := svc.Begin(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingSelfie, user.State)

	user, err = svc.AcceptSelfie(ctx, 1, 10, pngBytes(t, person))
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingGarment, user.State)

	out, err := svc.AcceptGarment(ctx, 1, 10, pngBytes(t, noiseImage(t, 40, 40, 3)))
	require.NoError(t, err)
	require.NotEmpty(t, out.Image)

	user, err = users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)

	_, err = svc.AcceptGarment(ctx, 1, 10, pngBytes(t, person))
	require.ErrorIs(t, err, ErrSelfieMissing)
}

func TestTryOnSessionService_Cancel(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(storage.NewMemoryUserRepository())
	svc := NewTryOnSessionService(users, nil)

	_, err := svc.AcceptSelfie(ctx, 2, 20, []byte("selfie"))
	require.NoError(t, err)

	user, err := svc.Cancel(ctx, 2, 20)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)

	_, err = svc.AcceptGarment(ctx, 2, 20, []byte("garment"))
	require.ErrorIs(t, err, ErrSelfieMissing)
}
