package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/infrastructure/cache"
)

func TestProfileService_Profile(t *testing.T) {
	store := cache.NewMemoryStore[entity.AppearanceProfile](5*time.Minute, time.Minute)
	svc := NewProfileService(store, nil)
	person := personImage(t)

	p, err := svc.Profile(context.Background(), person)
	require.NoError(t, err)
	require.Equal(t, "portrait", p.Orientation)
	require.NotEmpty(t, p.DominantColors)
	require.Equal(t, 1, store.Len())

	again, err := svc.Profile(context.Background(), person)
	require.NoError(t, err)
	require.Equal(t, p, again)
	require.Equal(t, 1, store.Len())
}

func TestProfileService_DecodeError(t *testing.T) {
	svc := NewProfileService(nil, nil)
	_, err := svc.Profile(context.Background(), "junk")
	require.ErrorIs(t, err, entity.ErrImageDecode)
}
