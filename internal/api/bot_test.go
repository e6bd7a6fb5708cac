package telegram

import (
	"testing"

	"github.com/stretchr/testify/require"

	app "tryon-bot/internal/application"
	"tryon-bot/internal/domain/entity"
)

func TestParseMode(t *testing.T) {
	for arg, want := range map[string]entity.Mode{
		"full_body":    entity.ModeFullBody,
		" Inpainting ": entity.ModeInpainting,
		"mask":         entity.ModeInpainting,
	} {
		got, ok := parseMode(arg)
		require.True(t, ok, arg)
		require.Equal(t, want, got)
	}

	_, ok := parseMode("")
	require.False(t, ok)
}

func TestCaption(t *testing.T) {
	plain := caption(&app.TryOnOutput{Mode: entity.ModeFullBody, GenerationSucceeded: true})
	require.Equal(t, "✨ Готово (full_body)", plain)

	restored := caption(&app.TryOnOutput{
		Mode:           entity.ModeInpainting,
		FallbackRegion: true,
		PostProcessing: &entity.PostProcessingResult{Method: entity.MethodDirectCopy, Similarity: 0.964},
	})
	require.Contains(t, restored, "direct_copy, сходство 96%")
	require.Contains(t, restored, "Качество генерации")
	require.Contains(t, restored, "Лицо не найдено")
}

func TestReplyFor(t *testing.T) {
	require.Equal(t, msgAwaitingGarment, replyFor(entity.StateAwaitingGarment))
	require.Equal(t, msgBusy, replyFor(entity.StateProcessing))
	require.Equal(t, msgSendCommand, replyFor(entity.StateMainMenu))
}
