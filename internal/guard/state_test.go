package guard

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tryon-bot/internal/domain/entity"
)

func TestNext_Transitions(t *testing.T) {
	opts := entity.DefaultPostProcessingOptions()

	cases := []struct {
		name  string
		from  State
		score float64
		opts  func(o *entity.PostProcessingOptions)
		want  State
	}{
		{"initial", StateInitial, 0, nil, StateScoreComputed},
		{"passthrough at threshold", StateScoreComputed, 0.99, nil, StatePassthrough},
		{"overlay below threshold", StateScoreComputed, 0.60, nil, StateOverlayApplied},
		{"color correction enabled", StateOverlayApplied, 0, nil, StateColorCorrected},
		{"color correction disabled", StateOverlayApplied, 0, func(o *entity.PostProcessingOptions) { o.ColorCorrection = false }, StateValidated},
		{"corrected to validated", StateColorCorrected, 0, nil, StateValidated},
		{"accepted above floor", StateValidated, 0.90, nil, StateAccepted},
		{"accepted at floor", StateValidated, 0.85, nil, StateAccepted},
		{"direct copy below floor", StateValidated, 0.70, nil, StateFallbackDirectCopy},
		{"validation disabled", StateValidated, 0.10, func(o *entity.PostProcessingOptions) { o.Validation = false }, StateAccepted},
		{"passthrough terminal", StatePassthrough, 0, nil, StateTerminal},
		{"accepted terminal", StateAccepted, 0, nil, StateTerminal},
		{"direct copy terminal", StateFallbackDirectCopy, 0, nil, StateTerminal},
		{"terminal stays", StateTerminal, 1, nil, StateTerminal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := opts
			if tc.opts != nil {
				tc.opts(&o)
			}
			require.Equal(t, tc.want, Next(tc.from, tc.score, o))
		})
	}
}

func TestNext_ScenarioPath(t *testing.T) {
	opts := entity.DefaultPostProcessingOptions()
	scores := map[State]float64{StateScoreComputed: 0.60, StateValidated: 0.70}

	var path []State
	for s := StateInitial; s != StateTerminal; s = Next(s, scores[s], opts) {
		path = append(path, s)
	}
	require.Equal(t, []State{
		StateInitial,
		StateScoreComputed,
		StateOverlayApplied,
		StateColorCorrected,
		StateValidated,
		StateFallbackDirectCopy,
	}, path)
}

func TestState_String(t *testing.T) {
	require.Equal(t, "fallback_direct_copy", StateFallbackDirectCopy.String())
	require.Equal(t, "unknown", State(42).String())
}
