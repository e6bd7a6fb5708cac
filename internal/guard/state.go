package guard

import "tryon-bot/internal/domain/entity"

// State шаг конвейера восстановления лица
type State int

const (
	StateInitial State = iota
	StateScoreComputed
	StatePassthrough
	StateOverlayApplied
	StateColorCorrected
	StateValidated
	StateAccepted
	StateFallbackDirectCopy
	StateTerminal
)

var stateNames = [...]string{
	StateInitial:            "initial",
	StateScoreComputed:      "score_computed",
	StatePassthrough:        "passthrough",
	StateOverlayApplied:     "overlay_applied",
	StateColorCorrected:     "color_corrected",
	StateValidated:          "validated",
	StateAccepted:           "accepted",
	StateFallbackDirectCopy: "fallback_direct_copy",
	StateTerminal:           "terminal",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Next чистая функция перехода. score: последнее посчитанное сходство,
// оно учитывается только в состояниях ScoreComputed и Validated.
func Next(state State, score float64, opts entity.PostProcessingOptions) State {
	switch state {
	case StateInitial:
		return StateScoreComputed
	case StateScoreComputed:
		if score >= opts.Threshold {
			return StatePassthrough
		}
		return StateOverlayApplied
	case StateOverlayApplied:
		if opts.ColorCorrection {
			return StateColorCorrected
		}
		return StateValidated
	case StateColorCorrected:
		return StateValidated
	case StateValidated:
		if !opts.Validation || score >= opts.HardFloor {
			return StateAccepted
		}
		return StateFallbackDirectCopy
	default:
		return StateTerminal
	}
}
