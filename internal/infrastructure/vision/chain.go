package vision

import (
	"context"
	"strings"

	"tryon-bot/internal/domain/entity"
	"tryon-bot/internal/domain/port"
)

// ChainAnalyzer опрашивает детекторы по очереди, первый найденный результат выигрывает.
type ChainAnalyzer struct {
	analyzers []port.FaceAnalyzer
}

func NewChainAnalyzer(analyzers ...port.FaceAnalyzer) *ChainAnalyzer {
	return &ChainAnalyzer{analyzers: analyzers}
}

// Analyze возвращает Malformed, если хотя бы один детектор прислал неразборчивый ответ и никто не нашёл лицо.
func (c *ChainAnalyzer) Analyze(ctx context.Context, imageData []byte) entity.Detection {
	var reasons []string
	malformed := false
	for _, a := range c.analyzers {
		if ctx.Err() != nil {
			break
		}
		d := a.Analyze(ctx, imageData)
		if d.Found() {
			return d
		}
		if d.Kind == entity.DetectionMalformed {
			malformed = true
		}
		reasons = append(reasons, d.Source+": "+d.Reason)
	}

	reason := strings.Join(reasons, "; ")
	if len(reasons) == 0 {
		reason = "no analyzers configured"
	}
	if malformed {
		return entity.Malformed("chain", reason)
	}
	return entity.NotFound("chain", reason)
}

var _ port.FaceAnalyzer = (*ChainAnalyzer)(nil)
