package pipeline

import (
	"math"

	"github.com/labelwise/labelwise-api/internal/domain"
)

// Score computes the review-priority confidence for an automated label
// result: 0.1 per entity plus 0.2 per distinct entity class, capped at 1.0
// and rounded to two decimals. A nil or empty result scores 0, so unlabeled
// tasks sort ahead of everything else in the review queue.
func Score(result *domain.LabelResult) float64 {
	if result == nil || result.EntityCount == 0 {
		return 0
	}

	score := 0.1*float64(result.EntityCount) + 0.2*float64(result.DistinctClasses())
	if score > 1.0 {
		score = 1.0
	}

	return math.Round(score*100) / 100
}
