package srs

import (
	"math"
	"time"

	"github.com/phrazzld/mediqa-api/internal/domain"
)

// calculateNewEaseFactor determines the new ease factor after a review.
//
// The ease factor represents how quickly intervals grow for a card;
// higher values mean the card is easier. The SM-2 adjustment is applied
// on every review regardless of whether recall succeeded:
//
//	EF' = EF + 0.1 - (5 - q) * (0.08 + (5 - q) * 0.02)
//
// Quality 5 raises the factor by 0.1, quality 4 leaves it unchanged,
// and lower qualities pull it down. The result is clamped to
// params.MinEaseFactor; there is no ceiling.
func calculateNewEaseFactor(currentEF float64, quality int, params *Params) float64 {
	miss := float64(MaxQuality - quality)
	newEF := currentEF + 0.1 - miss*(0.08+miss*0.02)

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the new review interval in days.
//
// Failed recall (quality below params.PassThreshold) resets the
// interval to the minimum regardless of history. Successful recall
// climbs the early-interval ladder (1 -> 6 -> 25 by default) and then
// grows multiplicatively by the ease factor, rounded to the nearest
// day and capped at params.MaxIntervalDays.
func calculateNewInterval(currentInterval int, easeFactor float64, quality int, params *Params) int {
	if quality < params.PassThreshold {
		return params.MinIntervalDays
	}

	newInterval := 0
	for i := 0; i < len(params.EarlyIntervals)-1; i++ {
		if currentInterval == params.EarlyIntervals[i] {
			newInterval = params.EarlyIntervals[i+1]
			break
		}
	}
	if newInterval == 0 {
		newInterval = int(math.Round(float64(currentInterval) * easeFactor))
	}

	if newInterval > params.MaxIntervalDays {
		newInterval = params.MaxIntervalDays
	}
	if newInterval < params.MinIntervalDays {
		newInterval = params.MinIntervalDays
	}

	return newInterval
}

// calculateNextProgress computes the full post-review progress state
// without mutating the input. The new interval is derived from the
// pre-review ease factor, matching classic SM-2 ordering, and the next
// review is scheduled the new interval in days after now.
func calculateNextProgress(
	progress *domain.FlashcardProgress,
	quality int,
	now time.Time,
	params *Params,
) *domain.FlashcardProgress {
	newInterval := calculateNewInterval(progress.IntervalDays, progress.EaseFactor, quality, params)
	newEF := calculateNewEaseFactor(progress.EaseFactor, quality, params)

	return &domain.FlashcardProgress{
		UserID:         progress.UserID,
		CardID:         progress.CardID,
		EaseFactor:     newEF,
		IntervalDays:   newInterval,
		NextReviewAt:   now.AddDate(0, 0, newInterval),
		LastReviewedAt: now,
		CreatedAt:      progress.CreatedAt,
		UpdatedAt:      now,
	}
}
