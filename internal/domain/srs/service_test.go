package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mediqa-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceFirstReview(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	userID, cardID := uuid.New(), uuid.New()

	progress, err := svc.FirstReview(userID, cardID, now)
	require.NoError(t, err)

	assert.Equal(t, userID, progress.UserID)
	assert.Equal(t, cardID, progress.CardID)
	assert.Equal(t, domain.InitialEaseFactor, progress.EaseFactor)
	assert.Equal(t, 1, progress.IntervalDays)
	assert.Equal(t, now.AddDate(0, 0, 1), progress.NextReviewAt)
}

func TestServiceReviewValidation(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	now := time.Now().UTC()

	_, err := svc.Review(nil, 4, now)
	assert.ErrorIs(t, err, ErrNilProgress)

	progress, err := svc.FirstReview(uuid.New(), uuid.New(), now)
	require.NoError(t, err)

	_, err = svc.Review(progress, -1, now)
	assert.ErrorIs(t, err, ErrInvalidQuality)

	_, err = svc.Review(progress, 6, now)
	assert.ErrorIs(t, err, ErrInvalidQuality)
}

func TestServiceReviewDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	now := time.Now().UTC()

	progress, err := svc.FirstReview(uuid.New(), uuid.New(), now)
	require.NoError(t, err)

	original := *progress
	_, err = svc.Review(progress, 0, now.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.Equal(t, original, *progress)
}

func TestFailedRecallAlwaysResetsInterval(t *testing.T) {
	t.Parallel()

	svc := NewDefaultService()
	now := time.Now().UTC()

	for _, interval := range []int{1, 6, 25, 100, 365} {
		for quality := 0; quality < 3; quality++ {
			progress := &domain.FlashcardProgress{
				UserID:       uuid.New(),
				CardID:       uuid.New(),
				EaseFactor:   2.5,
				IntervalDays: interval,
			}

			next, err := svc.Review(progress, quality, now)
			require.NoError(t, err)
			assert.Equal(t, 1, next.IntervalDays,
				"interval %d quality %d should reset to 1", interval, quality)
			assert.Equal(t, now.AddDate(0, 0, 1), next.NextReviewAt)
		}
	}
}
