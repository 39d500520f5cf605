package srs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mediqa-api/internal/domain"
)

// Common errors
var (
	ErrNilProgress    = errors.New("flashcard progress cannot be nil")
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")
)

// Service defines the interface for spaced-repetition scheduling
// operations. Implementations are pure: they never touch storage and
// never mutate their inputs.
type Service interface {
	// FirstReview creates the initial progress for a (user, card) pair.
	FirstReview(userID, cardID uuid.UUID, now time.Time) (*domain.FlashcardProgress, error)

	// Review computes new progress from the prior progress and a recall
	// quality in [0,5], returning a new instance.
	Review(
		progress *domain.FlashcardProgress,
		quality int,
		now time.Time,
	) (*domain.FlashcardProgress, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduler service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduler service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// FirstReview implements the Service interface. The first review does
// not consult quality: the card starts at the default ease factor with
// a one-day interval.
func (s *defaultService) FirstReview(
	userID, cardID uuid.UUID,
	now time.Time,
) (*domain.FlashcardProgress, error) {
	return domain.NewFlashcardProgress(userID, cardID, now)
}

// Review implements the Service interface for subsequent reviews.
func (s *defaultService) Review(
	progress *domain.FlashcardProgress,
	quality int,
	now time.Time,
) (*domain.FlashcardProgress, error) {
	if progress == nil {
		return nil, ErrNilProgress
	}

	if quality < MinQuality || quality > MaxQuality {
		return nil, ErrInvalidQuality
	}

	return calculateNextProgress(progress, quality, now, s.params), nil
}
