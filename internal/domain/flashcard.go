package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for flashcards and their review progress
var (
	ErrFlashcardEmptyTopic    = errors.New("flashcard topic cannot be empty")
	ErrFlashcardEmptyQuestion = errors.New("flashcard question cannot be empty")
	ErrFlashcardEmptyAnswer   = errors.New("flashcard answer cannot be empty")
	ErrProgressEmptyUserID    = errors.New("flashcard progress user ID cannot be empty")
	ErrProgressEmptyCardID    = errors.New("flashcard progress card ID cannot be empty")
	ErrProgressInvalidEase    = errors.New("flashcard progress ease factor cannot be below 1.3")
	ErrProgressInvalidInterval = errors.New(
		"flashcard progress interval must be between 1 and 365 days",
	)
)

// Spaced-repetition bounds shared by the domain and the scheduler.
const (
	// MinEaseFactor is the floor the ease factor never drops below.
	MinEaseFactor = 1.3
	// InitialEaseFactor is assigned on a card's first review.
	InitialEaseFactor = 2.5
	// MinIntervalDays and MaxIntervalDays bound the review interval.
	MinIntervalDays = 1
	MaxIntervalDays = 365
)

// Flashcard is a static review card. Content is produced by the
// generation collaborator and immutable afterward.
type Flashcard struct {
	ID         uuid.UUID `json:"id"`
	Topic      string    `json:"topic"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Difficulty int       `json:"difficulty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewFlashcard creates a flashcard with the given content.
func NewFlashcard(topic, question, answer string, difficulty int) (*Flashcard, error) {
	card := &Flashcard{
		ID:         uuid.New(),
		Topic:      topic,
		Question:   question,
		Answer:     answer,
		Difficulty: difficulty,
		CreatedAt:  time.Now().UTC(),
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Flashcard has valid data.
func (c *Flashcard) Validate() error {
	if c.Topic == "" {
		return ErrFlashcardEmptyTopic
	}

	if c.Question == "" {
		return ErrFlashcardEmptyQuestion
	}

	if c.Answer == "" {
		return ErrFlashcardEmptyAnswer
	}

	return nil
}

// FlashcardProgress tracks a user's spaced-repetition state for a
// specific card. Created on the first review, mutated on every
// subsequent review through the scheduler, never deleted.
type FlashcardProgress struct {
	UserID         uuid.UUID `json:"user_id"`
	CardID         uuid.UUID `json:"card_id"`
	EaseFactor     float64   `json:"ease_factor"`
	IntervalDays   int       `json:"interval_days"`
	NextReviewAt   time.Time `json:"next_review_at"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewFlashcardProgress creates progress for a card's first review:
// default ease factor, a one-day interval, and the next review due one
// day out.
func NewFlashcardProgress(userID, cardID uuid.UUID, now time.Time) (*FlashcardProgress, error) {
	progress := &FlashcardProgress{
		UserID:         userID,
		CardID:         cardID,
		EaseFactor:     InitialEaseFactor,
		IntervalDays:   MinIntervalDays,
		NextReviewAt:   now.AddDate(0, 0, MinIntervalDays),
		LastReviewedAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return progress, nil
}

// Validate checks if the FlashcardProgress has valid data.
func (p *FlashcardProgress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrProgressEmptyUserID
	}

	if p.CardID == uuid.Nil {
		return ErrProgressEmptyCardID
	}

	if p.EaseFactor < MinEaseFactor {
		return ErrProgressInvalidEase
	}

	if p.IntervalDays < MinIntervalDays || p.IntervalDays > MaxIntervalDays {
		return ErrProgressInvalidInterval
	}

	return nil
}
