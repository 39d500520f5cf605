package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mediqa-api/internal/domain"
)

// FlashcardStore defines the interface for flashcard and review
// progress persistence.
type FlashcardStore interface {
	// CreateCard saves a new flashcard.
	CreateCard(ctx context.Context, card *domain.Flashcard) error

	// GetCardByID retrieves a flashcard by its unique ID.
	// Returns ErrFlashcardNotFound if the card does not exist.
	GetCardByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error)

	// ListDueCards returns the user's cards whose next review is at or
	// before now, plus cards the user has never reviewed.
	ListDueCards(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Flashcard, error)

	// CreateProgress saves first-review progress for a (user, card) pair.
	CreateProgress(ctx context.Context, progress *domain.FlashcardProgress) error

	// GetProgress retrieves progress for a (user, card) pair.
	// Returns ErrProgressNotFound if no review has happened yet.
	GetProgress(ctx context.Context, userID, cardID uuid.UUID) (*domain.FlashcardProgress, error)

	// GetProgressForUpdate retrieves progress with a row-level lock for
	// mutation inside a transaction.
	// Returns ErrProgressNotFound if no review has happened yet.
	GetProgressForUpdate(
		ctx context.Context,
		userID, cardID uuid.UUID,
	) (*domain.FlashcardProgress, error)

	// UpdateProgress modifies an existing progress entry.
	// Returns ErrProgressNotFound if the entry does not exist.
	UpdateProgress(ctx context.Context, progress *domain.FlashcardProgress) error

	// CountProgressByUser returns how many cards the user has reviewed
	// at least once.
	CountProgressByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// WithTx returns a new FlashcardStore instance that uses the
	// provided transaction.
	WithTx(tx *sql.Tx) FlashcardStore
}
