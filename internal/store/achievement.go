package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/mediqa-api/internal/domain"
)

// AchievementStore defines the interface for achievement catalog and
// unlock-record persistence.
type AchievementStore interface {
	// CreateIfAbsent inserts a catalog entry unless one with the same
	// ID already exists. Existing entries are left untouched, which
	// makes catalog seeding idempotent.
	CreateIfAbsent(ctx context.Context, achievement *domain.Achievement) error

	// GetByID retrieves a catalog entry by its ID.
	// Returns ErrAchievementNotFound if it does not exist.
	GetByID(ctx context.Context, id int) (*domain.Achievement, error)

	// HasUnlock reports whether the user already holds the achievement.
	HasUnlock(ctx context.Context, userID uuid.UUID, achievementID int) (bool, error)

	// CreateUnlock appends an unlock record. Returns ErrUnlockExists if
	// the (user, achievement) pair is already recorded; unlock records
	// are never updated or deleted.
	CreateUnlock(ctx context.Context, unlock *domain.AchievementUnlock) error

	// ListEarnedByUser returns the user's earned achievements joined
	// with their unlock timestamps, ordered by unlock time.
	ListEarnedByUser(ctx context.Context, userID uuid.UUID) ([]*domain.EarnedAchievement, error)

	// WithTx returns a new AchievementStore instance that uses the
	// provided transaction.
	WithTx(tx *sql.Tx) AchievementStore
}
