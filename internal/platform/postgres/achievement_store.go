package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/mediqa-api/internal/domain"
	"github.com/phrazzld/mediqa-api/internal/platform/logger"
	"github.com/phrazzld/mediqa-api/internal/store"
)

// PostgresAchievementStore implements the store.AchievementStore
// interface using a PostgreSQL database as the storage backend.
type PostgresAchievementStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAchievementStore creates a new PostgreSQL implementation
// of the AchievementStore interface.
func NewPostgresAchievementStore(db store.DBTX, logger *slog.Logger) *PostgresAchievementStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAchievementStore{
		db:     db,
		logger: logger.With(slog.String("component", "achievement_store")),
	}
}

// Ensure PostgresAchievementStore implements store.AchievementStore interface
var _ store.AchievementStore = (*PostgresAchievementStore)(nil)

// WithTx implements store.AchievementStore.WithTx
func (s *PostgresAchievementStore) WithTx(tx *sql.Tx) store.AchievementStore {
	return &PostgresAchievementStore{
		db:     tx,
		logger: s.logger,
	}
}

// CreateIfAbsent implements store.AchievementStore.CreateIfAbsent
// Existing catalog entries are never overwritten, which keeps catalog
// seeding idempotent across restarts.
func (s *PostgresAchievementStore) CreateIfAbsent(
	ctx context.Context,
	achievement *domain.Achievement,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := achievement.Validate(); err != nil {
		log.Warn("achievement validation failed during seed",
			slog.String("error", err.Error()),
			slog.Int("achievement_id", achievement.ID))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO achievements (id, name, description, badge_icon, points)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		achievement.ID,
		achievement.Name,
		achievement.Description,
		achievement.BadgeIcon,
		achievement.Points,
	)
	if err != nil {
		log.Error("failed to seed achievement",
			slog.String("error", err.Error()),
			slog.Int("achievement_id", achievement.ID))
		return err
	}

	return nil
}

// GetByID implements store.AchievementStore.GetByID
// Returns store.ErrAchievementNotFound if the entry does not exist.
func (s *PostgresAchievementStore) GetByID(ctx context.Context, id int) (*domain.Achievement, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, description, badge_icon, points
		FROM achievements
		WHERE id = $1
	`

	var achievement domain.Achievement
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&achievement.ID,
		&achievement.Name,
		&achievement.Description,
		&achievement.BadgeIcon,
		&achievement.Points,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("achievement not found", slog.Int("achievement_id", id))
			return nil, store.ErrAchievementNotFound
		}

		log.Error("failed to get achievement",
			slog.String("error", err.Error()),
			slog.Int("achievement_id", id))
		return nil, err
	}

	return &achievement, nil
}

// HasUnlock implements store.AchievementStore.HasUnlock
func (s *PostgresAchievementStore) HasUnlock(
	ctx context.Context,
	userID uuid.UUID,
	achievementID int,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM achievement_unlocks
			WHERE user_id = $1 AND achievement_id = $2
		)
	`

	var exists bool
	err := s.db.QueryRowContext(ctx, query, userID, achievementID).Scan(&exists)
	if err != nil {
		log.Error("failed to check achievement unlock",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("achievement_id", achievementID))
		return false, err
	}

	return exists, nil
}

// CreateUnlock implements store.AchievementStore.CreateUnlock
// Returns store.ErrUnlockExists if the pair is already recorded.
func (s *PostgresAchievementStore) CreateUnlock(
	ctx context.Context,
	unlock *domain.AchievementUnlock,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := unlock.Validate(); err != nil {
		log.Warn("unlock validation failed",
			slog.String("error", err.Error()),
			slog.String("user_id", unlock.UserID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO achievement_unlocks (user_id, achievement_id, earned_at)
		VALUES ($1, $2, $3)
	`
	_, err := s.db.ExecContext(ctx, query, unlock.UserID, unlock.AchievementID, unlock.EarnedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			log.Debug("achievement already unlocked",
				slog.String("user_id", unlock.UserID.String()),
				slog.Int("achievement_id", unlock.AchievementID))
			return store.ErrUnlockExists
		}
		if isForeignKeyViolation(err) {
			log.Warn("unknown user or achievement for unlock",
				slog.String("user_id", unlock.UserID.String()),
				slog.Int("achievement_id", unlock.AchievementID))
			return fmt.Errorf("%w: unlock references missing entity", store.ErrInvalidEntity)
		}

		log.Error("failed to create achievement unlock",
			slog.String("error", err.Error()),
			slog.String("user_id", unlock.UserID.String()),
			slog.Int("achievement_id", unlock.AchievementID))
		return err
	}

	log.Info("achievement unlocked",
		slog.String("user_id", unlock.UserID.String()),
		slog.Int("achievement_id", unlock.AchievementID))
	return nil
}

// ListEarnedByUser implements store.AchievementStore.ListEarnedByUser
func (s *PostgresAchievementStore) ListEarnedByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.EarnedAchievement, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT a.id, a.name, a.description, a.badge_icon, a.points, u.earned_at
		FROM achievements a
		JOIN achievement_unlocks u ON u.achievement_id = a.id
		WHERE u.user_id = $1
		ORDER BY u.earned_at, a.id
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list earned achievements",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var earned []*domain.EarnedAchievement
	for rows.Next() {
		var e domain.EarnedAchievement
		err := rows.Scan(
			&e.ID,
			&e.Name,
			&e.Description,
			&e.BadgeIcon,
			&e.Points,
			&e.EarnedAt,
		)
		if err != nil {
			log.Error("failed to scan earned achievement", slog.String("error", err.Error()))
			return nil, err
		}
		earned = append(earned, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return earned, nil
}
