package gamification

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

// Common error types for the gamification service.
var (
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrAchievementNotFound indicates the achievement does not exist
	// in the catalog.
	ErrAchievementNotFound = errors.New("achievement not found")
)

// defaultLeaderboardLimit applies when callers pass a non-positive limit.
const defaultLeaderboardLimit = 10

// LeaderboardEntry is one row of the points ranking.
type LeaderboardEntry struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Points   int       `json:"points"`
	Streak   int       `json:"streak"`
}

// Service exposes the engagement ledger and achievement engine to the
// rest of the application. All mutating operations run in a single
// transaction: either every effect of the event commits (streak, point
// grant, unlock records, unlock rewards) or none do.
type Service interface {
	// RecordActivity applies one activity event for the user.
	RecordActivity(ctx context.Context, userID uuid.UUID) error

	// AddPoints adds amount to the user's balance and evaluates the
	// point thresholds.
	AddPoints(ctx context.Context, userID uuid.UUID, amount int) error

	// Unlock grants an achievement directly, for event achievements
	// observed outside threshold evaluation. Returns false when the
	// user already holds it.
	Unlock(ctx context.Context, userID uuid.UUID, achievementID int) (bool, error)

	// GetLeaderboard returns up to limit users ordered by points
	// descending.
	GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)

	// GetUserAchievements returns the user's earned achievements with
	// unlock timestamps.
	GetUserAchievements(ctx context.Context, userID uuid.UUID) ([]*domain.EarnedAchievement, error)

	// SeedCatalog inserts any missing catalog entries. Idempotent.
	SeedCatalog(ctx context.Context) error
}

// txRunner abstracts transaction execution so tests can substitute the
// real database with in-memory stores.
type txRunner func(ctx context.Context, fn store.TxFn) error

// service is the standard implementation of the Service interface.
type service struct {
	runTx        txRunner
	engine       *Engine
	users        store.UserStore
	achievements store.AchievementStore
	logger       *slog.Logger
}

// Verify interface compliance at compile time
var _ Service = (*service)(nil)

// NewService creates the gamification service over a database handle
// and its engine.
func NewService(
	db *sql.DB,
	engine *Engine,
	users store.UserStore,
	achievements store.AchievementStore,
	log *slog.Logger,
) Service {
	if db == nil {
		panic("db cannot be nil")
	}
	if engine == nil {
		panic("engine cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &service{
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
		engine:       engine,
		users:        users,
		achievements: achievements,
		logger:       log.With(slog.String("component", "gamification_service")),
	}
}

// RecordActivity implements Service.RecordActivity.
func (s *service) RecordActivity(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.engine.RecordActivity(ctx, tx, userID)
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Warn("activity for unknown user", slog.String("user_id", userID.String()))
			return ErrUserNotFound
		}
		log.Error("failed to record activity",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return fmt.Errorf("failed to record activity: %w", err)
	}

	return nil
}

// AddPoints implements Service.AddPoints.
func (s *service) AddPoints(ctx context.Context, userID uuid.UUID, amount int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.engine.AddPoints(ctx, tx, userID, amount)
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Warn("point grant for unknown user", slog.String("user_id", userID.String()))
			return ErrUserNotFound
		}
		log.Error("failed to add points",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("amount", amount))
		return fmt.Errorf("failed to add points: %w", err)
	}

	return nil
}

// Unlock implements Service.Unlock.
func (s *service) Unlock(ctx context.Context, userID uuid.UUID, achievementID int) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var granted bool
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		granted, err = s.engine.Unlock(ctx, tx, userID, achievementID)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			log.Warn("unlock for unknown user", slog.String("user_id", userID.String()))
			return false, ErrUserNotFound
		case errors.Is(err, store.ErrAchievementNotFound):
			log.Warn("unlock for unknown achievement",
				slog.Int("achievement_id", achievementID))
			return false, ErrAchievementNotFound
		}
		log.Error("failed to unlock achievement",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("achievement_id", achievementID))
		return false, fmt.Errorf("failed to unlock achievement: %w", err)
	}

	return granted, nil
}

// GetLeaderboard implements Service.GetLeaderboard.
func (s *service) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	users, err := s.users.ListTopByPoints(ctx, limit)
	if err != nil {
		log.Error("failed to load leaderboard", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, LeaderboardEntry{
			ID:       u.ID,
			Username: u.Username,
			Points:   u.Points,
			Streak:   u.Streak,
		})
	}

	return entries, nil
}

// GetUserAchievements implements Service.GetUserAchievements.
func (s *service) GetUserAchievements(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.EarnedAchievement, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	earned, err := s.achievements.ListEarnedByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list user achievements",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list user achievements: %w", err)
	}

	return earned, nil
}

// SeedCatalog implements Service.SeedCatalog.
func (s *service) SeedCatalog(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		achievements := s.achievements.WithTx(tx)
		for _, a := range DefaultCatalog() {
			a := a
			if err := achievements.CreateIfAbsent(ctx, &a); err != nil {
				return fmt.Errorf("seeding achievement %d: %w", a.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to seed achievement catalog", slog.String("error", err.Error()))
		return fmt.Errorf("failed to seed achievement catalog: %w", err)
	}

	log.Info("achievement catalog seeded", slog.Int("entries", len(DefaultCatalog())))
	return nil
}
