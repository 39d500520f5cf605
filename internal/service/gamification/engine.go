package gamification

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mediqa-api/internal/config"
	"github.com/phrazzld/mediqa-api/internal/domain"
	"github.com/phrazzld/mediqa-api/internal/platform/logger"
	"github.com/phrazzld/mediqa-api/internal/store"
)

// Engine applies the engagement and achievement rules within a
// caller-supplied transaction. The Service wraps it in per-request
// transactions; the review service composes it into its own transaction
// so a review, its point grant, and any unlocks commit atomically.
type Engine struct {
	users        store.UserStore
	achievements store.AchievementStore
	cfg          config.GamificationConfig
	logger       *slog.Logger
	now          func() time.Time
}

// NewEngine creates an Engine over the given stores.
func NewEngine(
	users store.UserStore,
	achievements store.AchievementStore,
	cfg config.GamificationConfig,
	log *slog.Logger,
) *Engine {
	if users == nil {
		panic("users store cannot be nil")
	}
	if achievements == nil {
		panic("achievements store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Engine{
		users:        users,
		achievements: achievements,
		cfg:          cfg,
		logger:       log.With(slog.String("component", "gamification_engine")),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// calendarDayGap returns the number of whole calendar days between the
// last activity and now, both taken as UTC dates. The second return is
// false when there is no prior activity.
func calendarDayGap(last *time.Time, now time.Time) (int, bool) {
	if last == nil {
		return 0, false
	}

	l, n := last.UTC(), now.UTC()
	lastDate := time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
	nowDate := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)

	return int(nowDate.Sub(lastDate).Hours() / 24), true
}

// RecordActivity applies one activity event for the user inside tx.
//
// The streak is driven by calendar dates, not wall-clock durations:
// activity on the day after the last one extends the streak, a gap of
// two or more days (or no prior activity) resets it to one, and repeat
// activity within the same day only advances last_active_at. Streak
// changes grant the daily streak bonus and trigger threshold
// evaluation.
func (e *Engine) RecordActivity(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, e.logger)

	users := e.users.WithTx(tx)
	user, err := users.GetForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading user for activity: %w", err)
	}

	now := e.now()
	gap, hasPrior := calendarDayGap(user.LastActiveAt, now)

	streakChanged := false
	switch {
	case !hasPrior || gap >= 2:
		user.Streak = 1
		streakChanged = true
	case gap == 1:
		user.Streak++
		streakChanged = true
	}

	if streakChanged {
		user.Points += e.cfg.DailyStreakPoints
		log.Info("streak updated",
			slog.String("user_id", user.ID.String()),
			slog.Int("streak", user.Streak),
			slog.Int("bonus", e.cfg.DailyStreakPoints))
	}

	user.LastActiveAt = &now
	if err := users.Update(ctx, user); err != nil {
		return fmt.Errorf("updating user activity: %w", err)
	}

	if streakChanged {
		if err := e.evaluate(ctx, tx, user, now); err != nil {
			return err
		}
	}

	return nil
}

// AddPoints adds amount to the user's balance inside tx and evaluates
// the point thresholds afterward. Callers only pass non-negative
// amounts in practice; the contract accepts signed input without
// validation.
func (e *Engine) AddPoints(ctx context.Context, tx *sql.Tx, userID uuid.UUID, amount int) error {
	users := e.users.WithTx(tx)
	user, err := users.GetForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading user for point grant: %w", err)
	}

	user.Points += amount
	if err := users.Update(ctx, user); err != nil {
		return fmt.Errorf("updating user points: %w", err)
	}

	return e.evaluate(ctx, tx, user, e.now())
}

// Unlock grants the achievement to the user inside tx, locking the user
// row first. Returns false without error when the user already holds
// the achievement.
func (e *Engine) Unlock(
	ctx context.Context,
	tx *sql.Tx,
	userID uuid.UUID,
	achievementID int,
) (bool, error) {
	users := e.users.WithTx(tx)
	user, err := users.GetForUpdate(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("loading user for unlock: %w", err)
	}

	granted, err := e.unlock(ctx, tx, user, achievementID, e.now())
	if err != nil {
		return false, err
	}
	if granted {
		if err := users.Update(ctx, user); err != nil {
			return false, fmt.Errorf("updating user after unlock: %w", err)
		}
	}

	return granted, nil
}

// evaluate checks every threshold against the user's streak and points
// and unlocks each achievement whose threshold is met. The comparisons
// use the values as of entry: an unlock's own point reward never feeds
// back into the same evaluation pass, so a bonus that crosses a further
// threshold waits for the next independent event.
func (e *Engine) evaluate(ctx context.Context, tx *sql.Tx, user *domain.User, now time.Time) error {
	streak := user.Streak
	points := user.Points

	granted := false
	for _, t := range streakThresholds {
		if streak >= t.Value {
			ok, err := e.unlock(ctx, tx, user, t.AchievementID, now)
			if err != nil {
				return err
			}
			granted = granted || ok
		}
	}
	for _, t := range pointThresholds {
		if points >= t.Value {
			ok, err := e.unlock(ctx, tx, user, t.AchievementID, now)
			if err != nil {
				return err
			}
			granted = granted || ok
		}
	}

	if granted {
		if err := e.users.WithTx(tx).Update(ctx, user); err != nil {
			return fmt.Errorf("updating user after threshold unlocks: %w", err)
		}
	}

	return nil
}

// unlock creates the unlock record for an already-locked user row and
// adds the achievement's reward to the in-memory user. The caller is
// responsible for persisting the user afterward. Threshold evaluation
// is deliberately not re-run on the reward.
func (e *Engine) unlock(
	ctx context.Context,
	tx *sql.Tx,
	user *domain.User,
	achievementID int,
	now time.Time,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)
	achievements := e.achievements.WithTx(tx)

	held, err := achievements.HasUnlock(ctx, user.ID, achievementID)
	if err != nil {
		return false, fmt.Errorf("checking unlock: %w", err)
	}
	if held {
		return false, nil
	}

	achievement, err := achievements.GetByID(ctx, achievementID)
	if err != nil {
		return false, fmt.Errorf("loading achievement %d: %w", achievementID, err)
	}

	unlock, err := domain.NewAchievementUnlock(user.ID, achievementID, now)
	if err != nil {
		return false, err
	}

	if err := achievements.CreateUnlock(ctx, unlock); err != nil {
		// A concurrent transaction may have granted it first.
		if store.IsDuplicateError(err) {
			return false, nil
		}
		return false, fmt.Errorf("creating unlock: %w", err)
	}

	user.Points += achievement.Points

	log.Info("achievement granted",
		slog.String("user_id", user.ID.String()),
		slog.Int("achievement_id", achievementID),
		slog.String("achievement", achievement.Name),
		slog.Int("reward", achievement.Points))

	return true, nil
}
