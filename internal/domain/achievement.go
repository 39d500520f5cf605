package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for achievements
var (
	ErrAchievementInvalidID       = errors.New("achievement ID must be positive")
	ErrAchievementEmptyName       = errors.New("achievement name cannot be empty")
	ErrAchievementNegativeReward  = errors.New("achievement point reward cannot be negative")
	ErrUnlockEmptyUserID          = errors.New("achievement unlock user ID cannot be empty")
	ErrUnlockInvalidAchievementID = errors.New("achievement unlock achievement ID must be positive")
)

// Achievement is a static catalog entry describing a badge a user can
// earn. The catalog is seeded once and immutable afterward; IDs are
// stable small integers referenced by the threshold tables and by
// external collaborators granting event achievements.
type Achievement struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	BadgeIcon   string `json:"badge_icon"`
	// Points is the bonus granted to a user when they unlock this
	// achievement.
	Points int `json:"points"`
}

// Validate checks if the Achievement has valid data.
func (a *Achievement) Validate() error {
	if a.ID <= 0 {
		return ErrAchievementInvalidID
	}

	if a.Name == "" {
		return ErrAchievementEmptyName
	}

	if a.Points < 0 {
		return ErrAchievementNegativeReward
	}

	return nil
}

// AchievementUnlock is the durable, append-only record that a user has
// earned a specific achievement. At most one record exists per
// (user, achievement) pair.
type AchievementUnlock struct {
	UserID        uuid.UUID `json:"user_id"`
	AchievementID int       `json:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at"`
}

// NewAchievementUnlock creates an unlock record stamped with the given
// time.
func NewAchievementUnlock(userID uuid.UUID, achievementID int, earnedAt time.Time) (*AchievementUnlock, error) {
	unlock := &AchievementUnlock{
		UserID:        userID,
		AchievementID: achievementID,
		EarnedAt:      earnedAt,
	}

	if err := unlock.Validate(); err != nil {
		return nil, err
	}

	return unlock, nil
}

// Validate checks if the AchievementUnlock has valid data.
func (u *AchievementUnlock) Validate() error {
	if u.UserID == uuid.Nil {
		return ErrUnlockEmptyUserID
	}

	if u.AchievementID <= 0 {
		return ErrUnlockInvalidAchievementID
	}

	return nil
}

// EarnedAchievement pairs a catalog entry with the time a specific user
// unlocked it, as returned by achievement listings.
type EarnedAchievement struct {
	Achievement
	EarnedAt time.Time `json:"earned_at"`
}
