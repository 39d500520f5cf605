package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/mediqa-api/internal/domain"
	"github.com/phrazzld/mediqa-api/internal/service/gamification"
)

// earnedAtLayout is the timestamp format achievements are reported in.
const earnedAtLayout = "2006-01-02 15:04:05"

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned after successful registration or login.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

// AddPointsRequest is the payload for a direct point grant.
type AddPointsRequest struct {
	Amount int `json:"amount" validate:"required,gt=0"`
}

// UnlockResponse reports whether an unlock attempt granted anything new.
type UnlockResponse struct {
	AchievementID int  `json:"achievement_id"`
	Granted       bool `json:"granted"`
}

// EarnedAchievementResponse is one earned achievement with its unlock
// timestamp.
type EarnedAchievementResponse struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	BadgeIcon   string `json:"badge_icon"`
	Points      int    `json:"points"`
	EarnedAt    string `json:"earned_at"`
}

// NewEarnedAchievementResponse converts a domain earned achievement to
// its API shape.
func NewEarnedAchievementResponse(e *domain.EarnedAchievement) EarnedAchievementResponse {
	return EarnedAchievementResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		BadgeIcon:   e.BadgeIcon,
		Points:      e.Points,
		EarnedAt:    e.EarnedAt.UTC().Format(earnedAtLayout),
	}
}

// LeaderboardResponse wraps the points ranking.
type LeaderboardResponse struct {
	Entries []gamification.LeaderboardEntry `json:"entries"`
}

// CreateCardRequest is the payload for creating a flashcard.
type CreateCardRequest struct {
	Topic      string `json:"topic"      validate:"required"`
	Question   string `json:"question"   validate:"required"`
	Answer     string `json:"answer"     validate:"required"`
	Difficulty int    `json:"difficulty" validate:"gte=0,lte=5"`
}

// ReviewCardRequest is the payload for reviewing a flashcard.
type ReviewCardRequest struct {
	Quality *int `json:"quality" validate:"required,gte=0,lte=5"`
}

// ProgressResponse is the review schedule returned after a review.
type ProgressResponse struct {
	CardID       uuid.UUID `json:"card_id"`
	EaseFactor   float64   `json:"ease_factor"`
	IntervalDays int       `json:"interval_days"`
	NextReviewAt time.Time `json:"next_review_at"`
}

// NewProgressResponse converts domain progress to its API shape.
func NewProgressResponse(p *domain.FlashcardProgress) ProgressResponse {
	return ProgressResponse{
		CardID:       p.CardID,
		EaseFactor:   p.EaseFactor,
		IntervalDays: p.IntervalDays,
		NextReviewAt: p.NextReviewAt,
	}
}

// ChatRequest is the payload for a grounded question.
type ChatRequest struct {
	Query string `json:"query" validate:"required"`
}

// ChatResponse is the grounded answer plus the context it was grounded
// on.
type ChatResponse struct {
	Answer  string `json:"answer"`
	Context string `json:"context,omitempty"`
}
