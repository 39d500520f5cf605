package domain

import (
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for User
var (
	ErrUserEmptyUsername   = errors.New("user username cannot be empty")
	ErrUserInvalidEmail    = errors.New("user email is invalid")
	ErrUserPasswordTooWeak = errors.New("user password must be at least 12 characters")
	ErrUserNegativePoints  = errors.New("user points cannot be negative")
	ErrUserNegativeStreak  = errors.New("user streak cannot be negative")
)

// minPasswordLength is the minimum accepted plaintext password length.
const minPasswordLength = 12

// User represents a registered learner together with their engagement
// state. Points and Streak are owned by the gamification service and
// must only be mutated through it.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	// Password is the plaintext password, only populated transiently
	// during registration before hashing. Never persisted.
	Password string `json:"-"`

	// Points is a monotonically non-decreasing engagement balance.
	Points int `json:"points"`
	// Streak counts consecutive calendar days with recorded activity.
	Streak int `json:"streak"`
	// PerfectReviewStreak counts consecutive quality-5 flashcard
	// reviews across all cards; reset on any lower quality.
	PerfectReviewStreak int `json:"-"`
	// LastActiveAt is nil until the first recorded activity.
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new user with the given credentials and zeroed
// engagement state. The password is kept in plaintext on the returned
// struct; the user store hashes it on create.
func NewUser(username, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.Username == "" {
		return ErrUserEmptyUsername
	}

	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrUserInvalidEmail
	}

	// Only check the plaintext password when present; a user loaded
	// from the store carries the hash alone.
	if u.HashedPassword == "" && len(u.Password) < minPasswordLength {
		return ErrUserPasswordTooWeak
	}

	if u.Points < 0 {
		return ErrUserNegativePoints
	}

	if u.Streak < 0 {
		return ErrUserNegativeStreak
	}

	return nil
}
