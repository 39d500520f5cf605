package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("testuser", "test@example.com", "securepassword123")
	require.NoError(t, err)

	assert.NotEqual(t, "", user.ID.String())
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, 0, user.Points)
	assert.Equal(t, 0, user.Streak)
	assert.Nil(t, user.LastActiveAt)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*User)
		wantErr error
	}{
		{
			name:    "valid user",
			mutate:  func(u *User) {},
			wantErr: nil,
		},
		{
			name:    "empty username",
			mutate:  func(u *User) { u.Username = "" },
			wantErr: ErrUserEmptyUsername,
		},
		{
			name:    "invalid email",
			mutate:  func(u *User) { u.Email = "not-an-email" },
			wantErr: ErrUserInvalidEmail,
		},
		{
			name:    "short password",
			mutate:  func(u *User) { u.Password = "short" },
			wantErr: ErrUserPasswordTooWeak,
		},
		{
			name: "hashed password allows empty plaintext",
			mutate: func(u *User) {
				u.Password = ""
				u.HashedPassword = "$2a$10$abcdefghijklmnopqrstuv"
			},
			wantErr: nil,
		},
		{
			name:    "negative points",
			mutate:  func(u *User) { u.Points = -1 },
			wantErr: ErrUserNegativePoints,
		},
		{
			name:    "negative streak",
			mutate:  func(u *User) { u.Streak = -1 },
			wantErr: ErrUserNegativeStreak,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			user, err := NewUser("testuser", "test@example.com", "securepassword123")
			require.NoError(t, err)

			tc.mutate(user)
			err = user.Validate()

			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestUserLastActiveAtIsNullable(t *testing.T) {
	t.Parallel()

	user, err := NewUser("testuser", "test@example.com", "securepassword123")
	require.NoError(t, err)
	require.Nil(t, user.LastActiveAt)

	now := time.Now().UTC()
	user.LastActiveAt = &now
	assert.NoError(t, user.Validate())
}
