package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MEDIQA_DATABASE_URL", "postgres://localhost:5432/mediqa")
	t.Setenv("MEDIQA_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 10, cfg.Gamification.DailyStreakPoints)
	assert.Equal(t, 5, cfg.Gamification.FlashcardReviewPoints)
	assert.Equal(t, 1500, cfg.Retrieval.ChunkChars)
	assert.Equal(t, 60, cfg.Auth.TokenLifetimeMin)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MEDIQA_DATABASE_URL", "postgres://localhost:5432/mediqa")
	t.Setenv("MEDIQA_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("MEDIQA_SERVER_PORT", "9090")
	t.Setenv("MEDIQA_SERVER_LOG_LEVEL", "debug")
	t.Setenv("MEDIQA_GAMIFICATION_DAILY_STREAK_POINTS", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 25, cfg.Gamification.DailyStreakPoints)
}

func TestLoadValidation(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing database url",
			env: map[string]string{
				"MEDIQA_AUTH_JWT_SECRET": "0123456789abcdef0123456789abcdef",
			},
		},
		{
			name: "jwt secret too short",
			env: map[string]string{
				"MEDIQA_DATABASE_URL":    "postgres://localhost:5432/mediqa",
				"MEDIQA_AUTH_JWT_SECRET": "short",
			},
		},
		{
			name: "invalid log level",
			env: map[string]string{
				"MEDIQA_DATABASE_URL":     "postgres://localhost:5432/mediqa",
				"MEDIQA_AUTH_JWT_SECRET":  "0123456789abcdef0123456789abcdef",
				"MEDIQA_SERVER_LOG_LEVEL": "loud",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
