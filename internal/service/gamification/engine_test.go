package gamification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/mediqa-api/internal/config"
	"github.com/phrazzld/mediqa-api/internal/domain"
)

func testConfig() config.GamificationConfig {
	return config.GamificationConfig{
		DailyStreakPoints:     10,
		FlashcardReviewPoints: 5,
	}
}

func newTestEngine(users *fakeUserStore, achievements *fakeAchievementStore, now time.Time) *Engine {
	e := NewEngine(users, achievements, testConfig(), nil)
	e.now = func() time.Time { return now }
	return e
}

func testUser(t *testing.T, points, streak int, lastActive *time.Time) *domain.User {
	t.Helper()
	return &domain.User{
		ID:           uuid.New(),
		Username:     "testuser",
		Email:        "test@example.com",
		Points:       points,
		Streak:       streak,
		LastActiveAt: lastActive,
	}
}

func TestRecordActivityStreaks(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	threeDaysAgo := now.AddDate(0, 0, -3)
	sameDayMorning := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		lastActive     *time.Time
		initialStreak  int
		initialPoints  int
		expectedStreak int
		expectedPoints int
	}{
		{
			name:           "first ever activity starts streak at one",
			lastActive:     nil,
			initialStreak:  0,
			initialPoints:  0,
			expectedStreak: 1,
			expectedPoints: 10,
		},
		{
			name:           "consecutive day extends streak",
			lastActive:     &yesterday,
			initialStreak:  1,
			initialPoints:  20,
			expectedStreak: 2,
			expectedPoints: 30,
		},
		{
			name:           "gap of several days resets streak to one",
			lastActive:     &threeDaysAgo,
			initialStreak:  9,
			initialPoints:  20,
			expectedStreak: 1,
			expectedPoints: 30,
		},
		{
			name:           "same day activity changes nothing but the timestamp",
			lastActive:     &sameDayMorning,
			initialStreak:  2,
			initialPoints:  20,
			expectedStreak: 2,
			expectedPoints: 20,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			user := testUser(t, tc.initialPoints, tc.initialStreak, tc.lastActive)
			users := newFakeUserStore(user)
			achievements := newFakeAchievementStore()
			engine := newTestEngine(users, achievements, now)

			err := engine.RecordActivity(context.Background(), nil, user.ID)
			require.NoError(t, err)

			updated, err := users.GetByID(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStreak, updated.Streak)
			assert.Equal(t, tc.expectedPoints, updated.Points)
			require.NotNil(t, updated.LastActiveAt)
			assert.True(t, updated.LastActiveAt.Equal(now))
		})
	}
}

func TestRecordActivityCalendarDatesNotDurations(t *testing.T) {
	t.Parallel()

	// 23:50 yesterday to 00:10 today is 20 minutes but a new calendar
	// day, so the streak extends.
	lastActive := time.Date(2025, 6, 9, 23, 50, 0, 0, time.UTC)
	now := time.Date(2025, 6, 10, 0, 10, 0, 0, time.UTC)

	user := testUser(t, 0, 4, &lastActive)
	users := newFakeUserStore(user)
	engine := newTestEngine(users, newFakeAchievementStore(), now)

	err := engine.RecordActivity(context.Background(), nil, user.ID)
	require.NoError(t, err)

	updated, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Streak)
}

func TestRecordActivityUnlocksStreakAchievement(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	// Streak moves from 2 to 3, earning Consistent Learner (+30) on top
	// of the daily bonus (+10).
	user := testUser(t, 0, 2, &yesterday)
	users := newFakeUserStore(user)
	achievements := newFakeAchievementStore()
	engine := newTestEngine(users, achievements, now)

	err := engine.RecordActivity(context.Background(), nil, user.ID)
	require.NoError(t, err)

	updated, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Streak)
	assert.Equal(t, 40, updated.Points)
	assert.Equal(t, []int{AchievementConsistentLearner}, achievements.unlockedIDs(user.ID))
}

func TestRecordActivityUnknownUser(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(newFakeUserStore(), newFakeAchievementStore(), time.Now().UTC())

	err := engine.RecordActivity(context.Background(), nil, uuid.New())
	assert.Error(t, err)
}

func TestAddPointsCrossesThreshold(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	user := testUser(t, 95, 0, nil)
	users := newFakeUserStore(user)
	achievements := newFakeAchievementStore()
	engine := newTestEngine(users, achievements, now)

	err := engine.AddPoints(context.Background(), nil, user.ID, 10)
	require.NoError(t, err)

	// 95 + 10 crosses 100 and earns Getting Started (+10).
	updated, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 115, updated.Points)
	assert.Equal(t, []int{AchievementGettingStarted}, achievements.unlockedIDs(user.ID))
}

func TestAddPointsRewardDoesNotCascade(t *testing.T) {
	t.Parallel()

	// 480 + 15 = 495 is compared against the 500 threshold before the
	// Getting Started reward lands, so Making Progress stays locked even
	// though the final balance exceeds 500.
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	user := testUser(t, 480, 0, nil)
	users := newFakeUserStore(user)
	achievements := newFakeAchievementStore()
	engine := newTestEngine(users, achievements, now)

	err := engine.AddPoints(context.Background(), nil, user.ID, 15)
	require.NoError(t, err)

	updated, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 505, updated.Points)
	assert.Equal(t, []int{AchievementGettingStarted}, achievements.unlockedIDs(user.ID))

	// The next event sees the new balance and grants the 500 tier.
	err = engine.AddPoints(context.Background(), nil, user.ID, 0)
	require.NoError(t, err)

	updated, err = users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 555, updated.Points)
	assert.Equal(t,
		[]int{AchievementGettingStarted, AchievementMakingProgress},
		achievements.unlockedIDs(user.ID))
}

func TestAddPointsBelowThresholdUnlocksNothing(t *testing.T) {
	t.Parallel()

	user := testUser(t, 50, 0, nil)
	users := newFakeUserStore(user)
	achievements := newFakeAchievementStore()
	engine := newTestEngine(users, achievements, time.Now().UTC())

	err := engine.AddPoints(context.Background(), nil, user.ID, 30)
	require.NoError(t, err)

	updated, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, updated.Points)
	assert.Empty(t, achievements.unlockedIDs(user.ID))
}

func TestAddPointsUnlocksAllMetTiers(t *testing.T) {
	t.Parallel()

	// A large grant meets several tiers at once; each is checked against
	// the same snapshot and all unlock in the same pass.
	user := testUser(t, 0, 0, nil)
	users := newFakeUserStore(user)
	achievements := newFakeAchievementStore()
	engine := newTestEngine(users, achievements, time.Now().UTC())

	err := engine.AddPoints(context.Background(), nil, user.ID, 1200)
	require.NoError(t, err)

	updated, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	// 1200 + rewards for the 100, 500 and 1000 tiers (10 + 50 + 100).
	assert.Equal(t, 1360, updated.Points)
	assert.Equal(t,
		[]int{AchievementGettingStarted, AchievementMakingProgress, AchievementExpertStatus},
		achievements.unlockedIDs(user.ID))
}

func TestUnlockGrantsOnceAndPaysReward(t *testing.T) {
	t.Parallel()

	user := testUser(t, 0, 0, nil)
	users := newFakeUserStore(user)
	achievements := newFakeAchievementStore()
	engine := newTestEngine(users, achievements, time.Now().UTC())

	granted, err := engine.Unlock(context.Background(), nil, user.ID, AchievementFirstCaseSolved)
	require.NoError(t, err)
	assert.True(t, granted)

	updated, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, updated.Points)

	// Second grant is a no-op.
	granted, err = engine.Unlock(context.Background(), nil, user.ID, AchievementFirstCaseSolved)
	require.NoError(t, err)
	assert.False(t, granted)

	updated, err = users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, updated.Points)
	assert.Equal(t, []int{AchievementFirstCaseSolved}, achievements.unlockedIDs(user.ID))
}

func TestUnlockUnknownAchievement(t *testing.T) {
	t.Parallel()

	user := testUser(t, 0, 0, nil)
	users := newFakeUserStore(user)
	engine := newTestEngine(users, newFakeAchievementStore(), time.Now().UTC())

	granted, err := engine.Unlock(context.Background(), nil, user.ID, 999)
	assert.Error(t, err)
	assert.False(t, granted)
}

func TestCalendarDayGap(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		last     *time.Time
		wantGap  int
		wantSeen bool
	}{
		{"no prior activity", nil, 0, false},
		{"same day", timePtr(time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)), 0, true},
		{"previous day late evening", timePtr(time.Date(2025, 6, 9, 23, 59, 0, 0, time.UTC)), 1, true},
		{"two days ago", timePtr(time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)), 2, true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gap, seen := calendarDayGap(tc.last, now)
			assert.Equal(t, tc.wantGap, gap)
			assert.Equal(t, tc.wantSeen, seen)
		})
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
