package gamification

import "github.com/phrazzld/mediqa-api/internal/domain"

// Stable achievement IDs. IDs 1-8 are granted automatically by
// threshold evaluation; 9-14 are granted on domain events by the
// services that observe them (or by external collaborators through
// Unlock).
const (
	AchievementConsistentLearner     = 1
	AchievementWeeklyWarrior         = 2
	AchievementMonthlyMaster         = 3
	AchievementDedicationPersonified = 4
	AchievementGettingStarted        = 5
	AchievementMakingProgress        = 6
	AchievementExpertStatus          = 7
	AchievementMasterDiagnostician   = 8
	AchievementFirstCaseSolved       = 9
	AchievementCaseAce               = 10
	AchievementChallengeAccepted     = 11
	AchievementChallengeStreak       = 12
	AchievementMemoryMaster          = 13
	AchievementPerfectRecall         = 14
)

// Counters that trigger the flashcard achievements, observed by the
// review service.
const (
	// MemoryMasterReviewCount is the cumulative count of distinct cards
	// reviewed that earns Memory Master.
	MemoryMasterReviewCount = 50
	// PerfectRecallStreakLength is the consecutive perfect-review count
	// that earns Perfect Recall.
	PerfectRecallStreakLength = 10
)

// threshold maps a streak or points value to the achievement it earns.
type threshold struct {
	Value         int
	AchievementID int
}

// Threshold tables are explicit sorted slices so evaluation order is
// deterministic across runs.
var (
	streakThresholds = []threshold{
		{3, AchievementConsistentLearner},
		{7, AchievementWeeklyWarrior},
		{30, AchievementMonthlyMaster},
		{100, AchievementDedicationPersonified},
	}

	pointThresholds = []threshold{
		{100, AchievementGettingStarted},
		{500, AchievementMakingProgress},
		{1000, AchievementExpertStatus},
		{5000, AchievementMasterDiagnostician},
	}
)

// DefaultCatalog returns the full static achievement catalog. Seeding
// inserts entries that are absent and never rewrites existing ones.
func DefaultCatalog() []domain.Achievement {
	return []domain.Achievement{
		// Streak achievements
		{ID: AchievementConsistentLearner, Name: "Consistent Learner", Description: "Maintain a 3-day streak", BadgeIcon: "award", Points: 30},
		{ID: AchievementWeeklyWarrior, Name: "Weekly Warrior", Description: "Maintain a 7-day streak", BadgeIcon: "calendar", Points: 70},
		{ID: AchievementMonthlyMaster, Name: "Monthly Master", Description: "Maintain a 30-day streak", BadgeIcon: "calendar-check", Points: 300},
		{ID: AchievementDedicationPersonified, Name: "Dedication Personified", Description: "Maintain a 100-day streak", BadgeIcon: "award-fill", Points: 1000},

		// Points achievements
		{ID: AchievementGettingStarted, Name: "Getting Started", Description: "Earn 100 points", BadgeIcon: "star", Points: 10},
		{ID: AchievementMakingProgress, Name: "Making Progress", Description: "Earn 500 points", BadgeIcon: "stars", Points: 50},
		{ID: AchievementExpertStatus, Name: "Expert Status", Description: "Earn 1000 points", BadgeIcon: "star-fill", Points: 100},
		{ID: AchievementMasterDiagnostician, Name: "Master Diagnostician", Description: "Earn 5000 points", BadgeIcon: "trophy", Points: 500},

		// Case achievements
		{ID: AchievementFirstCaseSolved, Name: "First Case Solved", Description: "Successfully diagnose your first case", BadgeIcon: "clipboard-check", Points: 20},
		{ID: AchievementCaseAce, Name: "Case Ace", Description: "Get a perfect score on a case", BadgeIcon: "clipboard-pulse", Points: 50},

		// Challenge achievements
		{ID: AchievementChallengeAccepted, Name: "Challenge Accepted", Description: "Complete your first daily challenge", BadgeIcon: "lightning", Points: 15},
		{ID: AchievementChallengeStreak, Name: "Challenge Streak", Description: "Complete 5 challenges in a row", BadgeIcon: "lightning-fill", Points: 75},

		// Flashcard achievements
		{ID: AchievementMemoryMaster, Name: "Memory Master", Description: "Review 50 flashcards", BadgeIcon: "stack", Points: 50},
		{ID: AchievementPerfectRecall, Name: "Perfect Recall", Description: "Get 10 perfect flashcard reviews in a row", BadgeIcon: "brain", Points: 100},
	}
}
