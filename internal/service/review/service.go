package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mediqa-api/internal/config"
	"github.com/phrazzld/mediqa-api/internal/domain"
	"github.com/phrazzld/mediqa-api/internal/domain/srs"
	"github.com/phrazzld/mediqa-api/internal/platform/logger"
	"github.com/phrazzld/mediqa-api/internal/service/gamification"
	"github.com/phrazzld/mediqa-api/internal/store"
)

// Common error types for the review service.
var (
	// ErrCardNotFound indicates the flashcard does not exist.
	ErrCardNotFound = errors.New("flashcard not found")

	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidQuality indicates the recall quality is outside [0,5].
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")
)

// Service exposes flashcard review operations. A review is one
// transaction: the schedule update, the point grant, the review
// counters, and any achievement unlocks commit together or not at all.
type Service interface {
	// ReviewCard applies one review of a card by a user with the given
	// recall quality and returns the updated progress.
	ReviewCard(
		ctx context.Context,
		userID, cardID uuid.UUID,
		quality int,
	) (*domain.FlashcardProgress, error)

	// GetDueCards returns the user's cards due for review now, including
	// cards never reviewed.
	GetDueCards(ctx context.Context, userID uuid.UUID) ([]*domain.Flashcard, error)

	// CreateCard stores a new flashcard.
	CreateCard(
		ctx context.Context,
		topic, question, answer string,
		difficulty int,
	) (*domain.Flashcard, error)
}

// txRunner abstracts transaction execution so tests can substitute the
// real database with in-memory stores.
type txRunner func(ctx context.Context, fn store.TxFn) error

// service is the standard implementation of the Service interface.
type service struct {
	runTx      txRunner
	flashcards store.FlashcardStore
	users      store.UserStore
	scheduler  srs.Service
	engine     *gamification.Engine
	cfg        config.GamificationConfig
	logger     *slog.Logger
	now        func() time.Time
}

// Verify interface compliance at compile time
var _ Service = (*service)(nil)

// NewService creates the review service.
func NewService(
	db *sql.DB,
	flashcards store.FlashcardStore,
	users store.UserStore,
	scheduler srs.Service,
	engine *gamification.Engine,
	cfg config.GamificationConfig,
	log *slog.Logger,
) Service {
	if db == nil {
		panic("db cannot be nil")
	}
	if flashcards == nil {
		panic("flashcards store cannot be nil")
	}
	if users == nil {
		panic("users store cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
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
		flashcards: flashcards,
		users:      users,
		scheduler:  scheduler,
		engine:     engine,
		cfg:        cfg,
		logger:     log.With(slog.String("component", "review_service")),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ReviewCard implements Service.ReviewCard.
func (s *service) ReviewCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	quality int,
) (*domain.FlashcardProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if quality < srs.MinQuality || quality > srs.MaxQuality {
		return nil, ErrInvalidQuality
	}

	var result *domain.FlashcardProgress
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		now := s.now()
		cards := s.flashcards.WithTx(tx)

		if _, err := cards.GetCardByID(ctx, cardID); err != nil {
			return fmt.Errorf("loading card: %w", err)
		}

		progress, err := s.applyReview(ctx, cards, userID, cardID, quality, now)
		if err != nil {
			return err
		}
		result = progress

		if err := s.engine.AddPoints(ctx, tx, userID, s.cfg.FlashcardReviewPoints); err != nil {
			return err
		}

		count, err := cards.CountProgressByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("counting reviewed cards: %w", err)
		}
		if count >= gamification.MemoryMasterReviewCount {
			if _, err := s.engine.Unlock(
				ctx, tx, userID, gamification.AchievementMemoryMaster,
			); err != nil {
				return err
			}
		}

		return s.trackPerfectStreak(ctx, tx, userID, quality)
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrFlashcardNotFound):
			return nil, ErrCardNotFound
		case errors.Is(err, store.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, srs.ErrInvalidQuality):
			return nil, ErrInvalidQuality
		}
		log.Error("failed to review card",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, fmt.Errorf("failed to review card: %w", err)
	}

	log.Info("card reviewed",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.Int("quality", quality),
		slog.Int("interval_days", result.IntervalDays))

	return result, nil
}

// applyReview creates first-review progress or advances existing
// progress through the scheduler. The progress row is locked for the
// duration of the transaction.
func (s *service) applyReview(
	ctx context.Context,
	cards store.FlashcardStore,
	userID, cardID uuid.UUID,
	quality int,
	now time.Time,
) (*domain.FlashcardProgress, error) {
	progress, err := cards.GetProgressForUpdate(ctx, userID, cardID)
	if err != nil {
		if !errors.Is(err, store.ErrProgressNotFound) {
			return nil, fmt.Errorf("loading progress: %w", err)
		}

		created, err := s.scheduler.FirstReview(userID, cardID, now)
		if err != nil {
			return nil, fmt.Errorf("creating first-review progress: %w", err)
		}
		if err := cards.CreateProgress(ctx, created); err != nil {
			return nil, fmt.Errorf("saving first-review progress: %w", err)
		}
		return created, nil
	}

	updated, err := s.scheduler.Review(progress, quality, now)
	if err != nil {
		return nil, err
	}
	if err := cards.UpdateProgress(ctx, updated); err != nil {
		return nil, fmt.Errorf("saving updated progress: %w", err)
	}

	return updated, nil
}

// trackPerfectStreak maintains the user's consecutive perfect-review
// counter. A perfect review increments it; anything else resets it. The
// counter survives restarts because it lives on the user row, and it
// rolls back to zero when it pays out Perfect Recall.
func (s *service) trackPerfectStreak(
	ctx context.Context,
	tx *sql.Tx,
	userID uuid.UUID,
	quality int,
) error {
	users := s.users.WithTx(tx)
	user, err := users.GetForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading user for perfect streak: %w", err)
	}

	if quality < srs.MaxQuality {
		if user.PerfectReviewStreak == 0 {
			return nil
		}
		user.PerfectReviewStreak = 0
		if err := users.Update(ctx, user); err != nil {
			return fmt.Errorf("resetting perfect streak: %w", err)
		}
		return nil
	}

	user.PerfectReviewStreak++
	payout := user.PerfectReviewStreak >= gamification.PerfectRecallStreakLength
	if payout {
		user.PerfectReviewStreak = 0
	}
	if err := users.Update(ctx, user); err != nil {
		return fmt.Errorf("updating perfect streak: %w", err)
	}

	if payout {
		if _, err := s.engine.Unlock(
			ctx, tx, userID, gamification.AchievementPerfectRecall,
		); err != nil {
			return err
		}
	}

	return nil
}

// GetDueCards implements Service.GetDueCards.
func (s *service) GetDueCards(ctx context.Context, userID uuid.UUID) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cards, err := s.flashcards.ListDueCards(ctx, userID, s.now())
	if err != nil {
		log.Error("failed to list due cards",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list due cards: %w", err)
	}

	return cards, nil
}

// CreateCard implements Service.CreateCard.
func (s *service) CreateCard(
	ctx context.Context,
	topic, question, answer string,
	difficulty int,
) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := domain.NewFlashcard(topic, question, answer, difficulty)
	if err != nil {
		return nil, fmt.Errorf("invalid flashcard: %w", err)
	}

	if err := s.flashcards.CreateCard(ctx, card); err != nil {
		log.Error("failed to create flashcard",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return nil, fmt.Errorf("failed to create flashcard: %w", err)
	}

	return card, nil
}
