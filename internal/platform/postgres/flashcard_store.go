package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mediqa-api/internal/domain"
	"github.com/phrazzld/mediqa-api/internal/platform/logger"
	"github.com/phrazzld/mediqa-api/internal/store"
)

// PostgresFlashcardStore implements the store.FlashcardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFlashcardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFlashcardStore creates a new PostgreSQL implementation of
// the FlashcardStore interface.
func NewPostgresFlashcardStore(db store.DBTX, logger *slog.Logger) *PostgresFlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFlashcardStore{
		db:     db,
		logger: logger.With(slog.String("component", "flashcard_store")),
	}
}

// Ensure PostgresFlashcardStore implements store.FlashcardStore interface
var _ store.FlashcardStore = (*PostgresFlashcardStore)(nil)

// WithTx implements store.FlashcardStore.WithTx
func (s *PostgresFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return &PostgresFlashcardStore{
		db:     tx,
		logger: s.logger,
	}
}

// CreateCard implements store.FlashcardStore.CreateCard
func (s *PostgresFlashcardStore) CreateCard(ctx context.Context, card *domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("flashcard validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO flashcards (id, topic, question, answer, difficulty, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.Topic,
		card.Question,
		card.Answer,
		card.Difficulty,
		card.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create flashcard",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	return nil
}

// GetCardByID implements store.FlashcardStore.GetCardByID
// Returns store.ErrFlashcardNotFound if the card does not exist.
func (s *PostgresFlashcardStore) GetCardByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, topic, question, answer, difficulty, created_at
		FROM flashcards
		WHERE id = $1
	`

	var card domain.Flashcard
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&card.ID,
		&card.Topic,
		&card.Question,
		&card.Answer,
		&card.Difficulty,
		&card.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("flashcard not found", slog.String("card_id", id.String()))
			return nil, store.ErrFlashcardNotFound
		}

		log.Error("failed to get flashcard",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, err
	}

	return &card, nil
}

// ListDueCards implements store.FlashcardStore.ListDueCards
// A card is due when its progress entry says so, or when the user has
// never reviewed it.
func (s *PostgresFlashcardStore) ListDueCards(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT c.id, c.topic, c.question, c.answer, c.difficulty, c.created_at
		FROM flashcards c
		LEFT JOIN flashcard_progress p
			ON p.card_id = c.id AND p.user_id = $1
		WHERE p.card_id IS NULL OR p.next_review_at <= $2
		ORDER BY p.next_review_at NULLS FIRST, c.created_at
	`

	rows, err := s.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		log.Error("failed to list due flashcards",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Flashcard
	for rows.Next() {
		var card domain.Flashcard
		err := rows.Scan(
			&card.ID,
			&card.Topic,
			&card.Question,
			&card.Answer,
			&card.Difficulty,
			&card.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan flashcard row", slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, &card)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}

// progressColumns is the canonical select list for scanning progress rows.
const progressColumns = `
	user_id, card_id, ease_factor, interval_days,
	next_review_at, last_reviewed_at, created_at, updated_at
`

// CreateProgress implements store.FlashcardStore.CreateProgress
func (s *PostgresFlashcardStore) CreateProgress(
	ctx context.Context,
	progress *domain.FlashcardProgress,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("progress validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("card_id", progress.CardID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO flashcard_progress (
			user_id, card_id, ease_factor, interval_days,
			next_review_at, last_reviewed_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		progress.UserID,
		progress.CardID,
		progress.EaseFactor,
		progress.IntervalDays,
		progress.NextReviewAt,
		progress.LastReviewedAt,
		progress.CreatedAt,
		progress.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("progress references missing user or card",
				slog.String("user_id", progress.UserID.String()),
				slog.String("card_id", progress.CardID.String()))
			return fmt.Errorf("%w: progress references missing entity", store.ErrInvalidEntity)
		}

		log.Error("failed to create flashcard progress",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("card_id", progress.CardID.String()))
		return err
	}

	return nil
}

// GetProgress implements store.FlashcardStore.GetProgress
// Returns store.ErrProgressNotFound if the entry does not exist.
func (s *PostgresFlashcardStore) GetProgress(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.FlashcardProgress, error) {
	return s.getProgress(ctx, userID, cardID, false)
}

// GetProgressForUpdate implements store.FlashcardStore.GetProgressForUpdate
func (s *PostgresFlashcardStore) GetProgressForUpdate(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.FlashcardProgress, error) {
	return s.getProgress(ctx, userID, cardID, true)
}

func (s *PostgresFlashcardStore) getProgress(
	ctx context.Context,
	userID, cardID uuid.UUID,
	forUpdate bool,
) (*domain.FlashcardProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := "SELECT " + progressColumns + `
		FROM flashcard_progress
		WHERE user_id = $1 AND card_id = $2
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var progress domain.FlashcardProgress
	err := s.db.QueryRowContext(ctx, query, userID, cardID).Scan(
		&progress.UserID,
		&progress.CardID,
		&progress.EaseFactor,
		&progress.IntervalDays,
		&progress.NextReviewAt,
		&progress.LastReviewedAt,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("flashcard progress not found",
				slog.String("user_id", userID.String()),
				slog.String("card_id", cardID.String()))
			return nil, store.ErrProgressNotFound
		}

		log.Error("failed to get flashcard progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, err
	}

	return &progress, nil
}

// UpdateProgress implements store.FlashcardStore.UpdateProgress
// Returns store.ErrProgressNotFound if the entry does not exist.
func (s *PostgresFlashcardStore) UpdateProgress(
	ctx context.Context,
	progress *domain.FlashcardProgress,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("progress validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("card_id", progress.CardID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE flashcard_progress
		SET ease_factor = $3, interval_days = $4,
			next_review_at = $5, last_reviewed_at = $6, updated_at = $7
		WHERE user_id = $1 AND card_id = $2
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		progress.UserID,
		progress.CardID,
		progress.EaseFactor,
		progress.IntervalDays,
		progress.NextReviewAt,
		progress.LastReviewedAt,
		progress.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update flashcard progress",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("card_id", progress.CardID.String()))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUpdateFailed, err)
	}
	if rows == 0 {
		return store.ErrProgressNotFound
	}

	return nil
}

// CountProgressByUser implements store.FlashcardStore.CountProgressByUser
func (s *PostgresFlashcardStore) CountProgressByUser(
	ctx context.Context,
	userID uuid.UUID,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT COUNT(*) FROM flashcard_progress WHERE user_id = $1`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		log.Error("failed to count flashcard progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, err
	}

	return count, nil
}
