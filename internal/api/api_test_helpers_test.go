package api

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/mediqa-api/internal/domain"
	"github.com/phrazzld/mediqa-api/internal/service/auth"
	"github.com/phrazzld/mediqa-api/internal/service/gamification"
	"github.com/phrazzld/mediqa-api/internal/store"
)

// stubJWTService issues predictable tokens keyed by user ID.
type stubJWTService struct {
	mu     sync.Mutex
	tokens map[string]uuid.UUID
}

var _ auth.JWTService = (*stubJWTService)(nil)

func newStubJWTService() *stubJWTService {
	return &stubJWTService{tokens: make(map[string]uuid.UUID)}
}

func (s *stubJWTService) GenerateToken(_ context.Context, userID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := "token-" + userID.String()
	s.tokens[token] = userID
	return token, nil
}

func (s *stubJWTService) ValidateToken(_ context.Context, tokenString string) (*auth.Claims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[tokenString]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: userID, Subject: userID.String()}, nil
}

// memUserStore is a minimal in-memory store.UserStore for handler tests.
type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

var _ store.UserStore = (*memUserStore)(nil)

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (s *memUserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
		if u.Username == user.Username {
			return store.ErrUsernameExists
		}
	}
	if user.HashedPassword == "" && user.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.MinCost)
		if err != nil {
			return err
		}
		user.HashedPassword = string(hashed)
		user.Password = ""
	}
	c := *user
	s.users[user.ID] = &c
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memUserStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.GetByID(ctx, id)
}

func (s *memUserStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	c := *user
	s.users[user.ID] = &c
	return nil
}

func (s *memUserStore) ListTopByPoints(_ context.Context, limit int) ([]*domain.User, error) {
	return nil, nil
}

func (s *memUserStore) WithTx(_ *sql.Tx) store.UserStore {
	return s
}

// stubGamificationService records calls and returns canned data.
type stubGamificationService struct {
	recordActivityErr error
	unlockGranted     bool
	unlockErr         error
	leaderboard       []gamification.LeaderboardEntry
	earned            []*domain.EarnedAchievement

	lastUserID        uuid.UUID
	lastPoints        int
	lastAchievementID int
}

var _ gamification.Service = (*stubGamificationService)(nil)

func (s *stubGamificationService) RecordActivity(_ context.Context, userID uuid.UUID) error {
	s.lastUserID = userID
	return s.recordActivityErr
}

func (s *stubGamificationService) AddPoints(_ context.Context, userID uuid.UUID, amount int) error {
	s.lastUserID = userID
	s.lastPoints = amount
	return nil
}

func (s *stubGamificationService) Unlock(
	_ context.Context,
	userID uuid.UUID,
	achievementID int,
) (bool, error) {
	s.lastUserID = userID
	s.lastAchievementID = achievementID
	return s.unlockGranted, s.unlockErr
}

func (s *stubGamificationService) GetLeaderboard(
	_ context.Context,
	_ int,
) ([]gamification.LeaderboardEntry, error) {
	return s.leaderboard, nil
}

func (s *stubGamificationService) GetUserAchievements(
	_ context.Context,
	_ uuid.UUID,
) ([]*domain.EarnedAchievement, error) {
	return s.earned, nil
}

func (s *stubGamificationService) SeedCatalog(_ context.Context) error {
	return nil
}

// stubGenerator returns a canned answer and records the context it saw.
type stubGenerator struct {
	answer      string
	err         error
	lastQuery   string
	lastContext string
}

func (g *stubGenerator) GenerateAnswer(_ context.Context, query, documentContext string) (string, error) {
	g.lastQuery = query
	g.lastContext = documentContext
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

// earnedAt builds an EarnedAchievement for response-shape tests.
func earnedAt(id int, name string, ts time.Time) *domain.EarnedAchievement {
	return &domain.EarnedAchievement{
		Achievement: domain.Achievement{ID: id, Name: name, Points: 10},
		EarnedAt:    ts,
	}
}
