package review

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mediqa-api/internal/domain"
	"github.com/phrazzld/mediqa-api/internal/service/gamification"
	"github.com/phrazzld/mediqa-api/internal/store"
)

func passthroughTx(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

type progressKey struct {
	userID uuid.UUID
	cardID uuid.UUID
}

// fakeFlashcardStore is an in-memory store.FlashcardStore.
type fakeFlashcardStore struct {
	mu       sync.Mutex
	cards    map[uuid.UUID]*domain.Flashcard
	progress map[progressKey]*domain.FlashcardProgress
}

var _ store.FlashcardStore = (*fakeFlashcardStore)(nil)

func newFakeFlashcardStore(cards ...*domain.Flashcard) *fakeFlashcardStore {
	s := &fakeFlashcardStore{
		cards:    make(map[uuid.UUID]*domain.Flashcard),
		progress: make(map[progressKey]*domain.FlashcardProgress),
	}
	for _, c := range cards {
		cc := *c
		s.cards[c.ID] = &cc
	}
	return s
}

func (s *fakeFlashcardStore) CreateCard(_ context.Context, card *domain.Flashcard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[card.ID]; ok {
		return store.ErrDuplicate
	}
	c := *card
	s.cards[card.ID] = &c
	return nil
}

func (s *fakeFlashcardStore) GetCardByID(_ context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok {
		return nil, store.ErrFlashcardNotFound
	}
	cc := *c
	return &cc, nil
}

func (s *fakeFlashcardStore) ListDueCards(
	_ context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*domain.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*domain.Flashcard
	for id, c := range s.cards {
		p, reviewed := s.progress[progressKey{userID, id}]
		if !reviewed || !p.NextReviewAt.After(now) {
			cc := *c
			due = append(due, &cc)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].CreatedAt.Before(due[j].CreatedAt) })
	return due, nil
}

func (s *fakeFlashcardStore) CreateProgress(_ context.Context, progress *domain.FlashcardProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := progressKey{progress.UserID, progress.CardID}
	if _, ok := s.progress[key]; ok {
		return store.ErrDuplicate
	}
	p := *progress
	s.progress[key] = &p
	return nil
}

func (s *fakeFlashcardStore) GetProgress(
	_ context.Context,
	userID, cardID uuid.UUID,
) (*domain.FlashcardProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[progressKey{userID, cardID}]
	if !ok {
		return nil, store.ErrProgressNotFound
	}
	pp := *p
	return &pp, nil
}

func (s *fakeFlashcardStore) GetProgressForUpdate(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.FlashcardProgress, error) {
	return s.GetProgress(ctx, userID, cardID)
}

func (s *fakeFlashcardStore) UpdateProgress(_ context.Context, progress *domain.FlashcardProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := progressKey{progress.UserID, progress.CardID}
	if _, ok := s.progress[key]; !ok {
		return store.ErrProgressNotFound
	}
	p := *progress
	s.progress[key] = &p
	return nil
}

func (s *fakeFlashcardStore) CountProgressByUser(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for key := range s.progress {
		if key.userID == userID {
			count++
		}
	}
	return count, nil
}

func (s *fakeFlashcardStore) WithTx(_ *sql.Tx) store.FlashcardStore {
	return s
}

// fakeUserStore is an in-memory store.UserStore.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

var _ store.UserStore = (*fakeUserStore)(nil)

func newFakeUserStore(users ...*domain.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		s.users[u.ID] = copyUser(u)
	}
	return s
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	if u.LastActiveAt != nil {
		t := *u.LastActiveAt
		c.LastActiveAt = &t
	}
	return &c
}

func (s *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return store.ErrDuplicate
	}
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *fakeUserStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeUserStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *fakeUserStore) ListTopByPoints(_ context.Context, limit int) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, copyUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Points > all[j].Points })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *fakeUserStore) WithTx(_ *sql.Tx) store.UserStore {
	return s
}

// fakeAchievementStore is an in-memory store.AchievementStore seeded
// with the default catalog.
type fakeAchievementStore struct {
	mu      sync.Mutex
	catalog map[int]domain.Achievement
	unlocks map[unlockKey]bool
}

type unlockKey struct {
	userID        uuid.UUID
	achievementID int
}

var _ store.AchievementStore = (*fakeAchievementStore)(nil)

func newFakeAchievementStore() *fakeAchievementStore {
	s := &fakeAchievementStore{
		catalog: make(map[int]domain.Achievement),
		unlocks: make(map[unlockKey]bool),
	}
	for _, a := range gamification.DefaultCatalog() {
		s.catalog[a.ID] = a
	}
	return s
}

func (s *fakeAchievementStore) CreateIfAbsent(_ context.Context, achievement *domain.Achievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.catalog[achievement.ID]; !ok {
		s.catalog[achievement.ID] = *achievement
	}
	return nil
}

func (s *fakeAchievementStore) GetByID(_ context.Context, id int) (*domain.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.catalog[id]
	if !ok {
		return nil, store.ErrAchievementNotFound
	}
	return &a, nil
}

func (s *fakeAchievementStore) HasUnlock(_ context.Context, userID uuid.UUID, achievementID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocks[unlockKey{userID, achievementID}], nil
}

func (s *fakeAchievementStore) CreateUnlock(_ context.Context, unlock *domain.AchievementUnlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := unlockKey{unlock.UserID, unlock.AchievementID}
	if s.unlocks[key] {
		return store.ErrUnlockExists
	}
	s.unlocks[key] = true
	return nil
}

func (s *fakeAchievementStore) ListEarnedByUser(
	_ context.Context,
	_ uuid.UUID,
) ([]*domain.EarnedAchievement, error) {
	return nil, nil
}

func (s *fakeAchievementStore) WithTx(_ *sql.Tx) store.AchievementStore {
	return s
}

func (s *fakeAchievementStore) holds(userID uuid.UUID, achievementID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocks[unlockKey{userID, achievementID}]
}
