package gamification

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/mediqa-api/internal/domain"
	"github.com/phrazzld/mediqa-api/internal/store"
)

// passthroughTx runs the transaction function directly, with no real
// transaction. The fake stores ignore the nil *sql.Tx.
func passthroughTx(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// fakeUserStore is an in-memory store.UserStore for engine and service
// tests.
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

// fakeAchievementStore is an in-memory store.AchievementStore holding
// the default catalog unless told otherwise.
type fakeAchievementStore struct {
	mu      sync.Mutex
	catalog map[int]domain.Achievement
	unlocks []*domain.AchievementUnlock
}

var _ store.AchievementStore = (*fakeAchievementStore)(nil)

func newFakeAchievementStore() *fakeAchievementStore {
	s := &fakeAchievementStore{catalog: make(map[int]domain.Achievement)}
	for _, a := range DefaultCatalog() {
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
	for _, u := range s.unlocks {
		if u.UserID == userID && u.AchievementID == achievementID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeAchievementStore) CreateUnlock(_ context.Context, unlock *domain.AchievementUnlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.unlocks {
		if u.UserID == unlock.UserID && u.AchievementID == unlock.AchievementID {
			return store.ErrUnlockExists
		}
	}
	c := *unlock
	s.unlocks = append(s.unlocks, &c)
	return nil
}

func (s *fakeAchievementStore) ListEarnedByUser(_ context.Context, userID uuid.UUID) ([]*domain.EarnedAchievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var earned []*domain.EarnedAchievement
	for _, u := range s.unlocks {
		if u.UserID != userID {
			continue
		}
		a, ok := s.catalog[u.AchievementID]
		if !ok {
			return nil, fmt.Errorf("unlock references unknown achievement %d", u.AchievementID)
		}
		earned = append(earned, &domain.EarnedAchievement{Achievement: a, EarnedAt: u.EarnedAt})
	}
	sort.Slice(earned, func(i, j int) bool {
		if earned[i].EarnedAt.Equal(earned[j].EarnedAt) {
			return earned[i].ID < earned[j].ID
		}
		return earned[i].EarnedAt.Before(earned[j].EarnedAt)
	})
	return earned, nil
}

func (s *fakeAchievementStore) unlockedIDs(userID uuid.UUID) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int
	for _, u := range s.unlocks {
		if u.UserID == userID {
			ids = append(ids, u.AchievementID)
		}
	}
	sort.Ints(ids)
	return ids
}

func (s *fakeAchievementStore) WithTx(_ *sql.Tx) store.AchievementStore {
	return s
}
