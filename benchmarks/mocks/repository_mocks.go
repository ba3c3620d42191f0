package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

// MockGameRepository implements domain.GameRepository in memory and counts reads.
type MockGameRepository struct {
	games  map[int64]domain.Game
	nextID int64
	mu     sync.RWMutex

	// Err, when set, is returned by every call.
	Err error

	// Metrics
	FindByIDCalls       int64
	FindAllCalls        int64
	FindByCategoryCalls int64
	SaveCalls           int64
	DeleteCalls         int64
}

// NewMockGameRepository creates a repository seeded with games. Seeded games keep their ids.
func NewMockGameRepository(games ...domain.Game) *MockGameRepository {
	m := &MockGameRepository{games: make(map[int64]domain.Game)}
	for _, g := range games {
		m.games[g.ID] = g
		if g.ID > m.nextID {
			m.nextID = g.ID
		}
	}
	return m
}

// FindByID implements domain.GameRepository
func (m *MockGameRepository) FindByID(ctx context.Context, id int64) (*domain.Game, error) {
	atomic.AddInt64(&m.FindByIDCalls, 1)
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.games[id]
	if !ok {
		return nil, fmt.Errorf("game %d: %w", id, domain.ErrNotFound)
	}
	return &g, nil
}

// FindAll implements domain.GameRepository
func (m *MockGameRepository) FindAll(ctx context.Context) ([]domain.Game, error) {
	atomic.AddInt64(&m.FindAllCalls, 1)
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(func(domain.Game) bool { return true }), nil
}

// FindByCategory implements domain.GameRepository
func (m *MockGameRepository) FindByCategory(ctx context.Context, category string) ([]domain.Game, error) {
	atomic.AddInt64(&m.FindByCategoryCalls, 1)
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(func(g domain.Game) bool { return strings.EqualFold(g.Category, category) }), nil
}

// Save implements domain.GameRepository
func (m *MockGameRepository) Save(ctx context.Context, game *domain.Game) (*domain.Game, error) {
	atomic.AddInt64(&m.SaveCalls, 1)
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	saved := *game
	if saved.ID == 0 {
		m.nextID++
		saved.ID = m.nextID
	} else if _, ok := m.games[saved.ID]; !ok {
		return nil, fmt.Errorf("game %d: %w", saved.ID, domain.ErrNotFound)
	}
	m.games[saved.ID] = saved
	return &saved, nil
}

// DeleteByID implements domain.GameRepository
func (m *MockGameRepository) DeleteByID(ctx context.Context, id int64) error {
	atomic.AddInt64(&m.DeleteCalls, 1)
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

// ExistsByID implements domain.GameRepository
func (m *MockGameRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.games[id]
	return ok, nil
}

// Reads returns the total number of read calls.
func (m *MockGameRepository) Reads() int64 {
	return atomic.LoadInt64(&m.FindByIDCalls) +
		atomic.LoadInt64(&m.FindAllCalls) +
		atomic.LoadInt64(&m.FindByCategoryCalls)
}

func (m *MockGameRepository) sorted(keep func(domain.Game) bool) []domain.Game {
	out := make([]domain.Game, 0, len(m.games))
	for _, g := range m.games {
		if keep(g) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MockUserRepository implements domain.UserRepository and domain.RoleRepository in memory.
type MockUserRepository struct {
	users  map[string]domain.User
	nextID int64
	mu     sync.RWMutex

	// Err, when set, is returned by every call.
	Err error
	// SaveErr, when set, is returned by Save only.
	SaveErr error

	SaveCalls int64
}

// NewMockUserRepository creates a repository seeded with users.
func NewMockUserRepository(users ...domain.User) *MockUserRepository {
	m := &MockUserRepository{users: make(map[string]domain.User)}
	for _, u := range users {
		m.users[u.Username] = u
		if u.ID > m.nextID {
			m.nextID = u.ID
		}
	}
	return m
}

// FindByUsername implements domain.UserRepository
func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[username]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
	}
	return &u, nil
}

// FindAll implements domain.UserRepository
func (m *MockUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ExistsByUsername implements domain.UserRepository
func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[username]
	return ok, nil
}

// ExistsByEmail implements domain.UserRepository
func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// Save implements domain.UserRepository
func (m *MockUserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	atomic.AddInt64(&m.SaveCalls, 1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	saved := *user
	saved.Roles = append([]domain.Role(nil), user.Roles...)
	m.nextID++
	saved.ID = m.nextID
	m.users[saved.Username] = saved
	return &saved, nil
}

// FindRoleByName implements domain.RoleRepository. Only the known roles exist.
func (m *MockUserRepository) FindRoleByName(ctx context.Context, name domain.Role) (*domain.RoleRecord, error) {
	switch name {
	case domain.RoleUser:
		return &domain.RoleRecord{ID: 1, Name: name}, nil
	case domain.RoleAdmin:
		return &domain.RoleRecord{ID: 2, Name: name}, nil
	default:
		return nil, fmt.Errorf("role %q: %w", name, domain.ErrNotFound)
	}
}

// MockPasswordHasher implements domain.PasswordHasher with a reversible prefix scheme.
type MockPasswordHasher struct {
	HashCalls   int64
	VerifyCalls int64
}

// Hash implements domain.PasswordHasher
func (h *MockPasswordHasher) Hash(raw string) (string, error) {
	atomic.AddInt64(&h.HashCalls, 1)
	return "hashed:" + raw, nil
}

// Verify implements domain.PasswordHasher
func (h *MockPasswordHasher) Verify(hash, raw string) bool {
	atomic.AddInt64(&h.VerifyCalls, 1)
	return hash == "hashed:"+raw
}
