package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"notes_system/internal/domain"

	"github.com/google/uuid" // Identifier generation
)

// MemoryStore is an in-process Store for local runs and tests. It enforces
// the same unique username and note reference constraints as the MySQL
// schema.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]domain.User
	notes map[string]domain.Note
	now   func() time.Time
}

// NewMemoryStore returns an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]domain.User),
		notes: make(map[string]domain.Note),
		now:   time.Now,
	}
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memView{s}.ListUsers(ctx)
}

func (s *MemoryStore) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memView{s}.FindUserByUsername(ctx, username)
}

func (s *MemoryStore) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memView{s}.FindUserByID(ctx, id)
}

func (s *MemoryStore) InsertUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memView{s}.InsertUser(ctx, user)
}

func (s *MemoryStore) SaveUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memView{s}.SaveUser(ctx, user)
}

func (s *MemoryStore) DeleteUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memView{s}.DeleteUser(ctx, user)
}

func (s *MemoryStore) FindNoteByUser(ctx context.Context, userID string) (*domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memView{s}.FindNoteByUser(ctx, userID)
}

// InsertNote adds a note. The referenced user must exist.
func (s *MemoryStore) InsertNote(_ context.Context, note *domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[note.UserID]; !ok {
		return ErrNotFound // Foreign key to users.id
	}
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	now := s.now()
	note.CreatedAt, note.UpdatedAt = now, now
	stored := *note
	stored.User = nil // Relation is queried, never stored
	s.notes[note.ID] = stored
	return nil
}

// WithTx holds the store lock for the duration of fn and restores the
// previous contents if fn fails.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make(map[string]domain.User, len(s.users)) // Snapshot for rollback
	for k, v := range s.users {
		users[k] = v
	}
	notes := make(map[string]domain.Note, len(s.notes))
	for k, v := range s.notes {
		notes[k] = v
	}

	if err := fn(memView{s}); err != nil {
		s.users, s.notes = users, notes // Roll back
		return err
	}
	return nil
}

// memView does the work of MemoryStore with the lock already held
type memView struct {
	s *MemoryStore
}

func (v memView) ListUsers(context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0, len(v.s.users))
	for _, u := range v.s.users {
		u.Password = "" // Projection excludes the hash
		u.Roles = slices.Clone(u.Roles)
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (v memView) FindUserByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range v.s.users {
		if u.Username == username { // Case-sensitive like utf8mb4_bin
			u.Roles = slices.Clone(u.Roles)
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (v memView) FindUserByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := v.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Roles = slices.Clone(u.Roles)
	return &u, nil
}

func (v memView) InsertUser(_ context.Context, user *domain.User) error {
	if v.usernameTaken(user.Username, "") {
		return ErrDuplicate
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if _, ok := v.s.users[user.ID]; ok {
		return ErrDuplicate // Primary key clash
	}
	now := v.s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	stored := *user
	stored.Roles = slices.Clone(user.Roles)
	v.s.users[user.ID] = stored
	return nil
}

func (v memView) SaveUser(_ context.Context, user *domain.User) error {
	existing, ok := v.s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	if v.usernameTaken(user.Username, user.ID) {
		return ErrDuplicate
	}
	user.CreatedAt = existing.CreatedAt // Never overwritten
	user.UpdatedAt = v.s.now()
	stored := *user
	stored.Roles = slices.Clone(user.Roles)
	v.s.users[user.ID] = stored
	return nil
}

func (v memView) DeleteUser(_ context.Context, user *domain.User) error {
	if _, ok := v.s.users[user.ID]; !ok {
		return ErrNotFound
	}
	for _, n := range v.s.notes {
		if n.UserID == user.ID {
			return ErrReferenced // ON DELETE RESTRICT
		}
	}
	delete(v.s.users, user.ID)
	return nil
}

func (v memView) FindNoteByUser(_ context.Context, userID string) (*domain.Note, error) {
	for _, n := range v.s.notes {
		if n.UserID == userID {
			return &n, nil
		}
	}
	return nil, ErrNotFound
}

func (v memView) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return fn(v) // Already inside a transaction
}

func (v memView) usernameTaken(username, exceptID string) bool {
	for id, u := range v.s.users {
		if u.Username == username && id != exceptID {
			return true
		}
	}
	return false
}
