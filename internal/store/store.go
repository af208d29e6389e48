// Package store is the document store client used by the user lifecycle
// manager. It exposes the users and notes collections through a small
// find/insert/save/delete interface with a MySQL (gorm) and an in-memory
// implementation.
package store

import (
	"context"
	"errors"

	"notes_system/internal/domain"
)

var (
	// ErrNotFound is returned when no record matches the lookup
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate is returned when a write violates a unique constraint
	ErrDuplicate = errors.New("store: duplicate key")
	// ErrReferenced is returned when a delete violates a foreign key
	ErrReferenced = errors.New("store: record is still referenced")
)

// Store gives access to the users and notes collections.
type Store interface {
	// ListUsers returns every user without the password field
	ListUsers(ctx context.Context) ([]domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindUserByID(ctx context.Context, id string) (*domain.User, error)
	// InsertUser persists a new user and assigns its ID
	InsertUser(ctx context.Context, user *domain.User) error
	// SaveUser overwrites every field of an existing user
	SaveUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, user *domain.User) error
	// FindNoteByUser returns any one note referencing userID
	FindNoteByUser(ctx context.Context, userID string) (*domain.Note, error)
	// WithTx runs fn against a transactional view of the store. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}
