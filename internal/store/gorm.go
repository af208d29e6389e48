package store

import (
	"context"
	"errors"
	"fmt"

	"notes_system/internal/domain"

	"github.com/google/uuid" // Identifier generation
	"gorm.io/gorm"           // GORM ORM library
	"gorm.io/gorm/clause"    // Locking clauses
)

// GormStore implements Store on top of a gorm connection. The connection
// must be opened with TranslateError so constraint violations surface as
// gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
type GormStore struct {
	db     *gorm.DB
	locked bool // Set inside WithTx, lookups take row locks
}

// NewGormStore wraps db
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) query(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx)
	if s.locked {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"}) // SELECT ... FOR UPDATE
	}
	return q
}

func (s *GormStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	// Omit the password column from the projection
	if err := s.db.WithContext(ctx).Omit("password").Order("created_at").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *GormStore) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	// Never locked: FOR UPDATE on a missing username takes a gap lock that
	// deadlocks concurrent creates. The unique index guards the insert.
	if err := s.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, translate(err, "find user by username")
	}
	return &user, nil
}

func (s *GormStore) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := s.query(ctx).Where("id = ?", id).Take(&user).Error; err != nil { // Locks the row inside WithTx
		return nil, translate(err, "find user by id")
	}
	return &user, nil
}

func (s *GormStore) InsertUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString() // Store assigns the ID
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err, "insert user") // 1062 becomes ErrDuplicate
	}
	return nil
}

func (s *GormStore) SaveUser(ctx context.Context, user *domain.User) error {
	// Select("*") writes zero values too, so active=false is persisted
	res := s.db.WithContext(ctx).Model(user).Select("*").Omit("created_at").Updates(user)
	if res.Error != nil {
		return translate(res.Error, "save user")
	}
	return nil
}

func (s *GormStore) DeleteUser(ctx context.Context, user *domain.User) error {
	res := s.db.WithContext(ctx).Delete(&domain.User{}, "id = ?", user.ID)
	if res.Error != nil {
		return translate(res.Error, "delete user")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound // Deleted by someone else
	}
	return nil
}

func (s *GormStore) FindNoteByUser(ctx context.Context, userID string) (*domain.Note, error) {
	var note domain.Note
	if err := s.query(ctx).Where("user_id = ?", userID).Take(&note).Error; err != nil {
		return nil, translate(err, "find note by user")
	}
	return &note, nil
}

func (s *GormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, locked: true}) // Commit on nil, rollback on error
	})
}

// translate maps gorm errors onto the store sentinels
func translate(err error, op string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrReferenced
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
