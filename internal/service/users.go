// Package service holds the user lifecycle manager: every mutation of a user
// record goes through UserManager, which enforces unique usernames, password
// hashing and the rule that users referenced by notes cannot be deleted.
package service

import (
	"context"
	"errors"
	"fmt"

	"notes_system/internal/domain"
	"notes_system/internal/events"
	"notes_system/internal/store"
	"notes_system/internal/utils"

	"github.com/go-playground/validator/v10" // Struct validation
	"github.com/sirupsen/logrus"             // Structured logging
)

// Messages returned to callers
const (
	MsgFieldsRequired    = "All fields are required"
	MsgIDRequired        = "user ID is required"
	MsgNoUsers           = "No users found"
	MsgUserNotFound      = "user not found"
	MsgUsernameTaken     = "Username already taken. choose a different one"
	MsgDuplicateUsername = "Duplicate username"
	MsgHasNotes          = "user has notes assigned to them"
	MsgUserCreated       = "New user is created"
	MsgPasswordTooLong   = "Password must be at most 72 bytes"
)

// CreateUserInput is the payload of a create request
type CreateUserInput struct {
	Username string   `json:"username" validate:"required,max=191"` // Fits the users.username column
	Password string   `json:"password" validate:"required"`
	Roles    []string `json:"roles" validate:"required,min=1,dive,required"`
}

// UpdateUserInput is the payload of an update request. Every field except
// Password must be supplied; an empty Password keeps the stored hash.
type UpdateUserInput struct {
	ID       string   `json:"id" validate:"required"`
	Username string   `json:"username" validate:"required,max=191"` // Fits the users.username column
	Roles    []string `json:"roles" validate:"required,min=1,dive,required"`
	Active   *bool    `json:"active" validate:"required"`
	Password string   `json:"password"`
}

// DeleteUserInput is the payload of a delete request
type DeleteUserInput struct {
	ID string `json:"id" validate:"required"`
}

// UserManager mediates all user mutations. It keeps no state between calls;
// every operation re-reads what it needs from the store.
type UserManager struct {
	store     store.Store
	hasher    utils.Hasher
	publisher events.Publisher
	validate  *validator.Validate
	log       *logrus.Logger
}

// NewUserManager builds a manager. A nil publisher disables events and a nil
// logger falls back to the logrus standard logger.
func NewUserManager(st store.Store, hasher utils.Hasher, pub events.Publisher, log *logrus.Logger) *UserManager {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &UserManager{
		store:     st,
		hasher:    hasher,
		publisher: pub,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		log:       log,
	}
}

// List returns every user without credentials. An empty collection is
// reported as a NotFoundError.
func (m *UserManager) List(ctx context.Context) ([]domain.User, error) {
	users, err := m.store.ListUsers(ctx) // Projection without password
	if err != nil {
		return nil, err // Store failure
	}
	if len(users) == 0 {
		return nil, domain.NewNotFoundError(MsgNoUsers) // Empty collection is reported as missing
	}
	return users, nil
}

// Create registers a new active user and returns a confirmation message.
func (m *UserManager) Create(ctx context.Context, in CreateUserInput) (string, error) {
	if err := m.check(in, MsgFieldsRequired); err != nil {
		return "", err // Nothing is read before the input is valid
	}

	var user *domain.User
	err := m.store.WithTx(ctx, func(tx store.Store) error {
		// Check for duplicates
		_, err := tx.FindUserByUsername(ctx, in.Username)
		switch {
		case err == nil:
			return domain.NewConflictError(domain.ConflictDuplicateUsername, MsgUsernameTaken)
		case !errors.Is(err, store.ErrNotFound):
			return err // Store failure
		}

		hash, err := m.hash(in.Password) // Hash the password
		if err != nil {
			return err
		}
		user = &domain.User{
			Username: in.Username, // Unique username
			Password: hash,        // Never the plaintext
			Roles:    in.Roles,    // At least one role
			Active:   true,        // New users start active
		}
		if err := tx.InsertUser(ctx, user); err != nil {
			// The unique index catches a concurrent create that passed the check
			if errors.Is(err, store.ErrDuplicate) {
				return domain.NewConflictError(domain.ConflictDuplicateUsername, MsgUsernameTaken)
			}
			return err
		}
		return nil // Commit
	})
	if err != nil {
		return "", err
	}

	m.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username, "roles": user.Roles}).Info("User created")
	m.publish(ctx, events.UserCreated, user)
	return MsgUserCreated, nil
}

// Update overwrites username, roles and active of an existing user, and the
// password hash when a new password is supplied.
func (m *UserManager) Update(ctx context.Context, in UpdateUserInput) (string, error) {
	if err := m.check(in, MsgFieldsRequired); err != nil {
		return "", err // Nothing is read before the input is valid
	}

	var user *domain.User
	err := m.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		user, err = tx.FindUserByID(ctx, in.ID) // Load the record to overwrite
		if errors.Is(err, store.ErrNotFound) {
			return domain.NewNotFoundError(MsgUserNotFound)
		} else if err != nil {
			return err // Store failure
		}

		// A user may keep its own username
		dup, err := tx.FindUserByUsername(ctx, in.Username)
		switch {
		case err == nil && dup.ID != user.ID:
			return domain.NewConflictError(domain.ConflictDuplicateUsername, MsgDuplicateUsername)
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return err // Store failure
		}

		user.Username = in.Username // Overwritten unconditionally
		user.Roles = in.Roles       // Overwritten unconditionally
		user.Active = *in.Active    // Overwritten unconditionally
		if in.Password != "" {
			// Only a supplied password replaces the stored hash
			if user.Password, err = m.hash(in.Password); err != nil {
				return err
			}
		}

		if err := tx.SaveUser(ctx, user); err != nil {
			// The unique index catches a concurrent rename that passed the check
			if errors.Is(err, store.ErrDuplicate) {
				return domain.NewConflictError(domain.ConflictDuplicateUsername, MsgDuplicateUsername)
			}
			return err
		}
		return nil // Commit
	})
	if err != nil {
		return "", err
	}

	m.log.WithFields(logrus.Fields{
		"user_id":          user.ID,
		"username":         user.Username,
		"active":           user.Active,
		"password_changed": in.Password != "",
	}).Info("User updated")
	m.publish(ctx, events.UserUpdated, user)
	return fmt.Sprintf("%s updated", user.Username), nil
}

// Delete removes a user that no note refers to.
func (m *UserManager) Delete(ctx context.Context, in DeleteUserInput) (string, error) {
	if err := m.check(in, MsgIDRequired); err != nil {
		return "", err // Nothing is read before the input is valid
	}

	var user *domain.User
	err := m.store.WithTx(ctx, func(tx store.Store) error {
		// Don't delete users that have notes assigned
		_, err := tx.FindNoteByUser(ctx, in.ID)
		switch {
		case err == nil:
			return domain.NewConflictError(domain.ConflictHasNotes, MsgHasNotes)
		case !errors.Is(err, store.ErrNotFound):
			return err // Store failure
		}

		user, err = tx.FindUserByID(ctx, in.ID) // Keep the record for the reply
		if errors.Is(err, store.ErrNotFound) {
			return domain.NewNotFoundError(MsgUserNotFound)
		} else if err != nil {
			return err // Store failure
		}

		switch err := tx.DeleteUser(ctx, user); {
		case errors.Is(err, store.ErrReferenced):
			return domain.NewConflictError(domain.ConflictHasNotes, MsgHasNotes) // A note arrived after the check
		case errors.Is(err, store.ErrNotFound):
			return domain.NewNotFoundError(MsgUserNotFound) // Deleted concurrently
		default:
			return err // Nil commits
		}
	})
	if err != nil {
		return "", err
	}

	m.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User deleted")
	m.publish(ctx, events.UserDeleted, user)
	return fmt.Sprintf("username %s with id %s is deleted", user.Username, user.ID), nil
}

// check validates in and reports any failure as a ValidationError with msg
func (m *UserManager) check(in any, msg string) error {
	if err := m.validate.Struct(in); err != nil {
		m.log.WithField("error", err.Error()).Debug("Rejected user request")
		return domain.NewValidationError(msg)
	}
	return nil
}

// hash runs the hasher, reporting passwords bcrypt cannot take as a
// ValidationError
func (m *UserManager) hash(plain string) (string, error) {
	hash, err := m.hasher.Hash(plain)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return "", domain.NewValidationError(MsgPasswordTooLong)
	}
	return hash, err
}

// publish sends an event; delivery failures are logged and not returned
func (m *UserManager) publish(ctx context.Context, typ string, user *domain.User) {
	if err := m.publisher.Publish(ctx, events.NewUserEvent(typ, user)); err != nil {
		m.log.WithFields(logrus.Fields{
			"user_id": user.ID,
			"event":   typ,
			"error":   err.Error(),
		}).Warn("Failed to publish user event")
	}
}
