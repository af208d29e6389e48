package service

import (
	"context"
	"errors"

	"notes_system/internal/domain"
	"notes_system/internal/store"
)

var (
	// ErrInvalidCredentials is returned for an unknown username or wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveUser is returned when the account has been deactivated
	ErrInactiveUser = errors.New("user is inactive")
)

// Authenticate checks a username and password against the stored hash.
func (m *UserManager) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.NewValidationError(MsgFieldsRequired)
	}
	user, err := m.store.FindUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, err
	}
	if err := m.hasher.Compare(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrInactiveUser
	}
	return user, nil
}
