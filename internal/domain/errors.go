package domain

// ValidationError reports missing or malformed input. The caller must fix the
// request before retrying.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports that a referenced record does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ConflictReason tells apart the invariants a ConflictError can guard
type ConflictReason int

const (
	ConflictDuplicateUsername ConflictReason = iota + 1 // Username already held by another user
	ConflictHasNotes                                    // User is still referenced by notes
)

// ConflictError reports a uniqueness or referential violation.
type ConflictError struct {
	Reason  ConflictReason
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NewValidationError returns a ValidationError with msg
func NewValidationError(msg string) error { return &ValidationError{Message: msg} }

// NewNotFoundError returns a NotFoundError with msg
func NewNotFoundError(msg string) error { return &NotFoundError{Message: msg} }

// NewConflictError returns a ConflictError with the given reason and msg
func NewConflictError(reason ConflictReason, msg string) error {
	return &ConflictError{Reason: reason, Message: msg}
}
