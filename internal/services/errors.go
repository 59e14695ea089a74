package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Error kinds surfaced by the service layer. Handlers translate them to HTTP
// statuses; nothing below the handlers renders user-visible text.
var (
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrLocationInUse marks a storage-location delete refused because
	// inventory records still reference it.
	ErrLocationInUse = errors.New("storage location is still in use")
)

// ValidationError reports one violated input precondition. CreateRecord
// returns the full list so a form can render every violation at once.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PersistenceError wraps a failed call to the persistence collaborator. The
// local snapshot is never mutated when one of these is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// wrapRepoError maps a repository failure onto the service error taxonomy:
// pgx's no-rows becomes ErrNotFound, anything else a PersistenceError.
func wrapRepoError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return &PersistenceError{Op: op, Err: err}
}
