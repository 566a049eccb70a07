package models

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("models: not found")
	ErrDuplicate          = errors.New("models: already exists")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
)

// ValidationError lists every problem found in one input.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "models: invalid input: " + strings.Join(e.Messages, "; ")
}

func invalid(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// AsValidationError finds a ValidationError in err's chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// writeError turns a unique violation into ErrDuplicate; the driver error is
// kept as secondary detail for logs.
func writeError(err error, what string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return errors.WithSecondaryError(errors.Wrap(ErrDuplicate, what), err)
	}
	return errors.Wrap(err, what)
}
