package contracts

import (
	"errors"
	"fmt"
)

// ⭐ SSOT: 도메인 에러 정의는 여기서만

var (
	// ErrNotFound is returned by lookups for a movie id that does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvariant marks an internal defect while building interval values.
	// It is never recoverable input; callers surface it as a server error.
	ErrInvariant = errors.New("invariant violation")
)

// ValidationError describes rejected input for a movie record
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err (or anything it wraps) is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invariantf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
