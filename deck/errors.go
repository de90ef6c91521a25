package deck

import (
	"errors"
	"fmt"
)

// Sentinel errors for the deck package.
// Use errors.Is to check: errors.Is(err, deck.ErrIndexOutOfRange)
var (
	ErrInvalidConfig     = errors.New("deck: invalid configuration")
	ErrStorage           = errors.New("deck: storage failure")
	ErrIndexOutOfRange   = errors.New("deck: index out of range")
	ErrNoOutstandingFact = errors.New("deck: no outstanding fact")
	ErrFactNotFound      = errors.New("deck: fact not found")
	ErrShutdown          = errors.New("deck: shut down")
)

// StorageError carries a backend failure unchanged. errors.Is(err,
// ErrStorage) matches any StorageError; errors.Is/As also see the cause.
type StorageError struct {
	Dialect string // backend name, empty when unknown
	Op      string // "read", "write" or "exit"
	Err     error
}

func (e *StorageError) Error() string {
	if e.Dialect == "" {
		return fmt.Sprintf("deck: storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("deck: storage %s (%s): %v", e.Op, e.Dialect, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// storageError wraps err unless it already is a *StorageError.
func storageError(dialect, op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Dialect: dialect, Op: op, Err: err}
}
