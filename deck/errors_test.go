package deck

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrorPrefix(t *testing.T) {
	for _, err := range []error{
		ErrInvalidConfig, ErrStorage, ErrIndexOutOfRange,
		ErrNoOutstandingFact, ErrFactNotFound, ErrShutdown,
	} {
		if !strings.HasPrefix(err.Error(), "deck: ") {
			t.Errorf("%q should start with \"deck: \"", err)
		}
	}
}

func TestStorageError(t *testing.T) {
	cause := errors.New("connection reset")
	err := storageError("postgres", "write", cause)

	if !errors.Is(err, ErrStorage) || !errors.Is(err, cause) {
		t.Errorf("errors.Is failed for %v", err)
	}
	if errors.Is(err, ErrIndexOutOfRange) {
		t.Error("StorageError matched an unrelated sentinel")
	}
	if got, want := err.Error(), "deck: storage write (postgres): connection reset"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	// Already wrapped errors are passed through.
	wrapped := fmt.Errorf("outer: %w", err)
	if again := storageError("sqlite", "read", wrapped); again != wrapped {
		t.Errorf("storageError rewrapped %v", wrapped)
	}
	if storageError("x", "read", nil) != nil {
		t.Error("nil cause should stay nil")
	}

	noDialect := &StorageError{Op: "read", Err: cause}
	if got := noDialect.Error(); got != "deck: storage read: connection reset" {
		t.Errorf("Error() = %q", got)
	}
}
