package pakgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pakgo/format"
	"github.com/hupe1980/pakgo/index"
	"github.com/hupe1980/pakgo/value"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("not found")

	// ErrBuilderFinalized is returned when a Builder is used after finalize.
	ErrBuilderFinalized = errors.New("builder already finalized")

	// ErrReaderClosed is returned when a Reader is used after Close.
	ErrReaderClosed = errors.New("reader is closed")
)

// BuildError indicates a failure while packing records or finalizing an
// artifact. No partial artifact is left behind.
//
// The original underlying error can be accessed via errors.Unwrap.
type BuildError struct {
	Op    string // "pak", "set_meta" or "finalize"
	cause error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build failed during %s: %v", e.Op, e.cause)
}

func (e *BuildError) Unwrap() error { return e.cause }

// FormatError indicates an artifact that violates the binary layout: bad
// magic, unsupported version, truncation or inconsistent sections.
//
// The original underlying error can be accessed via errors.Unwrap.
type FormatError struct {
	cause error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid artifact: %v", e.cause)
}

func (e *FormatError) Unwrap() error { return e.cause }

// TypeMismatchError indicates a type conflict: a pointer retrieved as the
// wrong record type, or an index key receiving values of more than one kind.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type TypeMismatchError struct {
	Key   string // index key, when the conflict is between attribute kinds
	Want  string
	Got   string
	cause error
}

func (e *TypeMismatchError) Error() string {
	if e.Want == "" && e.cause != nil {
		return e.cause.Error()
	}
	if e.Key != "" {
		return fmt.Sprintf("type mismatch on key %q: want %s, got %s", e.Key, e.Want, e.Got)
	}
	return fmt.Sprintf("type mismatch: want %s, got %s", e.Want, e.Got)
}

func (e *TypeMismatchError) Unwrap() error { return e.cause }

// EncodeError indicates that a record failed to serialize.
//
// The original underlying error can be accessed via errors.Unwrap.
type EncodeError struct {
	Type  string
	cause error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Type, e.cause)
}

func (e *EncodeError) Unwrap() error { return e.cause }

// DecodeError indicates that a record's bytes failed to deserialize.
//
// The original underlying error can be accessed via errors.Unwrap.
type DecodeError struct {
	Type  string
	cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Type, e.cause)
}

func (e *DecodeError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Already translated further down the call chain.
	var fe *FormatError
	var tm *TypeMismatchError
	if errors.As(err, &fe) || errors.As(err, &tm) {
		return err
	}

	// Artifact integrity violations.
	if errors.Is(err, format.ErrInvalidMagic) ||
		errors.Is(err, format.ErrInvalidVersion) ||
		errors.Is(err, format.ErrTruncated) ||
		errors.Is(err, format.ErrCorrupted) ||
		errors.Is(err, index.ErrInvalidRun) ||
		errors.Is(err, value.ErrShortBuffer) ||
		errors.Is(err, value.ErrTrailingBytes) ||
		errors.Is(err, value.ErrInvalidKind) {
		return &FormatError{cause: err}
	}

	// Kind conflicts surfaced by index lookups.
	if errors.Is(err, index.ErrKindMismatch) {
		return &TypeMismatchError{cause: err}
	}

	return err
}
