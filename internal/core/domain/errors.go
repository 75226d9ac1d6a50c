package domain

import (
	"errors"
	"fmt"
)

// Error kinds that cross the core boundary. Every extractor and client maps
// library-level failures into one of these; the raw cause stays wrapped
// underneath for logs and never reaches the caller verbatim.
var (
	// Upload gate failures.
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
	ErrEmptyFile       = errors.New("empty file")

	// Extraction pipeline failures.
	ErrExtractionFailed = errors.New("extraction failed")
	ErrInsufficientText = errors.New("insufficient text")

	// Completion/recognition service failures.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrRateLimited     = errors.New("rate limited")
	ErrBadRequest      = errors.New("bad request")
	ErrAPI             = errors.New("api error")

	// Model reply parsing failures.
	ErrTruncatedJSON = errors.New("truncated json")
	ErrInvalidJSON   = errors.New("invalid json")

	// Report validation failures.
	ErrMissingField = errors.New("missing field")
	ErrInvalidField = errors.New("invalid field")
	ErrOutOfRange   = errors.New("value out of range")
	ErrEmptySummary = errors.New("empty summary")

	ErrTemporary = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

// Failf builds a typed error carrying a caller-facing message.
func Failf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
