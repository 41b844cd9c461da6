package errors

import (
	"errors"
	"fmt"
)

// Custom error types for the link shortener application.
// The boundary layer maps each of these to an HTTP status; none of them
// is retried by the core itself.

// ErrSlugNotFound is returned when a slug doesn't exist in the registry.
var ErrSlugNotFound = errors.New("slug not found")

// ErrSlugAlreadyExists is returned when a create collides with an
// existing slug. The storage unique key is the source of truth for this,
// not the pre-insert existence check.
var ErrSlugAlreadyExists = errors.New("slug already exists")

// ErrInvalidCharacter is returned when a slug contains a character
// outside the a-z0-9 alphabet.
var ErrInvalidCharacter = errors.New("slug contains invalid characters, only a-z and 0-9 are allowed")

// ErrInvalidLength is returned when a slug length is out of the configured bounds.
var ErrInvalidLength = errors.New("slug length is out of bounds")

// ErrSlugReserved is returned when a user-supplied slug collides with a
// route segment of the HTTP surface.
var ErrSlugReserved = errors.New("slug is reserved")

// ErrInvalidDestination is returned when the destination URL is empty or malformed.
var ErrInvalidDestination = errors.New("invalid destination URL")

// ErrExhaustedSlugSpace is returned when the generator gives up finding a
// free slug after its retry cap.
var ErrExhaustedSlugSpace = errors.New("exhausted attempts to generate a unique slug")

// IsInvalidSlug reports whether err belongs to the invalid-slug class
// (bad character, bad length, or reserved name).
func IsInvalidSlug(err error) bool {
	return errors.Is(err, ErrInvalidCharacter) ||
		errors.Is(err, ErrInvalidLength) ||
		errors.Is(err, ErrSlugReserved)
}

// ErrClickRecordingFailed is returned when persisting a click fails.
// It never escalates past the worker pool.
type ErrClickRecordingFailed struct {
	Slug   string
	Reason string
}

func (e ErrClickRecordingFailed) Error() string {
	return fmt.Sprintf("failed to record click for slug %q: %s", e.Slug, e.Reason)
}
