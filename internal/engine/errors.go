package engine

import (
	"errors"
	"fmt"

	"fitgap/internal/repo"
)

// Error kinds surfaced to callers. Every operation either returns its success
// shape or exactly one of these; the HTTP layer maps kinds to status codes.

// ValidationError marks malformed or missing caller input. Not retryable
// without fixing the input.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

// NotFoundError marks a reference to an absent requirement or engagement.
type NotFoundError struct {
	Msg string
}

func (e NotFoundError) Error() string { return e.Msg }

// ProviderError marks a failed completion call. The engine does not
// distinguish transport, auth or rate-limit sub-kinds and does not retry.
type ProviderError struct {
	Err error
}

func (e ProviderError) Error() string { return fmt.Sprintf("completion provider: %v", e.Err) }
func (e ProviderError) Unwrap() error { return e.Err }

// ExtractionError marks a completion response that did not contain the
// required structured payload.
type ExtractionError struct {
	Msg string
}

func (e ExtractionError) Error() string { return e.Msg }

// StoreError marks a failed persistence read or write on a primary path.
// Secondary writes are never surfaced as StoreError; they are logged and
// reported through the Saved flag on the result.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }
func (e StoreError) Unwrap() error { return e.Err }

// wrapStore converts a repo error to the engine taxonomy, keeping not-found
// distinct from genuine store failures.
func wrapStore(op string, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return NotFoundError{Msg: op + ": not found"}
	}
	return StoreError{Op: op, Err: err}
}
