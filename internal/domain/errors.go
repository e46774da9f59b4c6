package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across layers.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrBackend         = errors.New("language backend failed")
	ErrBackendDisabled = errors.New("language backend disabled")
	ErrEmptyReply      = errors.New("empty reply")

	// Speech capture failures.
	ErrListenTimeout     = errors.New("listen timed out")
	ErrUnrecognized      = errors.New("speech not recognized")
	ErrSpeechUnavailable = errors.New("speech service unavailable")

	ErrTranslationUnavailable = errors.New("translation unavailable")
)

// BackendError is returned by every LanguageBackend failure. It matches
// ErrBackend under errors.Is and unwraps to the underlying cause.
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Is reports ErrBackend as a match so callers need not know the concrete type.
func (e *BackendError) Is(target error) bool { return target == ErrBackend }
