package domain

import (
	"context"
	"time"
)

// LanguageBackend is a conversational model the responder can delegate to.
// Implementations keep the multi-turn history for the session themselves.
// Every failure is reported as a *BackendError.
type LanguageBackend interface {
	Name() string
	Enabled() bool
	Send(ctx context.Context, message string) (string, error)
}

// SessionStore keeps sessions for the lifetime of the process.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Session, error)
}

// Notifier delivers messages to the user. Implementations can write to
// stdout or also speak them.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// Speaker turns text into audible speech. Speak blocks until playback ends.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Listener captures a single utterance and returns its transcription.
// Failures are ErrListenTimeout, ErrUnrecognized or ErrSpeechUnavailable.
type Listener interface {
	ListenOnce(ctx context.Context, timeout time.Duration) (string, error)
}

// Translator translates text between two BCP-47 language tags.
// from may be "auto".
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}
