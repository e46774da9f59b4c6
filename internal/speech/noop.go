// Package speech provides text-to-speech output and one-shot
// speech-to-text capture for the terminal front-end.
package speech

import (
	"context"
	"time"

	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.Speaker  = (*NoOp)(nil)
	_ domain.Listener = (*NoOp)(nil)
)

// NoOp is a speech provider that does nothing. Used when speech is off.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a no-op speech provider.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// ListenOnce always reports that no microphone pipeline is configured.
func (n *NoOp) ListenOnce(context.Context, time.Duration) (string, error) {
	return "", domain.ErrSpeechUnavailable
}

// Speak only logs.
func (n *NoOp) Speak(_ context.Context, text string) error {
	n.log.Debug("speech no-op: would say %q", text)
	return nil
}
