package speech

import (
	"context"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*SpeakingNotifier)(nil)

// SpeakingNotifier prints through a text notifier and, while enabled,
// also queues the message on the Mouth.
type SpeakingNotifier struct {
	text    domain.Notifier
	mouth   *Mouth
	log     *logger.Logger
	enabled atomic.Bool
}

// NewSpeakingNotifier creates a notifier that both prints and speaks.
func NewSpeakingNotifier(text domain.Notifier, mouth *Mouth, enabled bool, log *logger.Logger) *SpeakingNotifier {
	n := &SpeakingNotifier{
		text:  text,
		mouth: mouth,
		log:   log,
	}
	n.enabled.Store(enabled)
	return n
}

// Enabled reports whether messages are spoken.
func (n *SpeakingNotifier) Enabled() bool { return n.enabled.Load() }

// Toggle flips speaking on or off and returns the new state. Turning it
// off also silences anything queued.
func (n *SpeakingNotifier) Toggle() bool {
	for {
		old := n.enabled.Load()
		if n.enabled.CompareAndSwap(old, !old) {
			if old {
				n.mouth.Interrupt()
			}
			n.log.Info("speech %s", onOff(!old))
			return !old
		}
	}
}

// Notify prints the message and queues it for speech at normal priority.
func (n *SpeakingNotifier) Notify(ctx context.Context, message string) error {
	if err := n.text.Notify(ctx, message); err != nil {
		return err
	}
	if n.Enabled() {
		n.mouth.Say(cleanForSpeech(message), PriorityNormal)
	}
	return nil
}

// NotifyUrgent prints the message and queues it for speech at high priority.
func (n *SpeakingNotifier) NotifyUrgent(ctx context.Context, message string) error {
	if err := n.text.NotifyUrgent(ctx, message); err != nil {
		return err
	}
	if n.Enabled() {
		n.mouth.Say(cleanForSpeech(message), PriorityHigh)
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

var (
	bracketPrefix = regexp.MustCompile(`^\[[A-Za-z]+\]\s*`)
	ansiCodes     = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	listBullet    = regexp.MustCompile(`(?m)^\s*[-*]\s+`)
)

// cleanForSpeech strips formatting that shouldn't be read aloud: colour
// codes, "[Tag]" prefixes and list bullets.
func cleanForSpeech(msg string) string {
	cleaned := ansiCodes.ReplaceAllString(msg, "")
	cleaned = bracketPrefix.ReplaceAllString(cleaned, "")
	cleaned = listBullet.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, "**", "")
	return strings.TrimSpace(cleaned)
}
