package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/locale"
	"github.com/hammamikhairi/saathi/internal/logger"
)

// DefaultEspeakBin is looked up in PATH.
const DefaultEspeakBin = "espeak-ng"

// Espeak speaks through the espeak-ng command-line synthesizer. It needs
// no network or credentials, which makes it the offline fallback.
type Espeak struct {
	bin string
	log *logger.Logger
	run func(ctx context.Context, name string, args ...string) error

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ domain.Speaker = (*Espeak)(nil)

// NewEspeak creates an espeak-ng speaker. bin may be empty.
func NewEspeak(bin string, log *logger.Logger) (*Espeak, error) {
	if bin == "" {
		bin = DefaultEspeakBin
	}
	if _, err := exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("%w: %s not found: %v", domain.ErrSpeechUnavailable, bin, err)
	}
	return &Espeak{bin: bin, log: log, run: runCommand}, nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// espeakVoice maps text to an espeak-ng voice name.
func espeakVoice(text string) string {
	if locale.Detect(text) == locale.Marathi {
		return "mr"
	}
	return "en"
}

// Speak blocks until espeak-ng exits or Stop is called.
func (e *Espeak) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.cancel = nil
		e.mu.Unlock()
		cancel()
	}()

	voice := espeakVoice(text)
	e.log.Debug("espeak: %d chars voice=%s", len(text), voice)
	if err := e.run(ctx, e.bin, "-v", voice, "--", text); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%w: %v", domain.ErrSpeechUnavailable, err)
	}
	return nil
}

// Stop kills the running espeak-ng process, if any.
func (e *Espeak) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
