package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
)

// DefaultListenTimeout bounds one ListenOnce call when the caller passes 0.
const DefaultListenTimeout = 10 * time.Second

// Silence handling: empty chunks tolerated before anyone speaks, and
// after speech has started.
const (
	graceEmpty      = 4
	postSpeechEmpty = 2
)

// transcribeGrace is added to the chunk length when waiting for whisper.
const transcribeGrace = 20 * time.Second

// mouthPoll is how often the ear checks whether playback has stopped.
const mouthPoll = 20 * time.Millisecond

// envAnnotation matches whisper environmental annotations like
// "(keyboard clicking)", "[laughter]", "(speaking French)", etc.
var envAnnotation = regexp.MustCompile(`[\(\[][a-zA-Z][a-zA-Z_\s]*[\)\]]`)

// recordFunc records for d and returns the raw transcription.
type recordFunc func(ctx context.Context, d time.Duration) (string, error)

// EarOption configures the Ear.
type EarOption func(*Ear)

// WithRecordDuration sets how long each recording chunk lasts.
func WithRecordDuration(d time.Duration) EarOption {
	return func(e *Ear) { e.recordDuration = d }
}

// WithTempDir sets the directory for temporary WAV files.
func WithTempDir(dir string) EarOption {
	return func(e *Ear) { e.tempDir = dir }
}

// WithMouth makes the ear silence the mouth before listening.
func WithMouth(m *Mouth) EarOption {
	return func(e *Ear) { e.mouth = m }
}

// Ear captures one utterance from the microphone and transcribes it with
// a local Whisper model.
type Ear struct {
	whisperBin     string
	modelPath      string
	tempDir        string
	recordDuration time.Duration
	log            *logger.Logger
	mouth          *Mouth
	record         recordFunc

	mu sync.Mutex // one capture at a time
}

var _ domain.Listener = (*Ear)(nil)

// NewEar creates a push-to-talk listener.
//
//   - whisperBin: path to the whisper-cli executable
//   - modelPath:  path to the GGML model file
func NewEar(whisperBin, modelPath string, log *logger.Logger, opts ...EarOption) (*Ear, error) {
	if _, err := exec.LookPath(whisperBin); err != nil {
		return nil, fmt.Errorf("%w: whisper binary %q not found: %v", domain.ErrSpeechUnavailable, whisperBin, err)
	}
	e := newEar(whisperBin, modelPath, log, opts...)
	e.record = e.recordChunk
	return e, nil
}

func newEar(whisperBin, modelPath string, log *logger.Logger, opts ...EarOption) *Ear {
	e := &Ear{
		whisperBin:     whisperBin,
		modelPath:      modelPath,
		tempDir:        ".saathi-stt",
		recordDuration: 2 * time.Second,
		log:            log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ListenOnce records until the speaker falls silent or timeout elapses and
// returns what was said. Errors: domain.ErrListenTimeout when nothing was
// heard, domain.ErrUnrecognized when only noise was heard, and
// domain.ErrSpeechUnavailable when recording itself fails.
func (e *Ear) ListenOnce(ctx context.Context, timeout time.Duration) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if timeout <= 0 {
		timeout = DefaultListenTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if e.mouth != nil {
		e.mouth.Interrupt()
		e.waitForMouth(ctx)
	}

	e.log.Info("ear: listening (timeout=%s)", timeout)

	var parts []string
	heardNoise := false
	emptyRuns := 0
	for ctx.Err() == nil {
		raw, err := e.record(ctx, e.recordDuration)
		if err != nil {
			if errors.Is(err, domain.ErrSpeechUnavailable) {
				return "", err
			}
			e.log.Warn("ear: chunk failed: %v", err)
			break
		}

		chunk := cleanTranscription(raw)
		if chunk == "" {
			if strings.TrimSpace(raw) != "" {
				heardNoise = true
			}
			emptyRuns++
			limit := graceEmpty
			if len(parts) > 0 {
				limit = postSpeechEmpty
			}
			if emptyRuns >= limit {
				e.log.Debug("ear: silence detected (heard_speech=%v)", len(parts) > 0)
				break
			}
			continue
		}

		emptyRuns = 0
		e.log.Debug("ear: chunk %q", chunk)
		parts = append(parts, chunk)
	}

	combined := strings.TrimSpace(strings.Join(parts, " "))
	switch {
	case combined != "":
		e.log.Info("ear: heard %q", combined)
		return combined, nil
	case heardNoise:
		return "", domain.ErrUnrecognized
	default:
		return "", domain.ErrListenTimeout
	}
}

// waitForMouth blocks until the mouth has stopped playing so the
// microphone does not pick up the assistant's own voice.
func (e *Ear) waitForMouth(ctx context.Context) {
	if !e.mouth.IsSpeaking() {
		return
	}
	e.log.Debug("ear: waiting for playback to stop")
	ticker := time.NewTicker(mouthPoll)
	defer ticker.Stop()
	for e.mouth.IsSpeaking() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// recordChunk records one clip through whisper and waits for its text.
func (e *Ear) recordChunk(ctx context.Context, duration time.Duration) (string, error) {
	textCh := make(chan string, 1)
	callback := func(text string) {
		select {
		case textCh <- text:
		default:
		}
	}

	verbose := e.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(
		e.whisperBin,
		e.modelPath,
		e.tempDir,
		"wav",
		callback,
		verbose,
	)
	if err != nil {
		return "", fmt.Errorf("%w: transcriber init: %v", domain.ErrSpeechUnavailable, err)
	}
	if err := t.Start(); err != nil {
		return "", fmt.Errorf("%w: recording start: %v", domain.ErrSpeechUnavailable, err)
	}

	select {
	case <-time.After(duration):
	case <-ctx.Done():
	}
	t.Stop()

	return awaitTranscript(ctx, textCh, duration+transcribeGrace)
}

// awaitTranscript waits for the transcription that whisper produces after
// Stop. It gives up after grace or when ctx ends.
func awaitTranscript(ctx context.Context, textCh <-chan string, grace time.Duration) (string, error) {
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case text := <-textCh:
		return text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", errors.New("transcription did not finish")
	}
}

// junkPatterns are whisper placeholders for non-speech audio.
var junkPatterns = []string{
	"[BLANK_AUDIO]",
	"[BLANK AUDIO]",
	"(silence)",
	"[silence]",
	"(no speech)",
	"[no speech]",
	"[Music]",
	"(music)",
	"(inaudible)",
	"(unintelligible)",
	"(background noise)",
	"(static)",
}

// cleanTranscription strips whisper artefacts and collapses whitespace.
// It returns "" when nothing but noise markers remain.
func cleanTranscription(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)

	for _, j := range junkPatterns {
		s = strings.ReplaceAll(s, j, "")
		s = strings.ReplaceAll(s, strings.ToLower(j), "")
		s = strings.ReplaceAll(s, strings.ToUpper(j), "")
	}
	s = envAnnotation.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")

	if isJustPunctuation(s) {
		return ""
	}
	return s
}

func isJustPunctuation(s string) bool {
	for _, r := range s {
		if r != ' ' && r != ',' && r != '.' && r != '!' && r != '?' && r != '-' {
			return false
		}
	}
	return true
}
