package speech

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
)

// synthesizer turns text into WAV bytes; *AzureClient is the real one.
type synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

var _ synthesizer = (*AzureClient)(nil)

// SpeakerOption configures an AzureSpeaker.
type SpeakerOption func(*AzureSpeaker)

// WithVoice pins every utterance to one voice instead of picking per text.
func WithVoice(voice string) SpeakerOption {
	return func(s *AzureSpeaker) { s.voice = voice }
}

// WithChunkSize sets the approximate max character count per TTS request.
// Longer text is split at sentence boundaries and synthesized in parallel
// so playback doesn't stall between sentences.
func WithChunkSize(n int) SpeakerOption {
	return func(s *AzureSpeaker) { s.chunkSize = n }
}

// AzureSpeaker speaks through Azure TTS and the local audio device,
// caching synthesized audio.
type AzureSpeaker struct {
	tts       synthesizer
	player    audioOut
	cache     *AudioCache
	log       *logger.Logger
	voice     string // empty = VoiceFor(text)
	chunkSize int

	mu          sync.Mutex
	interrupted bool
}

var _ domain.Speaker = (*AzureSpeaker)(nil)

// NewAzureSpeaker wires a TTS client, a player and a cache together.
func NewAzureSpeaker(tts *AzureClient, player *Player, cache *AudioCache, log *logger.Logger, opts ...SpeakerOption) *AzureSpeaker {
	return newAzureSpeaker(tts, player, cache, log, opts...)
}

func newAzureSpeaker(tts synthesizer, player audioOut, cache *AudioCache, log *logger.Logger, opts ...SpeakerOption) *AzureSpeaker {
	s := &AzureSpeaker{
		tts:       tts,
		player:    player,
		cache:     cache,
		log:       log,
		chunkSize: 200,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Speak synthesizes and plays text, blocking until playback ends or Stop
// is called. Chunks that fail to synthesize are skipped.
func (s *AzureSpeaker) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	voice := s.voiceFor(text)

	s.mu.Lock()
	s.interrupted = false
	s.mu.Unlock()

	chunks := splitChunks(text, s.chunkSize)
	if len(chunks) == 1 {
		audio, err := s.synthesize(ctx, chunks[0], voice)
		if err != nil {
			return err
		}
		return s.player.Play(audio)
	}

	s.log.Debug("speaker: split into %d chunks for parallel synthesis", len(chunks))

	type result struct {
		idx   int
		audio []byte
		err   error
	}
	results := make(chan result, len(chunks))
	for i, chunk := range chunks {
		go func(idx int, text string) {
			audio, err := s.synthesize(ctx, text, voice)
			results <- result{idx: idx, audio: audio, err: err}
		}(i, chunk)
	}

	slots := make([][]byte, len(chunks))
	var firstErr error
	for range chunks {
		r := <-results
		if r.err != nil {
			s.log.Error("speaker: chunk %d synthesis failed: %v", r.idx, r.err)
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		slots[r.idx] = r.audio
	}

	played := 0
	for i, audio := range slots {
		if audio == nil {
			continue
		}
		if ctx.Err() != nil || s.isInterrupted() {
			s.log.Debug("speaker: aborting chunk playback")
			return ctx.Err()
		}
		if err := s.player.Play(audio); err != nil {
			s.log.Error("speaker: chunk %d playback failed: %v", i, err)
			continue
		}
		played++
	}
	if played == 0 && firstErr != nil {
		return firstErr
	}
	return nil
}

// Stop interrupts playback and abandons remaining chunks.
func (s *AzureSpeaker) Stop() {
	s.mu.Lock()
	s.interrupted = true
	s.mu.Unlock()
	s.player.Stop()
}

// Prefetch synthesizes texts in the background so a later Speak starts
// instantly. Already-cached chunks are skipped.
func (s *AzureSpeaker) Prefetch(ctx context.Context, texts ...string) {
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		voice := s.voiceFor(text)
		for _, chunk := range splitChunks(text, s.chunkSize) {
			if s.cache.Has(voice, chunk) {
				continue
			}
			go func(t string) {
				if _, err := s.synthesize(ctx, t, voice); err != nil {
					s.log.Error("prefetch: synthesis failed: %v", err)
				}
			}(chunk)
		}
	}
}

// Cache exposes the audio cache for stats.
func (s *AzureSpeaker) Cache() *AudioCache { return s.cache }

func (s *AzureSpeaker) voiceFor(text string) string {
	if s.voice != "" {
		return s.voice
	}
	return VoiceFor(text)
}

func (s *AzureSpeaker) isInterrupted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interrupted
}

// synthesize checks the cache first, otherwise calls Azure and stores the
// result.
func (s *AzureSpeaker) synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if audio, ok := s.cache.Get(voice, text); ok {
		return audio, nil
	}
	audio, err := s.tts.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, err
	}
	s.cache.Put(voice, text, audio)
	return audio, nil
}

// splitChunks breaks text into sentence-boundary chunks of roughly size
// characters. A non-positive size or short text yields a single chunk.
func splitChunks(text string, size int) []string {
	if size <= 0 || len(text) <= size {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, s := range splitSentences(text) {
		if current.Len() > 0 && current.Len()+len(s) > size {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(s)
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	out := chunks[:0]
	for _, c := range chunks {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// splitSentences splits at . ! ? and the Devanagari danda, keeping the
// punctuation and trailing whitespace with the preceding sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])
		if isSentenceEnd(runes[i]) {
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
				current.WriteRune(runes[i])
			}
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '।'
}

// truncate shortens a string for logging without splitting runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
