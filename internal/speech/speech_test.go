package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
)

func testLogger() *logger.Logger { return logger.New(logger.LevelOff, nil) }

// wav builds a minimal RIFF/WAVE file around pcm.
func wav(pcm []byte) []byte {
	var b bytes.Buffer
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, uint32(36+len(pcm)))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	_ = binary.Write(&b, binary.LittleEndian, uint32(16))
	b.Write(make([]byte, 16))
	b.WriteString("data")
	_ = binary.Write(&b, binary.LittleEndian, uint32(len(pcm)))
	b.Write(pcm)
	return b.Bytes()
}

// ── voices / SSML / WAV ──────────────────────────────────────────

func TestVoiceFor(t *testing.T) {
	assert.Equal(t, VoiceEnglish, VoiceFor("Hello there"))
	assert.Equal(t, VoiceMarathi, VoiceFor("मी ठीक आहे"))
	assert.Equal(t, "mr-IN", voiceLang(VoiceMarathi))
	assert.Equal(t, "en-US", voiceLang("weird"))
}

func TestBuildSSMLEscapes(t *testing.T) {
	ssml, err := buildSSML("fish & chips <3", VoiceMarathi)
	require.NoError(t, err)
	assert.Contains(t, ssml, "fish &amp; chips &lt;3")
	assert.Contains(t, ssml, "xml:lang='mr-IN'")
	assert.Contains(t, ssml, "name='mr-IN-AarohiNeural'")
}

func TestExtractPCM(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	got, err := extractPCM(wav(pcm))
	require.NoError(t, err)
	assert.Equal(t, pcm, got)

	_, err = extractPCM([]byte("short"))
	assert.Error(t, err)

	bad := wav(pcm)
	copy(bad, "RIFX")
	_, err = extractPCM(bad)
	assert.Error(t, err)
}

// ── Azure client ─────────────────────────────────────────────────

func TestAzureSynthesize(t *testing.T) {
	var gotBody, gotKey, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		gotFormat = r.Header.Get("X-Microsoft-OutputFormat")
		_, _ = w.Write([]byte("audio"))
	}))
	defer srv.Close()

	c := NewAzureClient("secret", "westeurope", testLogger(), WithEndpoint(srv.URL))
	audio, err := c.Synthesize(context.Background(), "hi", VoiceEnglish)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), audio)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, DefaultAudioFormat, gotFormat)
	assert.Contains(t, gotBody, "en-US-AvaNeural")
}

func TestAzureSynthesizeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewAzureClient("nope", "x", testLogger(), WithEndpoint(srv.URL))
	_, err := c.Synthesize(context.Background(), "hi", VoiceEnglish)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSpeechUnavailable)
	assert.Contains(t, err.Error(), "401")
}

// ── cache ────────────────────────────────────────────────────────

func TestAudioCacheMemory(t *testing.T) {
	c := NewAudioCache(2, "", false, testLogger())

	_, ok := c.Get(VoiceEnglish, "a")
	assert.False(t, ok)

	c.Put(VoiceEnglish, "a", []byte("A"))
	got, ok := c.Get(VoiceEnglish, "a")
	require.True(t, ok)
	assert.Equal(t, []byte("A"), got)

	// same text in another voice is a different entry
	_, ok = c.Get(VoiceMarathi, "a")
	assert.False(t, ok)

	c.Put(VoiceEnglish, "b", []byte("B"))
	c.Put(VoiceEnglish, "c", []byte("C"))
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Has(VoiceEnglish, "a"), "oldest entry should be evicted")

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)

	c.Clear()
	assert.Zero(t, c.Len())
}

func TestAudioCacheDisk(t *testing.T) {
	dir := t.TempDir()
	w := NewAudioCache(4, dir, true, testLogger())
	w.Put(VoiceEnglish, "hello", []byte("wav"))

	// fresh cache, read-only disk tier still serves old entries
	r := NewAudioCache(4, dir, false, testLogger())
	assert.True(t, r.Has(VoiceEnglish, "hello"))
	got, ok := r.Get(VoiceEnglish, "hello")
	require.True(t, ok)
	assert.Equal(t, []byte("wav"), got)
	assert.Equal(t, 1, r.Len(), "disk hit is promoted to memory")

	r.Put(VoiceEnglish, "new", []byte("x"))
	fresh := NewAudioCache(4, dir, false, testLogger())
	assert.False(t, fresh.Has(VoiceEnglish, "new"))
}

// ── Azure speaker ────────────────────────────────────────────────

type fakeSynth struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (f *fakeSynth) Synthesize(_ context.Context, text, voice string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, voice+"|"+text)
	if f.fail[text] {
		return nil, errors.New("synth failed")
	}
	return []byte(text), nil
}

func (f *fakeSynth) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePlayer struct {
	mu      sync.Mutex
	played  []string
	stopped int
}

func (p *fakePlayer) Play(b []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, string(b))
	return nil
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped++
}

func TestAzureSpeakerUsesCache(t *testing.T) {
	synth := &fakeSynth{}
	player := &fakePlayer{}
	s := newAzureSpeaker(synth, player, NewAudioCache(8, "", false, testLogger()), testLogger())

	require.NoError(t, s.Speak(context.Background(), "Hello."))
	require.NoError(t, s.Speak(context.Background(), "Hello."))

	assert.Equal(t, 1, synth.count())
	assert.Equal(t, []string{"Hello.", "Hello."}, player.played)
	assert.Equal(t, []string{VoiceEnglish + "|Hello."}, synth.calls)
}

func TestAzureSpeakerPicksMarathiVoice(t *testing.T) {
	synth := &fakeSynth{}
	s := newAzureSpeaker(synth, &fakePlayer{}, NewAudioCache(8, "", false, testLogger()), testLogger())

	require.NoError(t, s.Speak(context.Background(), "नमस्कार, कसे आहात?"))
	require.Len(t, synth.calls, 1)
	assert.True(t, strings.HasPrefix(synth.calls[0], VoiceMarathi+"|"))
}

func TestAzureSpeakerChunksInOrder(t *testing.T) {
	synth := &fakeSynth{fail: map[string]bool{"Two two two.": true}}
	player := &fakePlayer{}
	s := newAzureSpeaker(synth, player, NewAudioCache(8, "", false, testLogger()), testLogger(), WithChunkSize(14))

	err := s.Speak(context.Background(), "One one one. Two two two. Three three.")
	require.NoError(t, err)
	assert.Equal(t, []string{"One one one.", "Three three."}, player.played)
}

func TestSplitChunks(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitChunks("short", 200))
	assert.Equal(t, []string{"abc"}, splitChunks("abc", 0))
	assert.Equal(t,
		[]string{"पहिलं वाक्य।", "दुसरं वाक्य।"},
		splitChunks("पहिलं वाक्य। दुसरं वाक्य।", 10))
}

// ── Mouth ────────────────────────────────────────────────────────

type recordingSpeaker struct {
	mu      sync.Mutex
	spoken  []string
	gate    chan struct{} // when non-nil, each Speak waits on it
	stopped int
	err     error
}

func (r *recordingSpeaker) Speak(ctx context.Context, text string) error {
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spoken = append(r.spoken, text)
	return r.err
}

func (r *recordingSpeaker) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped++
}

func (r *recordingSpeaker) said() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.spoken...)
}

func TestMouthSpeaksInPriorityOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	sp := &recordingSpeaker{gate: make(chan struct{})}
	m := NewMouth(sp, testLogger())

	// queue before starting so ordering is decided by priority alone
	m.Say("normal", PriorityNormal)
	m.Say("urgent", PriorityHigh)
	m.Say("later", PriorityNormal)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	for i := 0; i < 3; i++ {
		sp.gate <- struct{}{}
	}
	require.Eventually(t, func() bool { return len(sp.said()) == 3 && !m.Busy() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"urgent", "normal", "later"}, sp.said())
	assert.Equal(t, "later", m.LastSpoken())

	cancel()
	m.Wait()
}

func TestMouthFlushesLowPriority(t *testing.T) {
	m := NewMouth(&recordingSpeaker{}, testLogger())
	m.Say("chatter", PriorityLow)
	m.Say("more chatter", PriorityLow)
	assert.Equal(t, 2, m.QueueLen())

	m.Say("reply", PriorityNormal)
	assert.Equal(t, 1, m.QueueLen())
}

func TestMouthInterrupt(t *testing.T) {
	defer goleak.VerifyNone(t)

	sp := &recordingSpeaker{}
	m := NewMouth(sp, testLogger())
	m.Say("one", PriorityNormal)
	m.Say("two", PriorityNormal)
	m.Interrupt()

	assert.Zero(t, m.QueueLen())
	assert.Equal(t, 1, sp.stopped)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	cancel()
	m.Wait()
	assert.Empty(t, sp.said())
}

func TestMouthSwallowsSpeakErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	sp := &recordingSpeaker{err: domain.ErrSpeechUnavailable}
	m := NewMouth(sp, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)

	m.Say("first", PriorityNormal)
	require.Eventually(t, func() bool { return len(sp.said()) == 1 && !m.Busy() }, time.Second, 5*time.Millisecond)
	m.Say("second", PriorityNormal)
	require.Eventually(t, func() bool { return len(sp.said()) == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	m.Wait()
}

// ── SpeakingNotifier ─────────────────────────────────────────────

type captureNotifier struct {
	mu     sync.Mutex
	normal []string
	urgent []string
}

func (c *captureNotifier) Notify(_ context.Context, msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.normal = append(c.normal, msg)
	return nil
}

func (c *captureNotifier) NotifyUrgent(_ context.Context, msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urgent = append(c.urgent, msg)
	return nil
}

func TestSpeakingNotifierToggle(t *testing.T) {
	text := &captureNotifier{}
	sp := &recordingSpeaker{}
	m := NewMouth(sp, testLogger())
	n := NewSpeakingNotifier(text, m, false, testLogger())
	ctx := context.Background()

	require.NoError(t, n.Notify(ctx, "silent"))
	assert.Zero(t, m.QueueLen())

	assert.True(t, n.Toggle())
	require.NoError(t, n.Notify(ctx, "\x1b[32mspoken\x1b[0m"))
	require.NoError(t, n.NotifyUrgent(ctx, "[Error] loud"))
	assert.Equal(t, 2, m.QueueLen())

	assert.False(t, n.Toggle())
	assert.Zero(t, m.QueueLen(), "turning speech off clears the queue")
	assert.Equal(t, 1, sp.stopped)

	assert.Equal(t, []string{"silent", "\x1b[32mspoken\x1b[0m"}, text.normal)
	assert.Equal(t, []string{"[Error] loud"}, text.urgent)
}

func TestCleanForSpeech(t *testing.T) {
	assert.Equal(t, "hello", cleanForSpeech("\x1b[1mhello\x1b[0m"))
	assert.Equal(t, "Tip here", cleanForSpeech("[Tip] Tip here"))
	assert.Equal(t, "Here are your reminders:\nbuy milk\ncall mom",
		cleanForSpeech("Here are your reminders:\n- buy milk\n- call mom"))
	assert.Equal(t, "bold", cleanForSpeech("**bold**"))
}

// ── espeak ───────────────────────────────────────────────────────

func TestEspeakVoiceAndErrors(t *testing.T) {
	var got []string
	e := &Espeak{bin: "espeak-ng", log: testLogger(), run: func(_ context.Context, name string, args ...string) error {
		got = append([]string{name}, args...)
		return nil
	}}

	require.NoError(t, e.Speak(context.Background(), "मला मदत हवी आहे"))
	assert.Equal(t, []string{"espeak-ng", "-v", "mr", "--", "मला मदत हवी आहे"}, got)

	require.NoError(t, e.Speak(context.Background(), "hello"))
	assert.Equal(t, "en", got[2])

	e.run = func(context.Context, string, ...string) error { return errors.New("exit 1") }
	err := e.Speak(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrSpeechUnavailable)

	assert.NoError(t, e.Speak(context.Background(), "   "))
}

// ── Ear ──────────────────────────────────────────────────────────

func scriptedEar(chunks []string, err error) *Ear {
	e := newEar("whisper-cli", "model.bin", testLogger(), WithRecordDuration(time.Millisecond))
	i := 0
	e.record = func(ctx context.Context, _ time.Duration) (string, error) {
		if err != nil {
			return "", err
		}
		if i >= len(chunks) {
			return "", nil
		}
		c := chunks[i]
		i++
		return c, nil
	}
	return e
}

func TestEarListenOnce(t *testing.T) {
	tests := []struct {
		name    string
		chunks  []string
		err     error
		want    string
		wantErr error
	}{
		{"speech then silence", []string{"", "what time", "is it", "", ""}, nil, "what time is it", nil},
		{"noise markers stripped", []string{"[BLANK_AUDIO] hello (keyboard clicking)", ""}, nil, "hello", nil},
		{"nothing heard", nil, nil, "", domain.ErrListenTimeout},
		{"only noise", []string{"[BLANK_AUDIO]", "(music)", "...", "(static)"}, nil, "", domain.ErrUnrecognized},
		{"device unavailable", nil, domain.ErrSpeechUnavailable, "", domain.ErrSpeechUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := scriptedEar(tc.chunks, tc.err)
			got, err := e.ListenOnce(context.Background(), time.Second)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEarInterruptsMouth(t *testing.T) {
	sp := &recordingSpeaker{}
	m := NewMouth(sp, testLogger())
	m.Say("still talking", PriorityNormal)

	e := scriptedEar([]string{"hi"}, nil)
	WithMouth(m)(e)

	got, err := e.ListenOnce(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
	assert.Zero(t, m.QueueLen())
	assert.Equal(t, 1, sp.stopped)
}

func TestEarWaitsForPlaybackToStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	sp := &recordingSpeaker{gate: make(chan struct{})}
	m := NewMouth(sp, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	m.Say("a long answer", PriorityNormal)
	require.Eventually(t, m.IsSpeaking, time.Second, 5*time.Millisecond)

	var recorded atomic.Bool
	e := scriptedEar([]string{"hi"}, nil)
	next := e.record
	e.record = func(ctx context.Context, d time.Duration) (string, error) {
		recorded.Store(true)
		return next(ctx, d)
	}
	WithMouth(m)(e)

	done := make(chan string, 1)
	go func() {
		got, _ := e.ListenOnce(context.Background(), 2*time.Second)
		done <- got
	}()

	time.Sleep(60 * time.Millisecond)
	assert.False(t, recorded.Load(), "recording started while the mouth was still playing")

	sp.gate <- struct{}{}
	select {
	case got := <-done:
		assert.Equal(t, "hi", got)
	case <-time.After(time.Second):
		t.Fatal("ListenOnce did not finish after playback stopped")
	}

	cancel()
	m.Wait()
}

func TestAwaitTranscriptHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := awaitTranscript(ctx, make(chan string), time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	ch := make(chan string, 1)
	ch <- "hello"
	got, err := awaitTranscript(context.Background(), ch, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = awaitTranscript(context.Background(), make(chan string), 10*time.Millisecond)
	assert.Error(t, err)
}

func TestCleanTranscription(t *testing.T) {
	assert.Equal(t, "", cleanTranscription("  [BLANK_AUDIO]  "))
	assert.Equal(t, "", cleanTranscription(" . , "))
	assert.Equal(t, "set a reminder", cleanTranscription("set   a\nreminder"))
	assert.Equal(t, "hello", cleanTranscription("(speaking French) hello"))
}

func TestLineListenFailed(t *testing.T) {
	assert.Contains(t, LineListenFailed(domain.ErrListenTimeout), "No speech detected")
	assert.Contains(t, LineListenFailed(domain.ErrUnrecognized), "Could not understand")
	assert.Contains(t, LineListenFailed(domain.ErrSpeechUnavailable), "unavailable")
	assert.Contains(t, LineListenFailed(errors.New("boom")), "boom")
}

func TestNoOp(t *testing.T) {
	n := NewNoOp(testLogger())
	assert.NoError(t, n.Speak(context.Background(), "hi"))
	_, err := n.ListenOnce(context.Background(), time.Second)
	assert.ErrorIs(t, err, domain.ErrSpeechUnavailable)
}
