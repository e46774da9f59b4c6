package speech

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
)

// stopper is implemented by speakers that can cut playback short.
type stopper interface {
	Stop()
}

// prefetcher is implemented by speakers that can warm a cache.
type prefetcher interface {
	Prefetch(ctx context.Context, texts ...string)
}

// Mouth serializes all speech output: only one thing speaks at a time and
// higher priority items go first. Speaking failures are logged and
// otherwise ignored.
type Mouth struct {
	speaker domain.Speaker
	log     *logger.Logger
	notify  chan struct{}
	done    chan struct{}

	mu             sync.Mutex
	queue          []SpeechRequest
	speaking       bool
	lastSpokenText string
}

// NewMouth creates a speech dispatcher around speaker.
func NewMouth(speaker domain.Speaker, log *logger.Logger) *Mouth {
	return &Mouth{
		speaker: speaker,
		log:     log,
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Say queues text at the given priority. Non-blocking. Queuing at
// PriorityNormal or above drops stale PriorityLow items.
func (m *Mouth) Say(text string, priority Priority) {
	if text == "" {
		return
	}
	m.mu.Lock()
	if priority >= PriorityNormal {
		m.flushLowLocked()
	}
	m.queue = append(m.queue, SpeechRequest{
		Text:     text,
		Priority: priority,
		QueuedAt: time.Now(),
	})
	qLen := len(m.queue)
	m.mu.Unlock()

	m.log.Debug("mouth: queued (priority=%d, queue_len=%d): %s", priority, qLen, truncate(text, 60))

	select {
	case m.notify <- struct{}{}:
	default: // already signaled
	}
}

// flushLowLocked removes all PriorityLow items. Caller holds m.mu.
func (m *Mouth) flushLowLocked() {
	n := 0
	for _, item := range m.queue {
		if item.Priority > PriorityLow {
			m.queue[n] = item
			n++
		}
	}
	if dropped := len(m.queue) - n; dropped > 0 {
		m.log.Debug("mouth: flushed %d low-priority items", dropped)
	}
	m.queue = m.queue[:n]
}

// IsSpeaking reports whether an item is being spoken right now.
func (m *Mouth) IsSpeaking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speaking
}

// QueueLen returns the number of pending speech requests.
func (m *Mouth) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Busy reports whether anything is speaking or queued.
func (m *Mouth) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speaking || len(m.queue) > 0
}

// Interrupt clears the queue and stops current playback when the speaker
// supports it.
func (m *Mouth) Interrupt() {
	m.mu.Lock()
	m.queue = m.queue[:0]
	m.mu.Unlock()

	if s, ok := m.speaker.(stopper); ok {
		s.Stop()
	}
	m.log.Debug("mouth: interrupted, queue cleared")
}

// Prefetch warms the speaker's cache for text that will be spoken soon.
func (m *Mouth) Prefetch(ctx context.Context, texts ...string) {
	if p, ok := m.speaker.(prefetcher); ok {
		p.Prefetch(ctx, texts...)
	}
}

// LastSpoken returns the most recently spoken text.
func (m *Mouth) LastSpoken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSpokenText
}

// Start begins the speech goroutine. It exits when ctx is cancelled;
// Wait blocks until then.
func (m *Mouth) Start(ctx context.Context) {
	go m.processLoop(ctx)
	m.log.Info("mouth started")
}

// Wait blocks until the goroutine started by Start has returned.
func (m *Mouth) Wait() { <-m.done }

func (m *Mouth) processLoop(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			m.log.Info("mouth stopped")
			return
		case <-m.notify:
			m.drain(ctx)
		}
	}
}

// drain speaks all queued items, highest priority first.
func (m *Mouth) drain(ctx context.Context) {
	for ctx.Err() == nil {
		item, ok := m.dequeue()
		if !ok {
			return
		}

		waited := time.Since(item.QueuedAt).Round(time.Millisecond)
		m.log.Debug("mouth: speaking (priority=%d, waited=%s): %s", item.Priority, waited, truncate(item.Text, 60))

		if err := m.speaker.Speak(ctx, item.Text); err != nil {
			m.log.Warn("mouth: speak failed: %v", err)
		}

		m.mu.Lock()
		m.speaking = false
		m.lastSpokenText = item.Text
		m.mu.Unlock()
	}
}

// dequeue removes the highest priority item, oldest first among equals,
// and marks the mouth as speaking.
func (m *Mouth) dequeue() (SpeechRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		return SpeechRequest{}, false
	}

	best := 0
	for i, item := range m.queue {
		if item.Priority > m.queue[best].Priority {
			best = i
		}
	}

	item := m.queue[best]
	m.queue = append(m.queue[:best], m.queue[best+1:]...)
	m.speaking = true
	return item, true
}
