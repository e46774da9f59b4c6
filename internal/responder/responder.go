// Package responder turns one line of user input into one reply. It
// manages the session's reminder list, delegates to a language backend
// when one is enabled, and otherwise answers from a fixed rule table.
package responder

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
)

// Option configures the Responder.
type Option func(*Responder)

// WithClock overrides the time source used for time and date replies.
func WithClock(now func() time.Time) Option {
	return func(r *Responder) { r.now = now }
}

// WithRand sets the randomness source for joke selection.
func WithRand(rng *rand.Rand) Option {
	return func(r *Responder) { r.rng = rng }
}

// WithSeed seeds joke selection deterministically.
func WithSeed(seed int64) Option {
	return func(r *Responder) { r.rng = rand.New(rand.NewSource(seed)) }
}

// WithBackendTimeout bounds a single language backend call.
func WithBackendTimeout(d time.Duration) Option {
	return func(r *Responder) { r.backendTimeout = d }
}

// WithAssistantName sets the name used when the user asks for it.
func WithAssistantName(name string) Option {
	return func(r *Responder) { r.assistant = name }
}

// Result is a reply together with the intent that produced it.
type Result struct {
	Intent domain.IntentType
	Text   string
}

// Responder answers user input for a single session.
type Responder struct {
	session        *domain.Session
	backend        domain.LanguageBackend
	log            *logger.Logger
	now            func() time.Time
	assistant      string
	backendTimeout time.Duration
	rules          []Rule

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// New creates a Responder. backend may be nil, which behaves like a
// disabled backend.
func New(session *domain.Session, backend domain.LanguageBackend, log *logger.Logger, opts ...Option) *Responder {
	r := &Responder{
		session:        session,
		backend:        backend,
		log:            log,
		now:            time.Now,
		assistant:      "Saathi",
		backendTimeout: 15 * time.Second,
		rules:          fallbackRules,
	}
	for _, o := range opts {
		o(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return r
}

// Session returns the session this responder mutates.
func (r *Responder) Session() *domain.Session { return r.session }

// Rules returns a copy of the fallback table in evaluation order.
func (r *Responder) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Respond returns the reply for raw input. It never fails: backend errors
// and panics are logged and answered from the fallback table.
func (r *Responder) Respond(ctx context.Context, raw string) string {
	return r.Handle(ctx, raw).Text
}

// Handle is Respond with the matched intent attached.
func (r *Responder) Handle(ctx context.Context, raw string) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("responder: recovered from panic on %q: %v", raw, p)
			res = Result{Intent: domain.IntentUnknown, Text: LineUnknown()}
		}
	}()

	in := normalize(raw)

	// Reminders mutate session state, so they are handled before the
	// backend and behave the same with or without it.
	if res, ok := r.handleReminder(in); ok {
		return res
	}

	if text, err := r.askBackend(ctx, in); err == nil {
		return Result{Intent: domain.IntentBackend, Text: text}
	} else if !errors.Is(err, domain.ErrBackendDisabled) {
		r.log.Warn("responder: backend failed, using fallback: %v", err)
	}

	return r.fallback(in)
}

func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func (r *Responder) handleReminder(in string) (Result, bool) {
	switch classifyReminder(in) {
	case reminderAdd:
		task, ok := reminderTask(in)
		if !ok {
			return Result{Intent: domain.IntentReminderAdd, Text: LineReminderWhat()}, true
		}
		r.session.AddReminder(task)
		r.log.Info("reminder added (%d total): %s", r.session.ReminderCount(), task)
		return Result{Intent: domain.IntentReminderAdd, Text: LineReminderAdded(task)}, true

	case reminderList:
		reminders := r.session.ReminderList()
		if len(reminders) == 0 {
			return Result{Intent: domain.IntentReminderList, Text: LineNoReminders()}, true
		}
		return Result{Intent: domain.IntentReminderList, Text: LineReminderList(reminders)}, true

	case reminderAmbiguous:
		r.log.Debug("responder: %q mentions reminders but is neither add nor list", in)
	}
	return Result{}, false
}

// askBackend forwards input to the language backend with a bounded timeout.
// A panicking backend is reported as a BackendError.
func (r *Responder) askBackend(ctx context.Context, in string) (reply string, err error) {
	if r.backend == nil || !r.session.BackendEnabled || !r.backend.Enabled() {
		return "", domain.ErrBackendDisabled
	}
	defer func() {
		if p := recover(); p != nil {
			reply, err = "", &domain.BackendError{Backend: r.backend.Name(), Op: "send", Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	msg := in
	if strings.Contains(in, "in marathi") {
		msg = MarathiRequest(in)
	}

	ctx, cancel := context.WithTimeout(ctx, r.backendTimeout)
	defer cancel()

	start := r.now()
	reply, err = r.backend.Send(ctx, msg)
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", &domain.BackendError{Backend: r.backend.Name(), Op: "send", Err: domain.ErrEmptyReply}
	}
	r.log.Debug("responder: %s replied in %s", r.backend.Name(), r.now().Sub(start).Round(time.Millisecond))
	return reply, nil
}

func (r *Responder) fallback(in string) Result {
	for _, rule := range r.rules {
		if rule.Match(in) {
			r.log.Debug("responder: matched %s", rule.Intent)
			return Result{Intent: rule.Intent, Text: rule.Reply(r, in)}
		}
	}
	return Result{Intent: domain.IntentUnknown, Text: LineUnknown()}
}

// pick returns a uniformly random element of pool.
func (r *Responder) pick(pool []string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return pool[r.rng.Intn(len(pool))]
}

// String describes the responder for logs.
func (r *Responder) String() string {
	name := "none"
	if r.backend != nil && r.backend.Enabled() {
		name = r.backend.Name()
	}
	return fmt.Sprintf("responder(user=%s, backend=%s, reminders=%d)", r.session.UserName, name, r.session.ReminderCount())
}
