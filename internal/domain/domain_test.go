package domain

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestSessionRemindersAppendOnly(t *testing.T) {
	s := NewSession("s1", "User", false)
	s.AddReminder("buy milk")
	s.AddReminder("call mom")
	s.AddReminder("buy milk")

	got := s.ReminderList()
	want := []string{"buy milk", "call mom", "buy milk"}
	if len(got) != len(want) {
		t.Fatalf("got %d reminders, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("reminder %d = %q, want %q", i, got[i], want[i])
		}
	}

	// Mutating the returned copy must not affect the session.
	got[0] = "changed"
	if s.ReminderList()[0] != "buy milk" {
		t.Fatal("ReminderList leaked internal slice")
	}
}

func TestSessionConcurrentAppend(t *testing.T) {
	s := NewSession("s1", "User", false)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AddReminder(fmt.Sprintf("task %d", i))
			_ = s.ReminderCount()
		}(i)
	}
	wg.Wait()
	if n := s.ReminderCount(); n != 50 {
		t.Fatalf("expected 50 reminders, got %d", n)
	}
}

func TestBackendErrorMatching(t *testing.T) {
	cause := errors.New("quota exceeded")
	var err error = &BackendError{Backend: "gemini", Op: "send", Err: cause}
	wrapped := fmt.Errorf("respond: %w", err)

	if !errors.Is(wrapped, ErrBackend) {
		t.Error("expected errors.Is(err, ErrBackend)")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected BackendError to unwrap to its cause")
	}
	var be *BackendError
	if !errors.As(wrapped, &be) || be.Backend != "gemini" {
		t.Errorf("errors.As failed: %v", be)
	}
}

func TestIntentStringRoundTrip(t *testing.T) {
	for name, it := range intentNames {
		if it.String() != name {
			t.Errorf("%d.String() = %q, want %q", it, it.String(), name)
		}
		if IntentFromString(name) != it {
			t.Errorf("IntentFromString(%q) mismatch", name)
		}
	}
	if IntentFromString("nope") != IntentUnknown {
		t.Error("unknown name should map to IntentUnknown")
	}
}
