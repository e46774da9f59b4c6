package display

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
	"github.com/hammamikhairi/saathi/internal/storage"
)

func testModel(t *testing.T) (model, chan string, *domain.Session) {
	t.Helper()
	store := storage.NewMemoryStore(logger.New(logger.LevelOff, nil))
	sess := domain.NewSession("s1", "Asha", false)
	if err := store.Save(context.Background(), sess); err != nil {
		t.Fatal(err)
	}
	in := make(chan string, 4)
	status := func() []Segment { return []Segment{{Label: "tts", Value: "off"}} }
	return newModel(store, "s1", status, in, make(chan struct{}), nil), in, sess
}

func TestModelEnterSendsInput(t *testing.T) {
	m, in, _ := testModel(t)
	m.input.SetValue("remind me to set alarm")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := <-in; got != "remind me to set alarm" {
		t.Fatalf("got %q", got)
	}
	if v := next.(model).input.Value(); v != "" {
		t.Fatalf("input not reset: %q", v)
	}

	// blank lines are dropped
	next.(model).Update(tea.KeyMsg{Type: tea.KeyEnter})
	select {
	case got := <-in:
		t.Fatalf("unexpected input %q", got)
	default:
	}
}

func TestModelCtrlCRequestsExit(t *testing.T) {
	m, in, _ := testModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if got := <-in; got != quitLine {
		t.Fatalf("got %q, want %q", got, quitLine)
	}
}

func TestModelStatusBar(t *testing.T) {
	m, _, sess := testModel(t)
	sess.AddReminder("call mom")

	m.refresh(sess.StartedAt.Add(90 * time.Second))

	want := []Segment{
		{"user", "Asha"},
		{"reminders", "1"},
		{"last set", "1m30s ago"},
		{"up", "1m30s"},
		{"tts", "off"},
	}
	if len(m.segments) != len(want) {
		t.Fatalf("segments = %v", m.segments)
	}
	for i := range want {
		if m.segments[i] != want[i] {
			t.Errorf("segment %d = %v, want %v", i, m.segments[i], want[i])
		}
	}
	if m.title != "Saathi | Asha | 1 reminder" {
		t.Errorf("title = %q", m.title)
	}
	if !strings.Contains(m.View(), prompt) {
		t.Error("view is missing the prompt")
	}
}

func TestModelStatusBarWithoutReminders(t *testing.T) {
	m, _, sess := testModel(t)
	m.refresh(sess.StartedAt.Add(5 * time.Second))

	for _, s := range m.segments {
		if s.Label == "last set" {
			t.Fatalf("unexpected %v with no reminders", s)
		}
	}
	if m.title != "Saathi | Asha | 0 reminders" {
		t.Errorf("title = %q", m.title)
	}
}

func TestFmtDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "0s"},
		{42 * time.Second, "42s"},
		{5*time.Minute + 3*time.Second, "5m03s"},
		{2*time.Hour + 7*time.Minute, "2h07m"},
	}
	for _, tt := range tests {
		if got := fmtDuration(tt.d); got != tt.want {
			t.Errorf("fmtDuration(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
