// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type manages a session status bar and an input prompt at the
// bottom of the terminal. All application output is printed above the
// rendered area via Program.Println / Printf, ensuring concurrent writes
// never garble the display.
package display

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/saathi/internal/domain"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// BannerStyle: muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0")).
			Bold(true)

	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

const prompt = "saathi> "

// Segment is one "label: value" cell of the status bar.
type Segment struct {
	Label string
	Value string
}

// StatusFunc supplies status bar cells that live outside the session,
// such as the backend name or whether speech is on.
type StatusFunc func() []Segment

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may
// safely call [UI.Println], [UI.Printf], and read from
// [UI.InputChan] at any time after [UI.WaitReady] returns.
type UI struct {
	program   *tea.Program
	inputCh   chan string
	readyCh   chan struct{}
	store     domain.SessionStore
	sessionID string
	assistant string
	status    StatusFunc
	done      atomic.Bool
}

// NewUI creates the display for one session. status may be nil.
func NewUI(store domain.SessionStore, sessionID, assistant string, status StatusFunc) *UI {
	return &UI{
		store:     store,
		sessionID: sessionID,
		assistant: assistant,
		status:    status,
		inputCh:   make(chan string, 16),
		readyCh:   make(chan struct{}),
	}
}

// Println prints a line above the prompt. Thread-safe.
// If the program hasn't started yet, falls back to fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt. Thread-safe.
func (u *UI) Printf(format string, a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format+"\n", a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// ── Styled print helpers ─────────────────────────────────────────

// PrintChat prints an assistant reply. Multi-line replies are indented
// under the name.
func (u *UI) PrintChat(text string) {
	lines := strings.Split(text, "\n")
	u.Println(nameStyle.Render(u.assistant+":") + " " + chatStyle.Render(lines[0]))
	for _, l := range lines[1:] {
		u.Println(chatStyle.Render("  " + l))
	}
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintVoice prints a transcribed voice input line.
func (u *UI) PrintVoice(text string) {
	u.Println(secondaryStyle.Render("[voice] ") + primaryStyle.Render(text))
}

// PrintUserInput echoes the user's typed line into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("you") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	m := newModel(u.store, u.sessionID, u.status, u.inputCh, u.readyCh, u.PrintUserInput)
	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

// quitLine is sent on the input channel when the user presses Ctrl-C.
const quitLine = "exit"

type model struct {
	store     domain.SessionStore
	sessionID string
	status    StatusFunc
	input     textinput.Model
	inputCh   chan<- string
	readyCh   chan struct{}
	echoFn    func(string) // prints user input into scrollback
	segments  []Segment
	title     string
	width     int
}

func newModel(store domain.SessionStore, sessionID string, status StatusFunc, inputCh chan<- string, readyCh chan struct{}, echo func(string)) model {
	ti := textinput.New()
	// Use a plain-text prompt so the textinput width math stays correct.
	// Lipgloss-styled prompts add invisible ANSI bytes that break the
	// internal offset/scroll calculations for long input.
	ti.Prompt = prompt
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60 // updated on first WindowSizeMsg

	return model{
		store:     store,
		sessionID: sessionID,
		status:    status,
		input:     ti,
		inputCh:   inputCh,
		readyCh:   readyCh,
		echoFn:    echo,
	}
}

type tickMsg time.Time

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tickCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			// Let the session loop say goodbye before the program exits.
			select {
			case m.inputCh <- quitLine:
			default:
			}
			return m, nil
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.inputCh <- v
				// Print the echo from a Cmd so Update never blocks on it.
				echoFn := m.echoFn
				return m, func() tea.Msg {
					if echoFn != nil {
						echoFn(v)
					}
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > len(prompt) {
			m.input.Width = msg.Width - len(prompt)
		}
		return m, nil

	case tickMsg:
		m.refresh(time.Time(msg))
		return m, tea.Batch(tickCmd(), tea.SetWindowTitle(m.title))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refresh rebuilds the status bar from the stored session and StatusFunc.
func (m *model) refresh(now time.Time) {
	m.segments = m.segments[:0]
	m.title = "Saathi"

	if sess, err := m.store.Load(context.Background(), m.sessionID); err == nil {
		n := sess.ReminderCount()
		m.segments = append(m.segments,
			Segment{Label: "user", Value: sess.UserName},
			Segment{Label: "reminders", Value: fmt.Sprint(n)},
		)
		if n > 0 {
			m.segments = append(m.segments, Segment{Label: "last set", Value: fmtDuration(now.Sub(sess.UpdatedAt())) + " ago"})
		}
		m.segments = append(m.segments, Segment{Label: "up", Value: fmtDuration(now.Sub(sess.StartedAt))})
		m.title = fmt.Sprintf("Saathi | %s | %d reminder%s", sess.UserName, n, plural(n))
	}
	if m.status != nil {
		m.segments = append(m.segments, m.status()...)
	}
}

func (m model) View() string {
	var b strings.Builder

	if len(m.segments) > 0 {
		b.WriteString(m.renderBar())
		b.WriteByte('\n')
	}

	// Blank line before prompt for visual separation.
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

func (m model) renderBar() string {
	parts := make([]string, 0, len(m.segments))
	for _, s := range m.segments {
		parts = append(parts, labelStyle.Render(s.Label+": ")+valueStyle.Render(s.Value))
	}

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}

// ── Helpers ──────────────────────────────────────────────────────

func fmtDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
