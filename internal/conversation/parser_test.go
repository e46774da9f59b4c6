package conversation

import (
	"context"
	"fmt"
	"testing"

	"github.com/fatih/color"

	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
)

func TestCommandParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewCommandParser(log)

	tests := []struct {
		input       string
		wantType    domain.IntentType
		wantPayload string
	}{
		// Quit
		{"exit", domain.IntentQuit, ""},
		{"  QUIT ", domain.IntentQuit, ""},
		{"bye", domain.IntentQuit, ""},
		{"Goodbye", domain.IntentQuit, ""},

		// Speech toggle
		{"toggle tts", domain.IntentToggleSpeech, ""},
		{"Toggle Speech", domain.IntentToggleSpeech, ""},

		// Listen
		{"listen", domain.IntentListen, ""},
		{"voice", domain.IntentListen, ""},
		{"speak to me", domain.IntentListen, ""},

		// Help
		{"help", domain.IntentHelp, ""},
		{"?", domain.IntentHelp, ""},

		// Everything else goes to the responder untouched
		{"bye for now", domain.IntentChat, "bye for now"},
		{"Remind me to set doctor appointment", domain.IntentChat, "Remind me to set doctor appointment"},
		{"what time is it?", domain.IntentChat, "what time is it?"},
		{"", domain.IntentChat, ""},
		{"translate this", domain.IntentChat, "translate this"},
	}

	for _, tt := range tests {
		intent := parser.Parse(tt.input)
		if intent.Type != tt.wantType {
			t.Errorf("Parse(%q) type = %s, want %s", tt.input, intent.Type, tt.wantType)
		}
		if intent.Payload != tt.wantPayload {
			t.Errorf("Parse(%q) payload = %q, want %q", tt.input, intent.Payload, tt.wantPayload)
		}
	}
}

func TestCommandParserTranslate(t *testing.T) {
	parser := NewCommandParser(logger.New(logger.LevelOff, nil))

	tests := []struct {
		input string
		want  domain.TranslateRequest
	}{
		{"translate to marathi: good morning", domain.TranslateRequest{To: "marathi", Text: "good morning"}},
		{"Translate from Hindi to English: नमस्ते", domain.TranslateRequest{From: "Hindi", To: "English", Text: "नमस्ते"}},
		{"translate from auto-detect to fr : see you: soon", domain.TranslateRequest{From: "auto-detect", To: "fr", Text: "see you: soon"}},
	}

	for _, tt := range tests {
		intent := parser.Parse(tt.input)
		if intent.Type != domain.IntentTranslate {
			t.Fatalf("Parse(%q) type = %s, want translate", tt.input, intent.Type)
		}
		if intent.Translate == nil || *intent.Translate != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.input, intent.Translate, tt.want)
		}
		if intent.Payload != tt.want.Text {
			t.Errorf("Parse(%q) payload = %q, want %q", tt.input, intent.Payload, tt.want.Text)
		}
	}
}

func TestCLINotifier(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var lines []string
	n := NewCLINotifier("Saathi", logger.New(logger.LevelOff, nil), func(format string, a ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, a...))
	})

	if err := n.Notify(context.Background(), "Hello Asha! How can I help you today?"); err != nil {
		t.Fatal(err)
	}
	if err := n.NotifyUrgent(context.Background(), "backend down"); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"Saathi: Hello Asha! How can I help you today?",
		"Saathi: backend down",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
