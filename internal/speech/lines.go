// lines.go centralises the front-end's own strings: everything the CLI
// prints or speaks that is not an assistant reply.
package speech

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/hammamikhairi/saathi/internal/domain"
)

// ── Session ──────────────────────────────────────────────────────

func LineWelcome() string {
	return "Hello! How can I help you today?"
}

func LineInterrupted() string {
	return "Keyboard interrupt detected."
}

func LineNoBackend() string {
	return "No language backend configured. Using built-in responses."
}

// LineSpeechToggled reports the new text-to-speech state.
func LineSpeechToggled(on bool) string {
	if on {
		return "Text-to-speech enabled."
	}
	return "Text-to-speech disabled."
}

func LineSpeechUnavailable() string {
	return "Text-to-speech is not configured. Start with --speech azure or --speech espeak."
}

// ── Voice input ──────────────────────────────────────────────────

var listeningFillers = []string{
	"I'm listening.",
	"Listening.",
	"Speak now.",
	"Go ahead.",
}

// LineListening returns a random prompt shown before capture starts.
func LineListening() string {
	return listeningFillers[rand.Intn(len(listeningFillers))]
}

// ListeningFillers returns all listening prompts so they can be
// prefetched into the TTS cache at startup.
func ListeningFillers() []string {
	return append([]string(nil), listeningFillers...)
}

// LineListenFailed explains a ListenOnce error to the user.
func LineListenFailed(err error) string {
	switch {
	case errors.Is(err, domain.ErrListenTimeout):
		return "No speech detected. Please try again with a clear voice."
	case errors.Is(err, domain.ErrUnrecognized):
		return "Could not understand the audio. Try speaking more clearly and reduce background noise."
	case errors.Is(err, domain.ErrSpeechUnavailable):
		return "Voice input is unavailable. Check the microphone and the whisper install."
	default:
		return fmt.Sprintf("Voice input failed: %v", err)
	}
}

// LineHeard echoes a transcription back before it is answered.
func LineHeard(text string) string {
	return fmt.Sprintf("You said: %s", text)
}

// ── Translation ──────────────────────────────────────────────────

func LineTranslationUnavailable() string {
	return "Translation is unavailable. Set GEMINI_API_KEY to enable it."
}

// LineTranslated formats a translation result.
func LineTranslated(to, text string) string {
	return fmt.Sprintf("[%s] %s", to, text)
}

// ── Help ─────────────────────────────────────────────────────────

// LineHelp lists the front-end commands.
func LineHelp() string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	b.WriteString("  toggle tts | toggle speech        turn spoken replies on or off\n")
	b.WriteString("  listen | voice                    speak one request into the microphone\n")
	b.WriteString("  translate [from X] to Y: text     translate text between languages\n")
	b.WriteString("  help | ?                          show this help\n")
	b.WriteString("  exit | quit | bye | goodbye       end the session\n")
	b.WriteString("Anything else is answered by the assistant, e.g. \"remind me to set doctor appointment\".")
	return b.String()
}
