package speech

import (
	"time"

	"github.com/hammamikhairi/saathi/internal/locale"
)

// Azure neural voices, one per supported locale.
// Full list: https://learn.microsoft.com/en-us/azure/ai-services/speech-service/language-support
const (
	VoiceEnglish = "en-US-AvaNeural"
	VoiceMarathi = "mr-IN-AarohiNeural"
)

// Audio format returned by Azure and expected by the player.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Audio parameters matching the default format.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// VoiceFor picks the Azure voice for text.
func VoiceFor(text string) string {
	if locale.Detect(text) == locale.Marathi {
		return VoiceMarathi
	}
	return VoiceEnglish
}

// voiceLang returns the xml:lang of an Azure voice name ("mr-IN-..." -> "mr-IN").
func voiceLang(voice string) string {
	if len(voice) >= 5 && voice[2] == '-' {
		return voice[:5]
	}
	return "en-US"
}

// Priority levels for speech requests. Higher value = speaks first.
type Priority int

const (
	PriorityLow    Priority = iota // greetings, chatter
	PriorityNormal                 // assistant replies
	PriorityHigh                   // errors the user must hear
)

// SpeechRequest is a queued item waiting to be spoken.
type SpeechRequest struct {
	Text     string
	Priority Priority
	QueuedAt time.Time
}
