package domain

// IntentType classifies what the user wants.
type IntentType int

const (
	IntentUnknown IntentType = iota

	// Responder intents, in rule-table order.
	IntentReminderAdd
	IntentReminderList
	IntentBackend // answered by the language backend
	IntentPython
	IntentMarathiJoke
	IntentGreeting
	IntentName
	IntentTime
	IntentDate
	IntentSearch
	IntentWeather
	IntentJoke
	IntentFarewell

	// Front-end intents, resolved before the responder is called.
	IntentChat
	IntentQuit
	IntentToggleSpeech
	IntentListen
	IntentTranslate
	IntentHelp
)

// intentNames maps snake_case names to IntentType values.
var intentNames = map[string]IntentType{
	"unknown":       IntentUnknown,
	"reminder_add":  IntentReminderAdd,
	"reminder_list": IntentReminderList,
	"backend":       IntentBackend,
	"python":        IntentPython,
	"marathi_joke":  IntentMarathiJoke,
	"greeting":      IntentGreeting,
	"name":          IntentName,
	"time":          IntentTime,
	"date":          IntentDate,
	"search":        IntentSearch,
	"weather":       IntentWeather,
	"joke":          IntentJoke,
	"farewell":      IntentFarewell,
	"chat":          IntentChat,
	"quit":          IntentQuit,
	"toggle_speech": IntentToggleSpeech,
	"listen":        IntentListen,
	"translate":     IntentTranslate,
	"help":          IntentHelp,
}

var intentStrings = func() map[IntentType]string {
	m := make(map[IntentType]string, len(intentNames))
	for name, t := range intentNames {
		m[t] = name
	}
	return m
}()

// String returns the snake_case intent name.
func (i IntentType) String() string {
	if s, ok := intentStrings[i]; ok {
		return s
	}
	return "unknown"
}

// IntentFromString converts a snake_case intent name to an IntentType.
// Returns IntentUnknown for unrecognized names.
func IntentFromString(name string) IntentType {
	if t, ok := intentNames[name]; ok {
		return t
	}
	return IntentUnknown
}

// Intent represents a parsed user action.
type Intent struct {
	Type      IntentType
	Payload   string            // raw text for chat, parsed command body otherwise
	Translate *TranslateRequest // set for IntentTranslate
}

// TranslateRequest is the payload of an IntentTranslate command.
type TranslateRequest struct {
	From string // language name or tag, "" means auto-detect
	To   string
	Text string
}
