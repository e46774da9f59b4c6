package responder

import (
	"regexp"
	"strings"

	"github.com/hammamikhairi/saathi/internal/domain"
)

// Rule is one entry of the fallback table. Match receives normalized
// (trimmed, lower-cased) input.
type Rule struct {
	Intent domain.IntentType
	Match  func(input string) bool
	Reply  func(r *Responder, input string) string
}

// wordPattern compiles an alternation that only matches whole words.
// RE2's \b is ASCII-only, so Devanagari needs explicit letter/mark classes.
func wordPattern(alts ...string) *regexp.Regexp {
	quoted := make([]string, len(alts))
	for i, a := range alts {
		quoted[i] = regexp.QuoteMeta(a)
	}
	const edge = `[^\p{L}\p{M}\p{N}_]`
	return regexp.MustCompile(`(?:^|` + edge + `)(?:` + strings.Join(quoted, "|") + `)(?:$|` + edge + `)`)
}

var (
	marathiJokeRe = wordPattern("tu mala joke sang", "मला एक जोक सांग", "विनोद सांग")
	greetingRe    = wordPattern("hello", "hi", "hey", "greetings", "नमस्कार", "नमस्ते")
	timeRe        = wordPattern("time", "what time")
	dateRe        = wordPattern("date", "day", "today")
	searchRe      = wordPattern("search", "look up", "find")
	weatherRe     = wordPattern("weather", "temperature", "forecast")
	jokeRe        = wordPattern("joke", "funny", "make me laugh")
	farewellRe    = wordPattern("exit", "bye", "goodbye", "quit")
)

func contains(subs ...string) func(string) bool {
	return func(in string) bool {
		for _, s := range subs {
			if strings.Contains(in, s) {
				return true
			}
		}
		return false
	}
}

// fallbackRules is evaluated top to bottom; the first match wins.
var fallbackRules = []Rule{
	{domain.IntentPython, contains("what is python"), func(*Responder, string) string {
		return pythonDescription
	}},
	{domain.IntentMarathiJoke, marathiJokeRe.MatchString, func(r *Responder, _ string) string {
		return r.pick(marathiJokes)
	}},
	{domain.IntentGreeting, greetingRe.MatchString, func(r *Responder, _ string) string {
		return LineGreeting(r.session.UserName)
	}},
	{domain.IntentName, contains("your name", "तुझं नाव"), func(r *Responder, _ string) string {
		return LineName(r.assistant)
	}},
	{domain.IntentTime, timeRe.MatchString, func(r *Responder, _ string) string {
		return LineTime(r.now().Format("15:04"))
	}},
	{domain.IntentDate, dateRe.MatchString, func(r *Responder, _ string) string {
		return LineDate(r.now().Format("Monday, January 02, 2006"))
	}},
	{domain.IntentSearch, searchRe.MatchString, func(_ *Responder, in string) string {
		if q := searchQuery(in); q != "" {
			return LineSearch(q)
		}
		return LineSearchWhat()
	}},
	{domain.IntentWeather, weatherRe.MatchString, func(*Responder, string) string {
		return LineWeather()
	}},
	{domain.IntentJoke, jokeRe.MatchString, func(r *Responder, _ string) string {
		return r.pick(englishJokes)
	}},
	{domain.IntentFarewell, farewellRe.MatchString, func(*Responder, string) string {
		return LineFarewell()
	}},
}

// searchQuery returns the text after the first "search". Inputs that
// matched on "look up" or "find" without saying "search" echo in full.
func searchQuery(in string) string {
	if _, after, found := strings.Cut(in, "search"); found {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(in)
}

// ── Reminders ────────────────────────────────────────────────────

const reminderPhrase = "remind me to "

type reminderKind int

const (
	reminderNone reminderKind = iota
	reminderAdd
	reminderList
	reminderAmbiguous
)

// classifyReminder decides which reminder branch, if any, applies.
func classifyReminder(in string) reminderKind {
	if !strings.Contains(in, "remind") {
		return reminderNone
	}
	switch {
	case strings.Contains(in, "set") || strings.Contains(in, "add"):
		return reminderAdd
	case strings.Contains(in, "list") || strings.Contains(in, "show"):
		return reminderList
	default:
		return reminderAmbiguous
	}
}

// reminderTask extracts the task following "remind me to ".
func reminderTask(in string) (string, bool) {
	idx := strings.Index(in, reminderPhrase)
	if idx < 0 {
		return "", false
	}
	task := strings.TrimSpace(in[idx+len(reminderPhrase):])
	return task, task != ""
}
