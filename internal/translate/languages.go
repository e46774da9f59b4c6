// Package translate translates text between languages for the front-end's
// "translate" command and auto-translate mode.
package translate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Auto is the source code meaning "detect the language".
const Auto = "auto"

// ErrUnknownLanguage is returned by Resolve for names it cannot map.
var ErrUnknownLanguage = errors.New("unknown language")

// supported lists the languages offered by name. Any other valid tag the
// matcher maps onto one of these is accepted too.
var supported = []language.Tag{
	language.English,
	language.Marathi,
	language.Hindi,
	language.Bengali,
	language.Gujarati,
	language.Kannada,
	language.Malayalam,
	language.Punjabi,
	language.Tamil,
	language.Telugu,
	language.Urdu,
	language.Arabic,
	language.SimplifiedChinese,
	language.Dutch,
	language.French,
	language.German,
	language.Italian,
	language.Japanese,
	language.Korean,
	language.Portuguese,
	language.Russian,
	language.Spanish,
	language.Turkish,
}

// Language is one entry of the language table.
type Language struct {
	Name string // English display name, e.g. "Marathi"
	Code string // BCP-47, e.g. "mr"
}

var (
	matcher = language.NewMatcher(supported)
	byName  = buildNames()
)

func buildNames() map[string]Language {
	namer := display.English.Languages()
	m := make(map[string]Language, len(supported)+1)
	for _, tag := range supported {
		l := Language{Name: namer.Name(tag), Code: tag.String()}
		m[strings.ToLower(l.Name)] = l
	}
	m["auto-detect"] = Language{Name: "Auto-detect", Code: Auto}
	return m
}

// Languages returns the table sorted by name, with Auto-detect first.
func Languages() []Language {
	out := make([]Language, 0, len(byName))
	for _, l := range byName {
		if l.Code != Auto {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return append([]Language{byName["auto-detect"]}, out...)
}

// Resolve maps a language name ("Marathi"), a tag ("mr", "en-GB") or
// "auto" to a table entry.
func Resolve(name string) (Language, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "":
		return Language{}, fmt.Errorf("%w: empty name", ErrUnknownLanguage)
	case Auto, "auto-detect", "detect":
		return byName["auto-detect"], nil
	}
	if l, ok := byName[key]; ok {
		return l, nil
	}

	tag, err := language.Parse(key)
	if err != nil {
		return Language{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return Language{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}
	best := supported[idx]
	return Language{Name: display.English.Languages().Name(best), Code: best.String()}, nil
}

// Name returns the English display name for code, or code itself.
func Name(code string) string {
	if code == Auto {
		return "the detected language"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if n := display.English.Languages().Name(tag); n != "" {
		return n
	}
	return code
}
