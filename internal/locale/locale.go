// Package locale guesses whether text is Marathi or English. It is a
// best-effort heuristic for picking a TTS voice or a translation source,
// not a language identifier.
package locale

import (
	"strings"
	"unicode"
)

// Lang is a BCP-47 base language tag.
type Lang string

const (
	English Lang = "en"
	Marathi Lang = "mr"
)

// Detect returns Marathi when at least a third of the letters are
// Devanagari or the text explicitly asks for Marathi; English otherwise.
func Detect(text string) Lang {
	if strings.Contains(strings.ToLower(text), "in marathi") {
		return Marathi
	}
	if !HasDevanagari(text) {
		return English
	}
	var letters, deva int
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.Is(unicode.Mn, r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Devanagari, r) {
			deva++
		}
	}
	if letters > 0 && deva*3 >= letters {
		return Marathi
	}
	return English
}

// HasDevanagari reports whether text contains any Devanagari rune.
func HasDevanagari(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Devanagari, r) {
			return true
		}
	}
	return false
}
