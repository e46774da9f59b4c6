package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/locale"
	"github.com/hammamikhairi/saathi/internal/logger"
)

// DefaultTarget is used when no destination language is given.
const DefaultTarget = "en"

// Service resolves language names and delegates to a Translator.
type Service struct {
	tr  domain.Translator
	log *logger.Logger
}

// NewService creates a translation service. tr may be nil, in which case
// every non-trivial call fails with domain.ErrTranslationUnavailable.
func NewService(tr domain.Translator, log *logger.Logger) *Service {
	return &Service{tr: tr, log: log}
}

// Available reports whether a translator is configured.
func (s *Service) Available() bool { return s.tr != nil }

// Result is a finished translation.
type Result struct {
	From Language
	To   Language
	Text string
}

// Translate translates text. from and to accept names or tags; an empty
// from means auto-detect and an empty to means English. Blank text returns
// an empty result without calling the translator.
func (s *Service) Translate(ctx context.Context, text, from, to string) (Result, error) {
	if from == "" {
		from = Auto
	}
	if to == "" {
		to = DefaultTarget
	}
	src, err := Resolve(from)
	if err != nil {
		return Result{}, err
	}
	dst, err := Resolve(to)
	if err != nil {
		return Result{}, err
	}
	if dst.Code == Auto {
		return Result{}, fmt.Errorf("%w: cannot translate to auto-detect", ErrUnknownLanguage)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Result{From: src, To: dst}, nil
	}

	// Only Marathi is detected locally; anything else is left for the
	// translator to identify.
	if src.Code == Auto && locale.Detect(text) == locale.Marathi {
		if l, err := Resolve(string(locale.Marathi)); err == nil {
			src = l
		}
	}
	s.log.Debug("translate: source %s", src.Code)

	if src.Code == dst.Code {
		return Result{From: src, To: dst, Text: text}, nil
	}
	if s.tr == nil {
		return Result{}, domain.ErrTranslationUnavailable
	}

	out, err := s.tr.Translate(ctx, text, src.Code, dst.Code)
	if err != nil {
		return Result{}, fmt.Errorf("translate %s->%s: %w", src.Code, dst.Code, err)
	}
	return Result{From: src, To: dst, Text: strings.TrimSpace(out)}, nil
}
