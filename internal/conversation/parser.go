// Package conversation provides the front-end command parser and the
// terminal notifier.
package conversation

import (
	"regexp"
	"strings"

	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
)

// CommandParser recognises the few commands the front-end handles itself.
// Everything else is chat for the responder. It runs before the responder
// sees the line.
type CommandParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// translatePattern captures "translate [from X] to Y: text".
var translatePattern = regexp.MustCompile(`(?is)^translate(?:\s+from\s+(.+?))?\s+to\s+([^:]+?)\s*:\s*(.+)$`)

// NewCommandParser creates the front-end parser.
func NewCommandParser(log *logger.Logger) *CommandParser {
	p := &CommandParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(exit|quit|bye|goodbye)$`), domain.IntentQuit},
		{regexp.MustCompile(`(?i)^toggle\s+(tts|speech)$`), domain.IntentToggleSpeech},
		{regexp.MustCompile(`(?i)^(listen|voice|speak to me)$`), domain.IntentListen},
		{regexp.MustCompile(`(?i)^(help|\?)$`), domain.IntentHelp},
	}
	return p
}

// Parse classifies one input line.
func (p *CommandParser) Parse(input string) domain.Intent {
	trimmed := strings.TrimSpace(input)

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("command: %s", rule.intent)
			return domain.Intent{Type: rule.intent}
		}
	}

	if m := translatePattern.FindStringSubmatch(trimmed); m != nil {
		req := &domain.TranslateRequest{
			From: strings.TrimSpace(m[1]),
			To:   strings.TrimSpace(m[2]),
			Text: strings.TrimSpace(m[3]),
		}
		p.log.Debug("command: translate from=%q to=%q", req.From, req.To)
		return domain.Intent{Type: domain.IntentTranslate, Payload: req.Text, Translate: req}
	}

	return domain.Intent{Type: domain.IntentChat, Payload: input}
}
