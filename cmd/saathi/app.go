package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hammamikhairi/saathi/internal/conversation"
	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
	"github.com/hammamikhairi/saathi/internal/responder"
	"github.com/hammamikhairi/saathi/internal/speech"
	"github.com/hammamikhairi/saathi/internal/translate"
)

// replier answers one chat line.
type replier interface {
	Handle(ctx context.Context, raw string) responder.Result
}

// speechSwitch turns spoken replies on and off.
type speechSwitch interface {
	Enabled() bool
	Toggle() bool
}

// console prints lines that are not assistant replies.
type console interface {
	PrintHint(text string)
	PrintUrgent(text string)
	PrintVoice(text string)
}

// interrupter silences queued speech when new input arrives.
type interrupter interface {
	Interrupt()
}

type cliApp struct {
	parser        *conversation.CommandParser
	responder     replier
	notifier      domain.Notifier
	out           console
	speech        speechSwitch // nil when no speech engine is configured
	mouth         interrupter  // nil when no speech engine is configured
	listener      domain.Listener
	listenTimeout time.Duration
	translator    *translate.Service
	autoTo        string // auto-translate target, "" when off
	debounce      *translate.Debouncer
	log           *logger.Logger
}

// run greets the user and handles lines until a quit command, ctx
// cancellation or the end of input.
func (a *cliApp) run(ctx context.Context, lines <-chan string) {
	a.say(ctx, speech.LineWelcome())
	if a.debounce != nil {
		defer a.debounce.Stop()
	}

	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return
		case line, ok = <-lines:
			if !ok {
				return
			}
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if a.handle(ctx, line, false) {
			return
		}
	}
}

// handle dispatches one line and reports whether the session should end.
func (a *cliApp) handle(ctx context.Context, line string, fromVoice bool) bool {
	intent := a.parser.Parse(line)
	a.log.Debug("intent: %s (payload=%q)", intent.Type, intent.Payload)

	if a.mouth != nil && intent.Type != domain.IntentHelp {
		a.mouth.Interrupt()
	}

	switch intent.Type {
	case domain.IntentQuit:
		a.say(ctx, responder.LineFarewell())
		return true
	case domain.IntentHelp:
		for _, l := range strings.Split(speech.LineHelp(), "\n") {
			a.out.PrintHint(l)
		}
	case domain.IntentToggleSpeech:
		a.toggleSpeech(ctx)
	case domain.IntentListen:
		if fromVoice {
			a.chat(ctx, line)
			return false
		}
		return a.listen(ctx)
	case domain.IntentTranslate:
		a.translate(ctx, intent.Translate)
	default:
		a.chat(ctx, intent.Payload)
	}
	return false
}

func (a *cliApp) chat(ctx context.Context, text string) {
	if a.autoTo != "" && a.debounce != nil {
		a.debounce.Trigger(text)
	}
	res := a.responder.Handle(ctx, text)
	a.log.Debug("reply intent: %s", res.Intent)
	a.say(ctx, res.Text)
}

func (a *cliApp) toggleSpeech(ctx context.Context) {
	if a.speech == nil {
		a.sayUrgent(ctx, speech.LineSpeechUnavailable())
		return
	}
	on := a.speech.Toggle()
	a.say(ctx, speech.LineSpeechToggled(on))
}

// listen captures one utterance and handles it as if it had been typed.
func (a *cliApp) listen(ctx context.Context) bool {
	if a.listener == nil {
		a.sayUrgent(ctx, speech.LineListenFailed(domain.ErrSpeechUnavailable))
		return false
	}
	a.out.PrintHint(speech.LineListening())

	text, err := a.listener.ListenOnce(ctx, a.listenTimeout)
	if err != nil {
		a.log.Warn("listen: %v", err)
		a.sayUrgent(ctx, speech.LineListenFailed(err))
		return false
	}
	a.out.PrintVoice(speech.LineHeard(text))
	return a.handle(ctx, text, true)
}

func (a *cliApp) translate(ctx context.Context, req *domain.TranslateRequest) {
	if req == nil {
		return
	}
	if a.translator == nil || !a.translator.Available() {
		a.sayUrgent(ctx, speech.LineTranslationUnavailable())
		return
	}
	res, err := a.translator.Translate(ctx, req.Text, req.From, req.To)
	if err != nil {
		a.log.Warn("translate: %v", err)
		if errors.Is(err, translate.ErrUnknownLanguage) {
			a.sayUrgent(ctx, "Unsupported language. Try a name like Marathi or a tag like mr.")
			return
		}
		a.sayUrgent(ctx, fmt.Sprintf("Translation failed: %v", err))
		return
	}
	a.say(ctx, speech.LineTranslated(res.To.Name, res.Text))
}

// autoTranslate is the debouncer callback for --auto-translate.
func (a *cliApp) autoTranslate(ctx context.Context) func(string) {
	return func(text string) {
		if ctx.Err() != nil {
			return
		}
		res, err := a.translator.Translate(ctx, text, translate.Auto, a.autoTo)
		if err != nil {
			a.log.Warn("auto-translate: %v", err)
			return
		}
		if res.Text != "" {
			a.out.PrintHint(speech.LineTranslated(res.To.Name, res.Text))
		}
	}
}

func (a *cliApp) say(ctx context.Context, text string) {
	if err := a.notifier.Notify(ctx, text); err != nil {
		a.log.Error("notify: %v", err)
	}
}

func (a *cliApp) sayUrgent(ctx context.Context, text string) {
	if err := a.notifier.NotifyUrgent(ctx, text); err != nil {
		a.log.Error("notify: %v", err)
	}
}
