// Package backend provides the language backends the responder delegates
// to: a Gemini chat session, an OpenAI-compatible chat, and a null
// variant used when no provider is configured.
package backend

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/saathi/internal/config"
	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
)

const (
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// Option configures a backend.
type Option func(*options)

type options struct {
	assistant string
}

// WithAssistantName sets the name the backend is primed with.
func WithAssistantName(name string) Option {
	return func(o *options) { o.assistant = name }
}

func buildOptions(opts []Option) options {
	o := options{assistant: "Saathi"}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// systemPrompt primes every live backend.
func systemPrompt(assistant string) string {
	return fmt.Sprintf("You are a helpful virtual assistant called %s. "+
		"You can understand and respond in both English and Marathi. "+
		"When someone asks for a response in Marathi, you should respond in Marathi. "+
		"Keep responses helpful and concise.", assistant)
}

// primerReply is the model turn that acknowledges the system prompt.
func primerReply(assistant string) string {
	return fmt.Sprintf("मी %s आहे, तुम्हाला कशी मदत करू शकतो? I am %s, how can I help you?", assistant, assistant)
}

// New selects a backend for cfg.Provider. "auto" prefers Gemini, then
// OpenAI, then the null backend. A live backend that cannot be built is
// logged and replaced by Null so the session still starts.
func New(ctx context.Context, cfg config.Backend, log *logger.Logger, opts ...Option) domain.LanguageBackend {
	provider := cfg.Provider
	if provider == config.ProviderAuto {
		switch {
		case cfg.GeminiKey != "":
			provider = config.ProviderGemini
		case cfg.OpenAIKey != "":
			provider = config.ProviderOpenAI
		default:
			provider = config.ProviderNone
		}
	}

	switch provider {
	case config.ProviderGemini:
		b, err := NewGemini(ctx, cfg.GeminiKey, cfg.Model, log, opts...)
		if err != nil {
			log.Warn("backend: gemini unavailable, running without a language backend: %v", err)
			return Null{}
		}
		return b
	case config.ProviderOpenAI:
		b, err := NewOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.Model, log, opts...)
		if err != nil {
			log.Warn("backend: openai unavailable, running without a language backend: %v", err)
			return Null{}
		}
		return b
	default:
		log.Info("backend: none configured, using rule table only")
		return Null{}
	}
}

// Null is the disabled backend.
type Null struct{}

var _ domain.LanguageBackend = Null{}

func (Null) Name() string  { return "none" }
func (Null) Enabled() bool { return false }

func (Null) Send(context.Context, string) (string, error) {
	return "", &domain.BackendError{Backend: "none", Op: "send", Err: domain.ErrBackendDisabled}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
