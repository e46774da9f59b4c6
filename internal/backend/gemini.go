package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
)

// chatSession is the slice of *genai.Chat the backend uses.
type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini keeps one multi-turn chat per session. The chat object holds the
// history; it is never trimmed.
type Gemini struct {
	model string
	log   *logger.Logger

	mu   sync.Mutex // serialises turns so history stays ordered
	chat chatSession
}

var _ domain.LanguageBackend = (*Gemini)(nil)

// NewGemini opens a Gemini chat primed with the assistant persona.
func NewGemini(ctx context.Context, apiKey, model string, log *logger.Logger, opts ...Option) (*Gemini, error) {
	if apiKey == "" {
		return nil, &domain.BackendError{Backend: "gemini", Op: "init", Err: errors.New("missing API key")}
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	o := buildOptions(opts)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &domain.BackendError{Backend: "gemini", Op: "init", Err: err}
	}

	chat, err := client.Chats.Create(ctx, model, nil, primerHistory(o.assistant))
	if err != nil {
		return nil, &domain.BackendError{Backend: "gemini", Op: "init", Err: err}
	}

	log.Info("backend: gemini ready (model=%s)", model)
	return newGeminiWithChat(chat, model, log), nil
}

func newGeminiWithChat(chat chatSession, model string, log *logger.Logger) *Gemini {
	return &Gemini{chat: chat, model: model, log: log}
}

func primerHistory(assistant string) []*genai.Content {
	return []*genai.Content{
		genai.NewContentFromText(systemPrompt(assistant), genai.RoleUser),
		genai.NewContentFromText(primerReply(assistant), genai.RoleModel),
	}
}

func (g *Gemini) Name() string  { return "gemini" }
func (g *Gemini) Enabled() bool { return true }

// Send appends message to the chat and returns the model's text.
func (g *Gemini) Send(ctx context.Context, message string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.log.Debug("gemini: send (%d chars) model=%s", len(message), g.model)
	resp, err := g.chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", &domain.BackendError{Backend: g.Name(), Op: "send", Err: err}
	}
	if resp == nil {
		return "", &domain.BackendError{Backend: g.Name(), Op: "send", Err: domain.ErrEmptyReply}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &domain.BackendError{Backend: g.Name(), Op: "send", Err: fmt.Errorf("%w: no text in candidates", domain.ErrEmptyReply)}
	}
	g.log.Debug("gemini: reply (%d chars): %s", len(text), truncate(text, 120))
	return text, nil
}
