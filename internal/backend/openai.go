package backend

import (
	"context"
	"errors"
	"strings"
	"sync"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
)

// OpenAI talks to any OpenAI-compatible chat-completions endpoint and
// keeps the conversation history itself.
type OpenAI struct {
	client openai.Client
	model  string
	log    *logger.Logger

	mu      sync.Mutex
	history []openai.ChatCompletionMessageParamUnion
}

var _ domain.LanguageBackend = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI backend. baseURL may be empty for the
// public API. Retries are disabled; the caller bounds each call.
func NewOpenAI(apiKey, baseURL, model string, log *logger.Logger, opts ...Option) (*OpenAI, error) {
	if apiKey == "" {
		return nil, &domain.BackendError{Backend: "openai", Op: "init", Err: errors.New("missing API key")}
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	o := buildOptions(opts)

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}

	log.Info("backend: openai ready (model=%s)", model)
	return &OpenAI{
		client: openai.NewClient(reqOpts...),
		model:  model,
		log:    log,
		history: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(o.assistant)),
			openai.AssistantMessage(primerReply(o.assistant)),
		},
	}, nil
}

func (c *OpenAI) Name() string  { return "openai" }
func (c *OpenAI) Enabled() bool { return true }

// Send appends message to the history, asks for a completion and records
// the reply. A failed turn leaves the history unchanged.
func (c *OpenAI) Send(ctx context.Context, message string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := append(c.history[:len(c.history):len(c.history)], openai.UserMessage(message))

	c.log.Debug("openai: send (%d chars, %d turns) model=%s", len(message), len(msgs), c.model)
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: msgs,
		Model:    openai.ChatModel(c.model),
	})
	if err != nil {
		return "", &domain.BackendError{Backend: c.Name(), Op: "send", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.BackendError{Backend: c.Name(), Op: "send", Err: domain.ErrEmptyReply}
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", &domain.BackendError{Backend: c.Name(), Op: "send", Err: domain.ErrEmptyReply}
	}

	c.history = append(msgs, openai.AssistantMessage(reply))
	c.log.Debug("openai: reply (%d chars): %s", len(reply), truncate(reply, 120))
	return reply, nil
}

// Turns reports how many messages the history holds, primer included.
func (c *OpenAI) Turns() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history)
}
