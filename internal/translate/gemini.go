package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
)

// DefaultModel is the Gemini model used for translation.
const DefaultModel = "gemini-2.0-flash"

// generator is the part of *genai.Models the translator calls.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiTranslator translates with a single stateless Gemini request per
// call.
type GeminiTranslator struct {
	models generator
	model  string
	log    *logger.Logger
}

var _ domain.Translator = (*GeminiTranslator)(nil)

// NewGeminiTranslator creates a translator. An empty apiKey is an error.
func NewGeminiTranslator(ctx context.Context, apiKey, model string, log *logger.Logger) (*GeminiTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing API key", domain.ErrTranslationUnavailable)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTranslationUnavailable, err)
	}
	return newGeminiTranslator(client.Models, model, log), nil
}

func newGeminiTranslator(models generator, model string, log *logger.Logger) *GeminiTranslator {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiTranslator{models: models, model: model, log: log}
}

// Translate asks the model for a bare translation of text.
func (g *GeminiTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	prompt := buildPrompt(text, from, to)
	g.log.Debug("translate: gemini %s->%s (%d chars)", from, to, len(text))

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", errors.New("gemini: empty response")
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", errors.New("gemini: empty translation")
	}
	return out, nil
}

func buildPrompt(text, from, to string) string {
	return fmt.Sprintf(
		"Translate the following text from %s to %s. Reply with the translation only, no quotes or notes.\n\n%s",
		Name(from), Name(to), text,
	)
}
