package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/factlens/factlens/internal/domain"
)

// Explainer generates a short natural-language rationale for a fake-news
// verdict via the chat completions API.
type Explainer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewExplainer creates a chat-based verdict explainer.
func NewExplainer(cfg *Config, model string) *Explainer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Explainer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: cfg.Logger,
	}
}

const explainSystemPrompt = "You assess news headlines. Given a headline, a verdict, " +
	"and similar headlines from a trusted corpus, explain the verdict in two or three " +
	"plain sentences. Do not speculate beyond the evidence given."

// Explain asks the model for a short rationale. Callers treat failures as
// non-fatal and fall back to an empty explanation.
func (e *Explainer) Explain(ctx context.Context, title string, corroborations []domain.Corroboration, suspect bool) (string, error) {
	verdict := "corroborated by the corpus"
	if suspect {
		verdict = "not corroborated by the corpus"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Headline: %s\nVerdict: %s\n", title, verdict)
	if len(corroborations) == 0 {
		b.WriteString("No similar headlines found.\n")
	} else {
		b.WriteString("Similar headlines:\n")
		for _, c := range corroborations {
			fmt.Fprintf(&b, "- %s (similarity %.2f)\n", c.Title, c.Score)
		}
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: explainSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: b.String()},
		},
		MaxTokens:   200,
		Temperature: 0.2,
	})
	if err != nil {
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty chat response: %w", domain.ErrEmbeddingProviderError)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
