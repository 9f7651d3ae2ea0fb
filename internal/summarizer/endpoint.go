package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"tldrgram/internal/config"
	"tldrgram/internal/domain"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Endpoint calls an OpenAI-compatible chat completions API such as the
// Hugging Face inference router.
type Endpoint struct {
	client      openai.Client
	model       string
	maxTokens   int64
	temperature float64
	timeout     time.Duration
}

func NewEndpoint(cfg config.LLM, credential domain.Credential, opts ...option.RequestOption) (*Endpoint, error) {
	if err := checkInit(cfg, credential); err != nil {
		return nil, err
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(credential.Value()),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(baseURL))
	}

	return &Endpoint{
		client:      openai.NewClient(append(clientOpts, opts...)...),
		model:       strings.TrimSpace(cfg.Model),
		maxTokens:   cfg.MaxOutputTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}, nil
}

func (e *Endpoint) Summarize(ctx context.Context, prompt domain.Prompt) (domain.Summary, error) {
	ctx, cancel := withTimeout(ctx, e.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(string(prompt)),
		},
		Temperature: openai.Float(e.temperature),
	}
	if e.maxTokens > 0 {
		params.MaxTokens = openai.Int(e.maxTokens)
	}

	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", unavailable(fmt.Errorf("do request: %w", err))
	}

	if len(resp.Choices) == 0 {
		return "", unavailable(errors.New("response has no choices"))
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", unavailable(fmt.Errorf("output text is missing (finish reason = %s)", resp.Choices[0].FinishReason))
	}

	return domain.Summary(summary), nil
}
