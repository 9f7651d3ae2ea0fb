package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"tldrgram/internal/config"
	"tldrgram/internal/domain"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

// OpenAI calls OpenAI's Responses API to produce summaries.
type OpenAI struct {
	client          openai.Client
	model           string
	maxOutputTokens int64
	temperature     float64
	timeout         time.Duration
}

// NewOpenAI builds a Responses API summarizer. BaseURL is used only when it
// points somewhere other than the Hugging Face router default.
func NewOpenAI(cfg config.LLM, credential domain.Credential, opts ...option.RequestOption) (*OpenAI, error) {
	if err := checkInit(cfg, credential); err != nil {
		return nil, err
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(credential.Value()),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" && baseURL != config.Default().LLM.BaseURL {
		clientOpts = append(clientOpts, option.WithBaseURL(baseURL))
	}

	return &OpenAI{
		client:          openai.NewClient(append(clientOpts, opts...)...),
		model:           strings.TrimSpace(cfg.Model),
		maxOutputTokens: cfg.MaxOutputTokens,
		temperature:     cfg.Temperature,
		timeout:         cfg.Timeout,
	}, nil
}

func (s *OpenAI) Summarize(ctx context.Context, prompt domain.Prompt) (domain.Summary, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	params := responses.ResponseNewParams{
		Model:       s.model,
		Temperature: openai.Float(s.temperature),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(string(prompt)),
		},
	}
	if s.maxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(s.maxOutputTokens)
	}

	resp, err := s.client.Responses.New(ctx, params)
	if err != nil {
		return "", unavailable(fmt.Errorf("do request: %w", err))
	}

	// An incomplete response still carries the text generated before the cap.
	summary := strings.TrimSpace(resp.OutputText())
	if summary == "" {
		return "", unavailable(fmt.Errorf(
			"output text is missing (status = %s, reason = %s)",
			resp.Status,
			resp.IncompleteDetails.Reason,
		))
	}

	return domain.Summary(summary), nil
}
