// Package summarizer sends a prompt to a text-generation endpoint and
// returns the generated summary.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"tldrgram/internal/config"
	"tldrgram/internal/domain"
	"unicode"

	"github.com/openai/openai-go/v3"
)

// Summarizer produces a summary for a given prompt.
type Summarizer interface {
	Summarize(ctx context.Context, prompt domain.Prompt) (domain.Summary, error)
}

// New builds the summarizer for the configured provider.
func New(cfg config.LLM, credential domain.Credential) (Summarizer, error) {
	if credential.Blank() {
		return nil, domain.ErrMissingCredential
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case config.ProviderHuggingFace, "":
		endpoint, err := NewEndpoint(cfg, credential)
		if err != nil {
			return nil, err
		}
		return endpoint, nil
	case config.ProviderOpenAI:
		s, err := NewOpenAI(cfg, credential)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrEndpointInitFailed, cfg.Provider)
	}
}

func checkInit(cfg config.LLM, credential domain.Credential) error {
	if credential.Blank() {
		return domain.ErrMissingCredential
	}

	if strings.ContainsFunc(credential.Value(), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) {
		return fmt.Errorf("%w: credential contains whitespace or control characters", domain.ErrEndpointInitFailed)
	}

	if strings.TrimSpace(cfg.Model) == "" {
		return fmt.Errorf("%w: model is empty", domain.ErrEndpointInitFailed)
	}

	return nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, timeout)
}

func unavailable(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: HTTP %d: %w", domain.ErrEndpointUnavailable, apiErr.StatusCode, err)
	}

	return fmt.Errorf("%w: %w", domain.ErrEndpointUnavailable, err)
}
