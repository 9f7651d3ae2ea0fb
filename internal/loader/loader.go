// Package loader retrieves the textual content behind a validated URL.
//
// Router picks the YouTube transcript path for URLs containing "youtube.com"
// and the generic web page path for everything else. Every failure is reported
// as domain.ErrContentUnavailable so the pipeline can tell it apart from
// endpoint errors.
package loader

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"tldrgram/internal/config"
	"tldrgram/internal/domain"
)

const (
	MetadataSource      = "source"
	MetadataTitle       = "title"
	MetadataContentType = "content_type"

	maxRedirects = 10
)

// Loader turns a target URL into one or more documents.
type Loader interface {
	Load(ctx context.Context, target domain.TargetURL) ([]domain.Document, error)
}

type Router struct {
	web     Loader
	youTube Loader
}

func NewRouter(web Loader, youTube Loader) *Router {
	return &Router{web: web, youTube: youTube}
}

// New builds the default router from configuration.
func New(cfg config.Config, log *slog.Logger) *Router {
	return NewRouter(
		NewWeb(cfg.Web, log),
		NewYouTube(cfg.YouTube, cfg.Web, log),
	)
}

func (r *Router) Load(ctx context.Context, target domain.TargetURL) ([]domain.Document, error) {
	switch target.Kind {
	case domain.KindYouTube:
		return r.youTube.Load(ctx, target)
	default:
		return r.web.Load(ctx, target)
	}
}

// HTTPStatusError means the remote server answered with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}

	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func unavailable(step string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", domain.ErrContentUnavailable, step)
	}

	return fmt.Errorf("%w: %s: %w", domain.ErrContentUnavailable, step, err)
}

func newHTTPClient(timeout time.Duration, insecureSkipVerify bool) *http.Client {
	transport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		transport = &http.Transport{}
	}

	transport = transport.Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: insecureSkipVerify, //nolint:gosec // Controlled by WEB_INSECURE_SKIP_VERIFY.
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		},
	}
}

func checkStatus(resp *http.Response, rawURL string) error {
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &HTTPStatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	return nil
}

func normalizeText(text string) string {
	lines := strings.Split(text, "\n")

	cleanLines := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleanLines = append(cleanLines, line)
		}
	}

	return strings.Join(cleanLines, "\n")
}

func truncateRunes(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	return strings.TrimSpace(string(runes[:maxChars])) + "..."
}
