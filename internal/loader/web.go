package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"tldrgram/internal/config"
	"tldrgram/internal/domain"
)

const (
	sniffLen            = 512
	defaultMaxBodyBytes = 8 << 20

	acceptHeader         = "text/html,application/xhtml+xml,application/xml;q=0.9,text/plain;q=0.8,*/*;q=0.7"
	acceptLanguageHeader = "en-US,en;q=0.9"
)

// Web loads generic pages with a browser identity and extracts their main text.
type Web struct {
	client          *http.Client
	userAgent       string
	maxBodyBytes    int64
	maxContentChars int
	format          string
	log             *slog.Logger
}

func NewWeb(cfg config.Web, log *slog.Logger) *Web {
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	format := cfg.Format
	if format == "" {
		format = config.FormatText
	}

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	return &Web{
		client:          newHTTPClient(cfg.Timeout, cfg.InsecureSkipVerify),
		userAgent:       userAgent,
		maxBodyBytes:    maxBodyBytes,
		maxContentChars: cfg.MaxContentChars,
		format:          format,
		log:             log,
	}
}

func (w *Web) Load(ctx context.Context, target domain.TargetURL) ([]domain.Document, error) {
	pageURL, err := url.Parse(target.Raw)
	if err != nil {
		return nil, unavailable("parse URL", err)
	}

	body, contentType, err := w.fetch(ctx, target.Raw)
	if err != nil {
		return nil, err
	}

	if isFeed(contentType) || isXML(contentType) {
		docs, feedErr := w.loadFeed(ctx, target, body, contentType)
		if feedErr == nil || isFeed(contentType) {
			return docs, feedErr
		}
	}

	var title, text string

	switch {
	case isHTML(contentType):
		title, text = extractHTML(body, pageURL, w.format)
	case strings.HasPrefix(contentType, "text/"):
		text = normalizeText(string(body))
	default:
		return nil, unavailable(fmt.Sprintf("non-text payload (content type = %s)", contentType), nil)
	}

	if text == "" {
		return nil, unavailable("page has no textual content", nil)
	}

	text = truncateRunes(text, w.maxContentChars)

	w.log.DebugContext(ctx, "Web page is loaded",
		"url", target.Raw,
		"contentType", contentType,
		"title", title,
		"textLen", len(text))

	return []domain.Document{{
		Content: text,
		Metadata: map[string]string{
			MetadataSource:      target.Raw,
			MetadataTitle:       title,
			MetadataContentType: contentType,
		},
	}}, nil
}

func (w *Web) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", unavailable("create request", err)
	}

	req.Header.Set("User-Agent", w.userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguageHeader)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, "", unavailable("do request", err)
	}
	defer resp.Body.Close()

	if err = checkStatus(resp, rawURL); err != nil {
		return nil, "", unavailable("check status", err)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, w.maxBodyBytes))
	if err != nil {
		return nil, "", unavailable("read body", err)
	}

	if len(body) == 0 {
		return nil, "", unavailable("empty body", nil)
	}

	return body, mediaType(resp.Header.Get("Content-Type"), body), nil
}

func mediaType(header string, body []byte) string {
	if header != "" {
		if parsed, _, err := mime.ParseMediaType(header); err == nil {
			return strings.ToLower(parsed)
		}
	}

	sniffed, _, err := mime.ParseMediaType(http.DetectContentType(body[:min(len(body), sniffLen)]))
	if err != nil {
		return "application/octet-stream"
	}

	return sniffed
}

func isHTML(contentType string) bool {
	return contentType == "text/html" || contentType == "application/xhtml+xml"
}
