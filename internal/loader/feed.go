package loader

import (
	"bytes"
	"context"
	"html"
	"strings"
	"tldrgram/internal/domain"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

const (
	MetadataLink      = "link"
	MetadataFeedTitle = "feed_title"
)

// Item bodies are HTML fragments; block tags become spaces so words do not run together.
//
//nolint:gochecknoglobals // Policy is safe for concurrent use once built.
var feedPolicy = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)

func isFeed(contentType string) bool {
	switch contentType {
	case "application/rss+xml", "application/atom+xml", "application/feed+json":
		return true
	default:
		return false
	}
}

func isXML(contentType string) bool {
	return contentType == "text/xml" || contentType == "application/xml"
}

// loadFeed returns one document per feed item that carries any text.
func (w *Web) loadFeed(
	ctx context.Context,
	target domain.TargetURL,
	body []byte,
	contentType string,
) ([]domain.Document, error) {
	// gofeed parsers keep per-parse state, so each load gets its own.
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, unavailable("parse feed", err)
	}

	feedTitle := strings.TrimSpace(feed.Title)

	docs := make([]domain.Document, 0, len(feed.Items))
	for _, item := range feed.Items {
		text := feedItemText(item)
		if text == "" {
			continue
		}

		docs = append(docs, domain.Document{
			Content: truncateRunes(text, w.maxContentChars),
			Metadata: map[string]string{
				MetadataSource:      target.Raw,
				MetadataTitle:       strings.TrimSpace(item.Title),
				MetadataLink:        strings.TrimSpace(item.Link),
				MetadataFeedTitle:   feedTitle,
				MetadataContentType: contentType,
			},
		})
	}

	if len(docs) == 0 {
		return nil, unavailable("feed has no items with text", nil)
	}

	w.log.DebugContext(ctx, "Feed is loaded",
		"url", target.Raw,
		"contentType", contentType,
		"feedTitle", feedTitle,
		"itemsCount", len(feed.Items),
		"documentsCount", len(docs))

	return docs, nil
}

func feedItemText(item *gofeed.Item) string {
	body := item.Content
	if strings.TrimSpace(body) == "" {
		body = item.Description
	}
	body = normalizeText(html.UnescapeString(feedPolicy.Sanitize(body)))

	title := strings.TrimSpace(item.Title)

	switch {
	case title == "":
		return body
	case body == "":
		return title
	default:
		return title + "\n" + body
	}
}
