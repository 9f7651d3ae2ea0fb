package loader

import (
	"bytes"
	"html"
	"net/url"
	"strings"
	"tldrgram/internal/config"

	"codeberg.org/readeck/go-readability/v2"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

const (
	removeSelectors = "script, style, noscript, iframe, svg, template, " +
		"header, footer, nav, aside, form, " +
		"[role=navigation], [role=banner], [role=contentinfo]"
	contentSelectors = "article, main, [role=main], #content, .content, .post-content, .article-content"
)

//nolint:gochecknoglobals // Policy is safe for concurrent use once built.
var strictPolicy = bluemonday.StrictPolicy()

// extractHTML returns the page title and its main text.
// Readability is tried first; goquery is the fallback when it finds nothing.
func extractHTML(body []byte, pageURL *url.URL, format string) (string, string) {
	title, text := extractWithReadability(body, pageURL, format)
	if text != "" {
		return title, text
	}

	fallbackTitle, fallbackText := extractWithGoquery(body)
	if title == "" {
		title = fallbackTitle
	}

	return title, fallbackText
}

func extractWithReadability(body []byte, pageURL *url.URL, format string) (string, string) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", ""
	}

	title := strings.TrimSpace(article.Title())

	if format == config.FormatMarkdown {
		var htmlBuf strings.Builder
		if err = article.RenderHTML(&htmlBuf); err == nil {
			md, convertErr := htmltomarkdown.ConvertString(htmlBuf.String())
			if convertErr == nil {
				if md = strings.TrimSpace(md); md != "" {
					return title, md
				}
			}
		}
	}

	var textBuf strings.Builder
	if err = article.RenderText(&textBuf); err != nil {
		return title, ""
	}

	return title, normalizeText(textBuf.String())
}

func extractWithGoquery(body []byte) (string, string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", normalizeText(stripTags(string(body)))
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title, _ = doc.Find(`meta[property="og:title"]`).First().Attr("content")
		title = strings.TrimSpace(title)
	}

	doc.Find(removeSelectors).Remove()

	contentSel := doc.Find(contentSelectors).First()
	if contentSel.Length() == 0 {
		contentSel = doc.Find("body")
	}

	var lines []string
	contentSel.Find("h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, td").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p, li").Length() > 0 {
			return
		}

		if line := strings.TrimSpace(s.Text()); line != "" {
			lines = append(lines, line)
		}
	})

	if len(lines) == 0 {
		return title, normalizeText(contentSel.Text())
	}

	return title, normalizeText(strings.Join(lines, "\n"))
}

// stripTags drops every tag and returns decoded text.
func stripTags(s string) string {
	return html.UnescapeString(strictPolicy.Sanitize(s))
}
