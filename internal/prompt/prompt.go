package prompt

import (
	"strings"
	"tldrgram/internal/domain"
)

const (
	textPlaceholder = "{text}"

	// Template asks for 300 words; the endpoint's output cap is configured separately.
	Template = `
Provide a summary of the following content in 300 words:
Content: {text}
`

	documentSeparator = "\n\n"
)

// Build joins document contents and fills the template. Empty input is not rejected.
func Build(docs []domain.Document) domain.Prompt {
	contents := make([]string, 0, len(docs))
	for _, doc := range docs {
		contents = append(contents, doc.Content)
	}

	return domain.Prompt(strings.Replace(Template, textPlaceholder, strings.Join(contents, documentSeparator), 1))
}
