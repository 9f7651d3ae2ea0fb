package domain

import (
	"log/slog"
	"strings"
)

type URLKind int

const (
	KindGeneric URLKind = iota
	KindYouTube
)

func (k URLKind) String() string {
	switch k {
	case KindYouTube:
		return "youtube"
	default:
		return "generic"
	}
}

// TargetURL is a URL that already passed validation.
type TargetURL struct {
	Raw  string
	Kind URLKind
}

// Document is one unit of loaded text plus optional metadata such as video title.
type Document struct {
	Content  string
	Metadata map[string]string
}

type Prompt string

type Summary string

// Credential is the API token of the summarization endpoint.
type Credential string

const credentialVisiblePrefix = 3

func (c Credential) Blank() bool {
	return strings.TrimSpace(string(c)) == ""
}

func (c Credential) Value() string {
	return strings.TrimSpace(string(c))
}

// String keeps tokens out of logs and error messages.
func (c Credential) String() string {
	v := c.Value()
	if v == "" {
		return ""
	}

	if len(v) <= credentialVisiblePrefix {
		return "(redacted)"
	}

	return v[:credentialVisiblePrefix] + "…(redacted)"
}

func (c Credential) LogValue() slog.Value {
	return slog.StringValue(c.String())
}
