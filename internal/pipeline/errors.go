package pipeline

import (
	"errors"
	"fmt"
	"tldrgram/internal/domain"
)

type Kind int

const (
	KindMissingCredential Kind = iota + 1
	KindEndpointInitFailed
	KindInvalidURL
	KindContentUnavailable
	KindEndpointUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindMissingCredential:
		return "missing_credential"
	case KindEndpointInitFailed:
		return "endpoint_init_failed"
	case KindInvalidURL:
		return "invalid_url"
	case KindContentUnavailable:
		return "content_unavailable"
	case KindEndpointUnavailable:
		return "endpoint_unavailable"
	default:
		return "unknown"
	}
}

// Error is returned for every failed run. Err wraps one of the domain sentinels.
type Error struct {
	Kind  Kind
	State State
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return "pipeline error"
	}

	if e.Err == nil {
		return fmt.Sprintf("%s in state %s", e.Kind, e.State)
	}

	return fmt.Sprintf("%s in state %s: %v", e.Kind, e.State, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// Fatal reports whether the pipeline cannot run at all until it is reconfigured.
func (e *Error) Fatal() bool {
	if e == nil {
		return false
	}

	return e.Kind == KindMissingCredential || e.Kind == KindEndpointInitFailed
}

// UserMessage is the text shown to the person who submitted the URL.
func (e *Error) UserMessage() string {
	if e == nil {
		return ""
	}

	switch e.Kind {
	case KindMissingCredential:
		return "Hugging Face API Token is required."
	case KindEndpointInitFailed:
		return fmt.Sprintf("Failed to initialize the summarization endpoint: %v", e.Err)
	case KindInvalidURL:
		return "Invalid URL. Please enter a valid YouTube or website URL."
	case KindContentUnavailable:
		return fmt.Sprintf("Failed to load content from this URL: %v", e.Err)
	case KindEndpointUnavailable:
		return fmt.Sprintf("Failed to summarize the content: %v", e.Err)
	default:
		return fmt.Sprintf("Exception: %v", e.Err)
	}
}

// UserMessage returns the user-facing text for any error, falling back to a
// generic message for errors that did not come from a pipeline run.
func UserMessage(err error) string {
	var pipelineErr *Error
	if errors.As(err, &pipelineErr) {
		return pipelineErr.UserMessage()
	}

	return fmt.Sprintf("Exception: %v", err)
}

func newError(kind Kind, state State, err error, sentinel error) *Error {
	if err == nil {
		err = sentinel
	} else if !errors.Is(err, sentinel) {
		err = fmt.Errorf("%w: %w", sentinel, err)
	}

	return &Error{Kind: kind, State: state, Err: err}
}

func initError(err error) *Error {
	if errors.Is(err, domain.ErrMissingCredential) {
		return newError(KindMissingCredential, StateIdle, err, domain.ErrMissingCredential)
	}

	return newError(KindEndpointInitFailed, StateIdle, err, domain.ErrEndpointInitFailed)
}
