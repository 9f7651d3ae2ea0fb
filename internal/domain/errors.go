package domain

import "errors"

var (
	ErrMissingCredential   = errors.New("missing credential")
	ErrEndpointInitFailed  = errors.New("endpoint init failed")
	ErrInvalidURL          = errors.New("invalid URL")
	ErrContentUnavailable  = errors.New("content unavailable")
	ErrEndpointUnavailable = errors.New("endpoint unavailable")
)
