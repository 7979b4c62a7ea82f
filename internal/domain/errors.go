package domain

import "errors"

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrEntryNotFound       = errors.New("entry not found")
	ErrInvalidURL          = errors.New("invalid url")
	ErrInvalidSessionID    = errors.New("invalid session id")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrEmptyResult         = errors.New("provider returned empty result")
)
