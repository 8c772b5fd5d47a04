package types

import "errors"

var (
	// ErrLLMUnavailable means the text generation provider could not be reached,
	// timed out, or is not configured.
	ErrLLMUnavailable = errors.New("llm service unavailable")
	// ErrLLMMalformedOutput means the provider answered but the payload did not
	// match the expected structure.
	ErrLLMMalformedOutput = errors.New("llm returned malformed output")
	ErrPOINotFound        = errors.New("point of interest not found")
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
)
