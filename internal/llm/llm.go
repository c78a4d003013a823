// Package llm provides chat completion via langchaingo.
//
// The package treats the completion service as a best-effort oracle that
// returns untyped text. Callers own the parsing of replies and the fallback
// policy when a call fails; this package only moves prompts out and text
// back in.
//
// Example:
//
//	client, err := llm.New(llm.Config{
//	    Provider: "openai",
//	    BaseURL:  "https://api.openai.com/v1",
//	    APIKey:   apiKey,
//	    Model:    "gpt-4o-mini",
//	    Timeout:  60 * time.Second,
//	})
package llm

import (
	"context"
	"errors"
)

// Request describes a single chat completion call.
type Request struct {
	// System is the system message content. Empty means no system message.
	System string
	// User is the user message content.
	User string
	// Temperature overrides the provider default when non-nil.
	Temperature *float64
	// MaxTokens caps the reply length when positive.
	MaxTokens int
}

// Completer issues chat completion calls.
//
// Implementations must be safe for concurrent use: one client is shared by
// every in-flight request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrEmptyReply is returned when the completion service answers with no
// choices or an empty message.
var ErrEmptyReply = errors.New("llm: empty reply")

// Temperature returns a pointer suitable for Request.Temperature.
func Temperature(t float64) *float64 {
	return &t
}
