package llm

import (
	"context"
	"errors"
)

// Client abstracts the narrative inference provider. Complete sends one prompt
// and returns the raw reply, which is expected to be JSON.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

// Complete returns ErrNotImplemented.
func (PlaceholderClient) Complete(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	return "", ErrNotImplemented
}
