package embedding

import (
	"context"
)

// Client is a thin facade that delegates all requests to the underlying Provider.
type Client struct {
	provider Provider
}

// NewClient constructs a Client from an already-instantiated Provider.
// Provider is created by FX (NewOpenAIProvider).
func NewClient(p Provider) *Client {
	return &Client{provider: p}
}

// Embed converts one text into a vector.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	return c.provider.Embed(ctx, text)
}

// EmbedBatch delegates to the underlying provider.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.provider.EmbedBatch(ctx, texts)
}
