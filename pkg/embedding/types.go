package embedding

import (
	"context"
	"errors"
)

// Dimension is the output dimensionality of the embedding model.
// The books table's vector column is declared with the same size.
const Dimension = 1536

// ErrEmptyText is returned when the caller asks to embed an empty or
// whitespace-only string. No remote call is made in that case.
var ErrEmptyText = errors.New("embedding: text is empty")

// Provider contract
//
//go:generate mockgen -source=types.go -destination=mock_provider.go -package=embedding
type Provider interface {
	// Embed converts a single text into a fixed-length vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts several texts in one request, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
