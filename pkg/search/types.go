package search

import (
	"context"
	"errors"

	"github.com/gutensearch/gutensearch/pkg/books"
	"github.com/gutensearch/gutensearch/pkg/catalog"
)

// ErrInvalidQuery is returned for empty or whitespace-only queries, before
// any embedding or store call is made. The server maps it to a client error.
var ErrInvalidQuery = errors.New("search: query must not be empty")

// Logger defines the interface for logging operations in the search package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BookStore is the slice of the book store the orchestrator needs.
type BookStore interface {
	Upsert(ctx context.Context, book *books.Book) error
	UpdateEmbedding(ctx context.Context, gutenbergID int64, vec []float32) error
	MissingEmbeddings(ctx context.Context, limit int) ([]books.Book, error)
	KnownGutenbergIDs(ctx context.Context) (map[int64]struct{}, error)
	SearchBySimilarity(ctx context.Context, queryVec []float32, threshold float64, count int) ([]books.SimilarityResult, error)
	LogSearch(ctx context.Context, log *books.SearchLog) error
}

// CatalogFetcher pages new records out of the external catalog.
type CatalogFetcher interface {
	FetchNew(ctx context.Context, want int, known map[int64]struct{}) ([]catalog.Record, error)
}

// SeedResult reports one batch catalog ingestion.
type SeedResult struct {
	Requested int `json:"requested"`
	Fetched   int `json:"fetched"`
	Upserted  int `json:"upserted"`
	Errored   int `json:"errored"`
}

// EmbedAllResult reports one embedding backfill run.
type EmbedAllResult struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Errored   int `json:"errored"`
}
