package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gutensearch/gutensearch/pkg/books"
	"github.com/gutensearch/gutensearch/pkg/catalog"
)

func TestSeedRejectsNonPositiveCount(t *testing.T) {
	svc := newTestService(t, embedFunc(nil), newFakeStore(), &fakeFetcher{}, testConfig())

	for _, count := range []int{0, -3} {
		_, err := svc.Seed(context.Background(), count)
		require.Error(t, err)
	}
}

func TestSeedSkipsKnownBooks(t *testing.T) {
	store := newFakeStore()
	store.addBook(1, "Already Here", []float32{1, 0})

	fetcher := &fakeFetcher{records: []catalog.Record{
		{ID: 1, Title: "Already Here"},
		{ID: 2, Title: "New One"},
		{ID: 3, Title: "Another New One"},
	}}
	svc := newTestService(t, embedFunc(nil), store, fetcher, testConfig())

	result, err := svc.Seed(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Requested)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 2, result.Upserted)
	assert.Zero(t, result.Errored)

	_, ok := fetcher.known[1]
	assert.True(t, ok, "already-stored ids are passed to the fetcher for dedup")
	assert.Len(t, store.byID, 3)
}

func TestSeedKeepsPartialFetch(t *testing.T) {
	fetcher := &fakeFetcher{
		records: []catalog.Record{{ID: 10, Title: "Made It Through"}},
		err:     errors.New("page 2 timed out"),
	}
	store := newFakeStore()
	svc := newTestService(t, embedFunc(nil), store, fetcher, testConfig())

	result, err := svc.Seed(context.Background(), 32)
	require.NoError(t, err, "a partial fetch still seeds what arrived")
	assert.Equal(t, 1, result.Fetched)
	assert.Equal(t, 1, result.Upserted)
}

func TestSeedFailsWhenNothingFetched(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("catalog unreachable")}
	svc := newTestService(t, embedFunc(nil), newFakeStore(), fetcher, testConfig())

	_, err := svc.Seed(context.Background(), 8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed fetch")
}

func TestEmbedAllBackfillsEverything(t *testing.T) {
	store := newFakeStore()
	for i := int64(1); i <= 7; i++ {
		store.addBook(i, fmt.Sprintf("Book %d", i), nil)
	}

	embedder := embedFunc(func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	})

	cfg := testConfig()
	cfg.CoverageBatch = 3
	svc := newTestService(t, embedder, store, &fakeFetcher{}, cfg)

	result, err := svc.EmbedAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, result.Processed)
	assert.Zero(t, result.Errored)
	assert.Len(t, store.vecs, 7)
}

func TestEmbedAllCountsFailuresWithoutRetrying(t *testing.T) {
	store := newFakeStore()
	store.addBook(1, "Fine Book", nil)
	store.addBook(2, "Cursed Book", nil)

	var cursedCalls int
	embedder := embedFunc(func(ctx context.Context, text string) ([]float32, error) {
		if strings.Contains(text, "Cursed") {
			cursedCalls++
			return nil, errors.New("model refused")
		}
		return []float32{1, 0}, nil
	})
	svc := newTestService(t, embedder, store, &fakeFetcher{}, testConfig())

	result, err := svc.EmbedAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Errored)
	assert.Equal(t, 1, cursedCalls, "failed records are not retried")
}

func TestEmbedAllAttemptsFailingRecordOnce(t *testing.T) {
	// The failing record keeps showing up in every re-selection of missing
	// embeddings; it must be called and counted exactly once across batches.
	store := newFakeStore()
	store.addBook(1, "Fine Book", nil)
	store.addBook(2, "Cursed Book", nil)
	for i := int64(3); i <= 5; i++ {
		store.addBook(i, fmt.Sprintf("Book %d", i), nil)
	}

	var cursedCalls int
	embedder := embedFunc(func(ctx context.Context, text string) ([]float32, error) {
		if strings.Contains(text, "Cursed") {
			cursedCalls++
			return nil, errors.New("model refused")
		}
		return []float32{1, 0}, nil
	})

	cfg := testConfig()
	cfg.CoverageBatch = 3
	svc := newTestService(t, embedder, store, &fakeFetcher{}, cfg)

	result, err := svc.EmbedAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, cursedCalls, "the failing record is attempted exactly once")
	assert.Equal(t, 1, result.Errored)
	assert.Equal(t, 4, result.Processed)
	assert.Len(t, store.vecs, 4)
}

func TestEmbedAllSkipsBlankBooks(t *testing.T) {
	store := newFakeStore()
	store.addBook(1, "Fine Book", nil)
	store.nextID++
	store.byID[2] = books.Book{ID: store.nextID, GutenbergID: 2}

	var embedCalls int
	embedder := embedFunc(func(ctx context.Context, text string) ([]float32, error) {
		embedCalls++
		return []float32{1, 0}, nil
	})
	svc := newTestService(t, embedder, store, &fakeFetcher{}, testConfig())

	result, err := svc.EmbedAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Skipped, "a book with no title and no author is skipped")
	assert.Equal(t, 1, embedCalls, "blank books never reach the embedder")
}

func TestEmbedAllTerminatesWhenBatchMakesNoProgress(t *testing.T) {
	store := newFakeStore()
	store.addBook(1, "Unembeddable", nil)

	embedder := embedFunc(func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("always fails")
	})

	cfg := testConfig()
	cfg.CoverageBatch = 1
	svc := newTestService(t, embedder, store, &fakeFetcher{}, cfg)

	result, err := svc.EmbedAll(context.Background())
	require.NoError(t, err, "a run over permanently failing records still terminates")
	assert.Zero(t, result.Processed)
	assert.Equal(t, 1, result.Errored)
}

func TestEmbedAllListFailure(t *testing.T) {
	store := newFakeStore()
	store.missErr = errors.New("select failed")
	svc := newTestService(t, embedFunc(nil), store, &fakeFetcher{}, testConfig())

	_, err := svc.EmbedAll(context.Background())
	require.Error(t, err)
}
