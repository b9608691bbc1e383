package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gutensearch/gutensearch/pkg/books"
	"github.com/gutensearch/gutensearch/pkg/metrics"
	"github.com/gutensearch/gutensearch/pkg/tracer"
)

// Service orchestrates one search request: embed the query, make sure the
// store is covered, run the database-side similarity search, replenish from
// the catalog when results are thin, re-rank in process, and log the search.
// All state is request-scoped; concurrent requests share nothing mutable.
type Service struct {
	embedder Embedder
	store    BookStore
	catalog  CatalogFetcher
	metrics  *metrics.Metrics
	tracer   *tracer.Tracer
	logger   Logger
	cfg      Config
}

// NewService constructs the orchestrator.
func NewService(embedder Embedder, store BookStore, fetcher CatalogFetcher, m *metrics.Metrics, t *tracer.Tracer, logger Logger, cfg Config) *Service {
	return &Service{
		embedder: embedder,
		store:    store,
		catalog:  fetcher,
		metrics:  m,
		tracer:   t,
		logger:   logger,
		cfg:      cfg,
	}
}

// Search runs the full pipeline for one query and returns at most
// cfg.ResultCap results sorted by descending similarity. An empty result
// list is a valid outcome; only stage failures before the candidate set
// exists surface as errors.
func (s *Service) Search(ctx context.Context, query string) ([]books.SimilarityResult, error) {
	if strings.TrimSpace(query) == "" {
		s.metrics.SearchesTotal.WithLabelValues("invalid_query").Inc()
		return nil, ErrInvalidQuery
	}

	ctx, span := s.tracer.StartSpan(ctx, "search.pipeline")
	defer span.End()

	started := time.Now()

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.metrics.SearchesTotal.WithLabelValues("error").Inc()
		s.tracer.RecordError(span, err)
		return nil, fmt.Errorf("search: embed query: %w", err)
	}

	// Books fetched but never embedded are invisible to the similarity
	// function, so cover them before searching.
	s.ensureCoverage(ctx)

	candidates, err := s.store.SearchBySimilarity(ctx, queryVec, s.cfg.FunctionThreshold, s.cfg.ResultCap)
	if err != nil {
		s.metrics.SearchesTotal.WithLabelValues("error").Inc()
		s.tracer.RecordError(span, err)
		return nil, fmt.Errorf("search: similarity search: %w", err)
	}

	replenished := false
	if s.insufficient(candidates) {
		replenished = true
		candidates = s.replenish(ctx, queryVec, candidates)
	}

	results := s.rank(queryVec, candidates)

	elapsed := time.Since(started)
	s.logSearch(ctx, query, results, elapsed)

	label := "false"
	if replenished {
		label = "true"
	}
	s.metrics.SearchDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	s.metrics.SearchesTotal.WithLabelValues("ok").Inc()

	return results, nil
}

// ensureCoverage embeds up to cfg.CoverageBatch books that still lack a
// vector. Per-record failures are skipped, never aborting the batch, and a
// failure to even list the batch only logs: the search can still run over
// whatever coverage exists.
func (s *Service) ensureCoverage(ctx context.Context) {
	missing, err := s.store.MissingEmbeddings(ctx, s.cfg.CoverageBatch)
	if err != nil {
		s.logger.Error("coverage check failed, searching existing embeddings only", err, nil)
		return
	}

	if len(missing) == 0 {
		return
	}

	var embedded, skipped int
	for _, book := range missing {
		if err := s.embedBook(ctx, book, "coverage"); err != nil {
			skipped++
			s.logger.Warn("skipping book after embedding failure", err, map[string]interface{}{
				"gutenberg_id": book.GutenbergID,
			})
			continue
		}
		embedded++
	}

	s.logger.Info("embedding coverage ensured", nil, map[string]interface{}{
		"embedded": embedded,
		"skipped":  skipped,
	})
}

// insufficient reports whether no candidate clears the quality bar.
func (s *Service) insufficient(candidates []books.SimilarityResult) bool {
	for _, c := range candidates {
		if c.Similarity >= s.cfg.QualityBar {
			return false
		}
	}
	return true
}

// replenish pulls unknown catalog records, persists and embeds them with a
// fixed pacing delay, then re-runs the similarity search and merges the new
// candidates with the already-found ones by book id. Every failure in here
// degrades: the worst case is returning the original candidate set.
func (s *Service) replenish(ctx context.Context, queryVec []float32, candidates []books.SimilarityResult) []books.SimilarityResult {
	known, err := s.store.KnownGutenbergIDs(ctx)
	if err != nil {
		s.logger.Error("replenish aborted, cannot list known books", err, nil)
		return candidates
	}

	records, err := s.catalog.FetchNew(ctx, s.cfg.ReplenishCount, known)
	if err != nil {
		// Partial pages still count; the fetcher already logged the cause.
		s.logger.Warn("replenish proceeding with partial catalog fetch", err, map[string]interface{}{
			"fetched": len(records),
		})
	}
	s.metrics.CatalogRecordsFetched.Add(float64(len(records)))

	for i, rec := range records {
		book := books.FromRecord(rec)
		if err := s.store.Upsert(ctx, &book); err != nil {
			s.logger.Warn("skipping catalog record after upsert failure", err, map[string]interface{}{
				"gutenberg_id": rec.ID,
			})
			continue
		}
		if err := s.embedBook(ctx, book, "replenish"); err != nil {
			s.logger.Warn("skipping new book after embedding failure", err, map[string]interface{}{
				"gutenberg_id": rec.ID,
			})
		}
		if i < len(records)-1 {
			time.Sleep(s.cfg.ReplenishDelay)
		}
	}

	refreshed, err := s.store.SearchBySimilarity(ctx, queryVec, s.cfg.FunctionThreshold, s.cfg.ResultCap)
	if err != nil {
		s.logger.Error("re-search after replenish failed, keeping original candidates", err, nil)
		return candidates
	}

	return mergeByID(candidates, refreshed)
}

// rank recomputes similarity in process for every candidate whose stored
// vector is available, sorts descending, truncates to the cap, and strips
// the raw embeddings from the payload.
func (s *Service) rank(queryVec []float32, candidates []books.SimilarityResult) []books.SimilarityResult {
	for i := range candidates {
		if candidates[i].Embedding != nil {
			sim := books.CosineSimilarity(queryVec, candidates[i].Embedding.Slice())
			candidates[i].Similarity = clamp01(sim)
		} else {
			// No parseable vector: keep the database's score.
			candidates[i].Similarity = clamp01(candidates[i].Similarity)
		}
		candidates[i].Embedding = nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})

	if len(candidates) > s.cfg.ResultCap {
		candidates = candidates[:s.cfg.ResultCap]
	}
	return candidates
}

// logSearch appends the search log entry. Failures are reported but never
// fail the request.
func (s *Service) logSearch(ctx context.Context, query string, results []books.SimilarityResult, elapsed time.Duration) {
	var top float64
	if len(results) > 0 {
		top = results[0].Similarity
	}

	entry := &books.SearchLog{
		Query:         query,
		ResultsCount:  len(results),
		TopSimilarity: top,
		SearchTimeMs:  elapsed.Milliseconds(),
	}
	if err := s.store.LogSearch(ctx, entry); err != nil {
		s.logger.Error("search log insert failed", err, map[string]interface{}{"query": query})
	}
}

// embedBook computes and persists the embedding for one book.
func (s *Service) embedBook(ctx context.Context, book books.Book, path string) error {
	vec, err := s.embedder.Embed(ctx, book.EmbeddingText())
	if err != nil {
		return err
	}
	if err := s.store.UpdateEmbedding(ctx, book.GutenbergID, vec); err != nil {
		return err
	}
	s.metrics.EmbeddingsGenerated.WithLabelValues(path).Inc()
	return nil
}

// mergeByID combines two candidate sets, preferring entries from fresh when
// the same book appears in both.
func mergeByID(original, fresh []books.SimilarityResult) []books.SimilarityResult {
	seen := make(map[int64]struct{}, len(fresh))
	merged := make([]books.SimilarityResult, 0, len(original)+len(fresh))

	for _, c := range fresh {
		seen[c.ID] = struct{}{}
		merged = append(merged, c)
	}
	for _, c := range original {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		merged = append(merged, c)
	}
	return merged
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
