package search

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/gutensearch/gutensearch/pkg/books"
)

// backfillWorkers bounds concurrent embedding calls during EmbedAll.
const backfillWorkers = 4

// Seed ingests up to count catalog records that are not yet in the store.
// Pages already fully represented in the store contribute nothing and paging
// advances past them. A partial catalog fetch still seeds what arrived.
func (s *Service) Seed(ctx context.Context, count int) (*SeedResult, error) {
	if count <= 0 {
		return nil, fmt.Errorf("search: seed count must be positive, got %d", count)
	}

	ctx, span := s.tracer.StartSpan(ctx, "search.seed")
	defer span.End()

	known, err := s.store.KnownGutenbergIDs(ctx)
	if err != nil {
		s.tracer.RecordError(span, err)
		return nil, fmt.Errorf("search: seed: %w", err)
	}

	records, fetchErr := s.catalog.FetchNew(ctx, count, known)
	if fetchErr != nil && len(records) == 0 {
		s.tracer.RecordError(span, fetchErr)
		return nil, fmt.Errorf("search: seed fetch: %w", fetchErr)
	}
	s.metrics.CatalogRecordsFetched.Add(float64(len(records)))

	result := &SeedResult{
		Requested: count,
		Fetched:   len(records),
	}

	for _, rec := range records {
		book := books.FromRecord(rec)
		if err := s.store.Upsert(ctx, &book); err != nil {
			result.Errored++
			s.logger.Warn("seed upsert failed", err, map[string]interface{}{"gutenberg_id": rec.ID})
			continue
		}
		result.Upserted++
	}

	s.logger.Info("catalog seed finished", nil, map[string]interface{}{
		"requested": result.Requested,
		"fetched":   result.Fetched,
		"upserted":  result.Upserted,
		"errored":   result.Errored,
	})
	return result, nil
}

// EmbedAll backfills every book that still lacks an embedding, using a small
// bounded worker group. Per-record failures are counted and skipped, never
// retried, and never abort the run.
func (s *Service) EmbedAll(ctx context.Context) (*EmbedAllResult, error) {
	ctx, span := s.tracer.StartSpan(ctx, "search.embed_all")
	defer span.End()

	var processed, skipped, errored atomic.Int64

	// Failed and skipped records stay un-embedded and would come back on
	// every re-selection; each gutenberg id gets exactly one attempt.
	attempted := make(map[int64]struct{})

	for {
		missing, err := s.store.MissingEmbeddings(ctx, s.cfg.CoverageBatch)
		if err != nil {
			s.tracer.RecordError(span, err)
			return nil, fmt.Errorf("search: embed all: %w", err)
		}

		fresh := make([]books.Book, 0, len(missing))
		for _, book := range missing {
			if _, ok := attempted[book.GutenbergID]; ok {
				continue
			}
			attempted[book.GutenbergID] = struct{}{}
			fresh = append(fresh, book)
		}
		if len(fresh) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(backfillWorkers)

		for _, book := range fresh {
			book := book
			g.Go(func() error {
				if book.Title == "" && book.Author == "" {
					skipped.Add(1)
					return nil
				}
				if err := s.embedBook(gctx, book, "backfill"); err != nil {
					errored.Add(1)
					s.logger.Warn("backfill embedding failed", err, map[string]interface{}{
						"gutenberg_id": book.GutenbergID,
					})
					return nil
				}
				processed.Add(1)
				return nil
			})
		}

		// Workers never return errors; Wait only observes ctx cancellation.
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("search: embed all: %w", err)
		}

		if len(missing) < s.cfg.CoverageBatch {
			break
		}
	}

	result := &EmbedAllResult{
		Processed: int(processed.Load()),
		Skipped:   int(skipped.Load()),
		Errored:   int(errored.Load()),
	}

	s.logger.Info("embedding backfill finished", nil, map[string]interface{}{
		"processed": result.Processed,
		"skipped":   result.Skipped,
		"errored":   result.Errored,
	})
	return result, nil
}
