package books

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/gutensearch/gutensearch/pkg/postgres"
)

// Logger defines the interface for logging operations in the books package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Store persists books and search logs. Every call hits the backing store;
// there is no in-process caching. Concurrent upserts for the same
// gutenberg_id are last-write-wins, which is acceptable because the
// operation is idempotent per catalog id.
type Store struct {
	db     *postgres.Postgres
	logger Logger
}

// NewStore constructs the Store.
func NewStore(db *postgres.Postgres, logger Logger) *Store {
	return &Store{db: db, logger: logger}
}

// upsertColumns are the columns refreshed when a known gutenberg_id is
// fetched again. The embedding is deliberately absent: a re-fetch must not
// wipe an already computed vector.
var upsertColumns = []string{
	"title", "author", "description", "subjects", "languages", "bookshelves", "updated_at",
}

const createVectorExtension = `CREATE EXTENSION IF NOT EXISTS vector`

// CREATE OR REPLACE cannot change a function's return row type, so the old
// definition is dropped before installing.
const dropSearchFunction = `DROP FUNCTION IF EXISTS search_books_by_similarity(vector, double precision, integer)`

// searchFunction is the database-side similarity routine. Rows with a NULL
// embedding are excluded, similarity is 1 - cosine_distance, and results
// come back in ascending distance order capped at match_count.
const searchFunction = `
CREATE OR REPLACE FUNCTION search_books_by_similarity(
    query_embedding vector(1536),
    match_threshold double precision DEFAULT 0,
    match_count integer DEFAULT 10
)
RETURNS TABLE (
    id bigint,
    gutenberg_id bigint,
    title text,
    author text,
    description text,
    subjects text[],
    languages text[],
    bookshelves text[],
    embedding vector(1536),
    similarity double precision,
    created_at timestamptz,
    updated_at timestamptz
)
LANGUAGE sql STABLE
AS $$
    SELECT b.id,
           b.gutenberg_id,
           b.title,
           b.author,
           b.description,
           b.subjects,
           b.languages,
           b.bookshelves,
           b.embedding,
           1 - (b.embedding <=> query_embedding) AS similarity,
           b.created_at,
           b.updated_at
    FROM books b
    WHERE b.embedding IS NOT NULL
      AND 1 - (b.embedding <=> query_embedding) >= match_threshold
    ORDER BY b.embedding <=> query_embedding
    LIMIT match_count
$$`

// Migrate installs the pgvector extension, the table schemas and the
// similarity search function. Safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.Exec(ctx, createVectorExtension); err != nil {
		return fmt.Errorf("books: create vector extension: %w", err)
	}

	if err := s.db.Migrate(&Book{}, &SearchLog{}); err != nil {
		return fmt.Errorf("books: migrate schemas: %w", err)
	}

	if err := s.db.Exec(ctx, dropSearchFunction); err != nil {
		return fmt.Errorf("books: drop similarity function: %w", err)
	}
	if err := s.db.Exec(ctx, searchFunction); err != nil {
		return fmt.Errorf("books: install similarity function: %w", err)
	}

	s.logger.Info("book store migrated", nil, nil)
	return nil
}

// Upsert inserts the book or refreshes its metadata when the gutenberg_id
// already exists. The existing embedding, if any, is preserved.
func (s *Store) Upsert(ctx context.Context, book *Book) error {
	if err := s.db.Upsert(ctx, book, "gutenberg_id", upsertColumns); err != nil {
		return fmt.Errorf("books: upsert gutenberg_id %d: %w", book.GutenbergID, postgres.TranslateError(err))
	}
	return nil
}

// UpdateEmbedding overwrites the embedding column of the book identified by
// gutenberg_id. Overwriting is idempotent for a fixed model, so racing
// writers are harmless.
func (s *Store) UpdateEmbedding(ctx context.Context, gutenbergID int64, vec []float32) error {
	v := pgvector.NewVector(vec)
	err := s.db.UpdateWhere(ctx, &Book{}, map[string]interface{}{"embedding": v}, "gutenberg_id = ?", gutenbergID)
	if err != nil {
		return fmt.Errorf("books: update embedding for gutenberg_id %d: %w", gutenbergID, postgres.TranslateError(err))
	}
	return nil
}

// MissingEmbeddings returns up to limit books whose embedding column is
// still NULL, oldest rows first. Only the columns feeding EmbeddingText are
// selected.
func (s *Store) MissingEmbeddings(ctx context.Context, limit int) ([]Book, error) {
	var out []Book
	err := s.db.Query(ctx).
		Select("id", "gutenberg_id", "title", "author", "description").
		Where("embedding IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&out)
	if err != nil {
		return nil, fmt.Errorf("books: select missing embeddings: %w", postgres.TranslateError(err))
	}
	return out, nil
}

// All returns every book row.
func (s *Store) All(ctx context.Context) ([]Book, error) {
	var out []Book
	if err := s.db.Find(ctx, &out); err != nil {
		return nil, fmt.Errorf("books: select all: %w", postgres.TranslateError(err))
	}
	return out, nil
}

// ByGutenbergID returns the single book with the given catalog id.
func (s *Store) ByGutenbergID(ctx context.Context, gutenbergID int64) (*Book, error) {
	var book Book
	err := s.db.Query(ctx).
		Where("gutenberg_id = ?", gutenbergID).
		First(&book)
	if err != nil {
		return nil, fmt.Errorf("books: select gutenberg_id %d: %w", gutenbergID, postgres.TranslateError(err))
	}
	return &book, nil
}

// KnownGutenbergIDs returns the set of catalog ids already present, used to
// deduplicate seeding fetches.
func (s *Store) KnownGutenbergIDs(ctx context.Context) (map[int64]struct{}, error) {
	var ids []int64
	err := s.db.Query(ctx).
		Model(&Book{}).
		Pluck("gutenberg_id", &ids)
	if err != nil {
		return nil, fmt.Errorf("books: select known ids: %w", postgres.TranslateError(err))
	}

	known := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	return known, nil
}

// similarityRow matches the row shape of search_books_by_similarity. The
// embedding comes back cast to text so re-ranking can parse it regardless of
// driver-side vector support.
type similarityRow struct {
	ID          int64
	GutenbergID int64
	Title       string
	Author      string
	Description string
	Subjects    pq.StringArray `gorm:"type:text[]"`
	Languages   pq.StringArray `gorm:"type:text[]"`
	Bookshelves pq.StringArray `gorm:"type:text[]"`
	Embedding   string
	Similarity  float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SearchBySimilarity delegates nearest-neighbor search to the database-side
// function and returns the ranked candidates, including their stored
// vectors for in-process re-ranking.
func (s *Store) SearchBySimilarity(ctx context.Context, queryVec []float32, threshold float64, count int) ([]SimilarityResult, error) {
	var rows []similarityRow
	err := s.db.Raw(ctx, &rows,
		`SELECT id, gutenberg_id, title, author, description,
		        subjects, languages, bookshelves,
		        embedding::text AS embedding, similarity,
		        created_at, updated_at
		 FROM search_books_by_similarity(?::vector, ?, ?)`,
		pgvector.NewVector(queryVec), threshold, count)
	if err != nil {
		return nil, fmt.Errorf("books: similarity search: %w", postgres.TranslateError(err))
	}

	out := make([]SimilarityResult, 0, len(rows))
	for _, row := range rows {
		res := SimilarityResult{
			Book: Book{
				ID:          row.ID,
				GutenbergID: row.GutenbergID,
				Title:       row.Title,
				Author:      row.Author,
				Description: row.Description,
				Subjects:    row.Subjects,
				Languages:   row.Languages,
				Bookshelves: row.Bookshelves,
				CreatedAt:   row.CreatedAt,
				UpdatedAt:   row.UpdatedAt,
			},
			Similarity: row.Similarity,
		}
		if vec, err := ParseVector(row.Embedding); err == nil {
			v := pgvector.NewVector(vec)
			res.Embedding = &v
		} else {
			s.logger.Warn("stored embedding unparseable, keeping database score", err, map[string]interface{}{
				"gutenberg_id": row.GutenbergID,
			})
		}
		out = append(out, res)
	}
	return out, nil
}

// LogSearch appends one immutable search log row. Failures are the caller's
// policy decision; the store only reports them.
func (s *Store) LogSearch(ctx context.Context, log *SearchLog) error {
	if err := s.db.Create(ctx, log); err != nil {
		return fmt.Errorf("books: insert search log: %w", postgres.TranslateError(err))
	}
	return nil
}
