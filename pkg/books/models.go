package books

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/gutensearch/gutensearch/pkg/catalog"
)

// Book is one catalog work persisted in the books table. The gutenberg_id is
// the immutable external identifier; rows are created on first catalog fetch,
// updated via upsert on re-fetch, and never deleted by the application. The
// embedding column is populated asynchronously after creation and stays NULL
// until then.
type Book struct {
	ID          int64            `gorm:"primaryKey" json:"id"`
	GutenbergID int64            `gorm:"column:gutenberg_id;uniqueIndex;not null" json:"gutenbergId"`
	Title       string           `gorm:"not null" json:"title"`
	Author      string           `json:"author"`
	Description string           `gorm:"type:text" json:"description"`
	Subjects    pq.StringArray   `gorm:"type:text[]" json:"subjects,omitempty"`
	Languages   pq.StringArray   `gorm:"type:text[]" json:"languages,omitempty"`
	Bookshelves pq.StringArray   `gorm:"type:text[]" json:"bookshelves,omitempty"`
	Embedding   *pgvector.Vector `gorm:"type:vector(1536)" json:"-"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// EmbeddingText is the text fed to the embedding model for this book.
// It must stay deterministic: re-embedding the same row yields an
// equivalent vector, which is what makes concurrent embedding writes safe.
func (b Book) EmbeddingText() string {
	parts := []string{b.Title, "by", b.Author + "."}
	if b.Description != "" {
		parts = append(parts, b.Description)
	}
	return strings.Join(parts, " ")
}

// FromRecord converts a raw catalog record into a Book row, generating the
// textual description from the record's metadata.
func FromRecord(rec catalog.Record) Book {
	return Book{
		GutenbergID: rec.ID,
		Title:       rec.Title,
		Author:      rec.PrimaryAuthor(),
		Description: buildDescription(rec),
		Subjects:    pq.StringArray(rec.Subjects),
		Languages:   pq.StringArray(rec.Languages),
		Bookshelves: pq.StringArray(rec.Bookshelves),
	}
}

func buildDescription(rec catalog.Record) string {
	if len(rec.Summaries) > 0 && rec.Summaries[0] != "" {
		return rec.Summaries[0]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s by %s.", rec.Title, rec.PrimaryAuthor())
	if len(rec.Subjects) > 0 {
		fmt.Fprintf(&sb, " Subjects: %s.", strings.Join(rec.Subjects, "; "))
	}
	if len(rec.Bookshelves) > 0 {
		fmt.Fprintf(&sb, " Bookshelves: %s.", strings.Join(rec.Bookshelves, "; "))
	}
	return sb.String()
}

// SearchLog is an immutable record of one search request. Rows are inserted
// once and never updated or deleted by the application.
type SearchLog struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Query         string    `gorm:"not null" json:"query"`
	ResultsCount  int       `json:"resultsCount"`
	TopSimilarity float64   `json:"topSimilarity"`
	SearchTimeMs  int64     `json:"searchTimeMs"`
	CreatedAt     time.Time `json:"createdAt"`
}

// BeforeCreate assigns the uuid primary key.
func (l *SearchLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// SimilarityResult is the transient projection of a Book plus its computed
// similarity score in [0,1]. It is produced per request and never persisted;
// the raw embedding is stripped from the JSON payload.
type SimilarityResult struct {
	Book
	Similarity float64 `json:"similarity"`
}
