// Package books holds the persisted domain model: Book rows with optional
// pgvector embeddings, append-only SearchLog rows, and the Store that backs
// every read and write. Nearest-neighbor ranking is delegated to the
// database-side search_books_by_similarity function installed at migration
// time.
package books
