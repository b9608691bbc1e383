// Package search implements the semantic search pipeline: embedding the
// query, ensuring embedding coverage of the stored books, delegating
// nearest-neighbor lookup to the database, replenishing thin result sets
// from the catalog, re-ranking in process and logging every search.
//
// The pipeline favors degradation over failure: once the query embedding
// exists, per-record errors are skipped and counted, and a failed
// replenishment falls back to whatever candidates were already found.
package search
