// Package catalog wraps the Gutendex book-catalog API.
//
// FetchNew pages through the catalog collecting records whose ids the caller
// does not already hold, Content proxies a book's plain-text body, and
// Summary degrades to an empty string when the upstream is unavailable.
// Page failures are never retried; partial results are returned instead.
package catalog
