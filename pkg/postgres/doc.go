// Package postgres provides a thread-safe GORM wrapper for PostgreSQL with
// connection monitoring and automatic reconnection.
//
// The wrapper exposes standardized CRUD helpers, a fluent query builder, raw
// SQL execution, transactions and AutoMigrate. Connection health is checked
// every 10 seconds by a monitor goroutine; failures trigger a retry loop that
// replaces the underlying connection under a write lock. Both goroutines are
// registered on the fx lifecycle and drain on shutdown.
//
// Database-specific failures are translated into the package's sentinel
// errors (ErrRecordNotFound, ErrDuplicateKey, ...) via TranslateError, so
// callers never match on driver error strings.
package postgres
