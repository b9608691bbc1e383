package postgres

import (
	"context"

	"gorm.io/gorm"
)

// Query provides a flexible way to build complex queries.
// It returns a QueryBuilder which can be used to chain query methods in a
// fluent interface. The method acquires a read lock on the database
// connection that is released when a terminal method is called.
//
// Example:
//
//	books := []Book{}
//	err := db.Query(ctx).
//	    Where("embedding IS NULL").
//	    Order("id ASC").
//	    Limit(50).
//	    Find(&books)
func (p *Postgres) Query(ctx context.Context) *QueryBuilder {
	p.mu.RLock() // released by the terminal method
	return &QueryBuilder{
		db:      p.client.WithContext(ctx),
		release: p.mu.RUnlock,
	}
}

// QueryBuilder provides a fluent interface for building database queries.
// It wraps GORM's query building capabilities with thread-safety and
// automatic lock release.
type QueryBuilder struct {
	db      *gorm.DB
	release func()
}

// Model declares the model the query operates on. Required for terminal
// methods that cannot infer the table from their destination, such as Pluck.
func (qb *QueryBuilder) Model(value interface{}) *QueryBuilder {
	qb.db = qb.db.Model(value)
	return qb
}

// Select specifies fields to be selected in the query.
func (qb *QueryBuilder) Select(query interface{}, args ...interface{}) *QueryBuilder {
	qb.db = qb.db.Select(query, args...)
	return qb
}

// Where adds a WHERE condition to the query.
// Multiple Where calls are combined with AND logic.
func (qb *QueryBuilder) Where(query interface{}, args ...interface{}) *QueryBuilder {
	qb.db = qb.db.Where(query, args...)
	return qb
}

// Order specifies the ordering of results.
func (qb *QueryBuilder) Order(value interface{}) *QueryBuilder {
	qb.db = qb.db.Order(value)
	return qb
}

// Limit caps the number of returned rows.
func (qb *QueryBuilder) Limit(limit int) *QueryBuilder {
	qb.db = qb.db.Limit(limit)
	return qb
}

// Find is a terminal method that executes the query and scans all matching
// rows into dest.
func (qb *QueryBuilder) Find(dest interface{}) error {
	defer qb.release()
	return qb.db.Find(dest).Error
}

// First is a terminal method that executes the query and scans the first
// matching row into dest.
func (qb *QueryBuilder) First(dest interface{}) error {
	defer qb.release()
	return qb.db.First(dest).Error
}

// Pluck is a terminal method that queries a single column into dest.
func (qb *QueryBuilder) Pluck(column string, dest interface{}) error {
	defer qb.release()
	return qb.db.Pluck(column, dest).Error
}
