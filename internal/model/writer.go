package model

import "context"

// RowWriter defines a generic interface for committing a batch of canonical
// rows to a persistent store. Rows within a batch are committed in order.
type RowWriter interface {
	Commit(ctx context.Context, rows []CanonicalRow) error

	// Close releases the underlying connection.
	Close() error
}
