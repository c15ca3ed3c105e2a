// Package dao defines a minimal generic persistence contract shared by the
// supporting stores of the approval service (event dedupe ledger, in-memory
// request bookkeeping). Domain-specific stores add their own operations on
// top; this interface only covers the common CRUD surface.
package dao

import (
	"context"
)

// Service is a generic keyed store for entities of type T.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
