// Package store defines the persistence adapter each resource service talks to.
//
// A Collection is bound to exactly one table. Every failure it returns is an
// *appErrors.Error, so callers switch on appErrors.KindOf instead of inspecting
// driver codes.
package store

import (
	"context"

	appErrors "github.com/unclebandit/storefront-backend/internal/errors"
)

// Filter is a set of column equality predicates joined with AND.
type Filter map[string]any

// Values maps column names to the values written by an insert or update.
type Values map[string]any

// Mutation is the outcome of an update or delete: how many rows were touched
// and the rows as they were returned by the store.
type Mutation[T any] struct {
	Affected int
	Records  []T
}

// Collection is the capability a resource service needs from its store.
type Collection[T any] interface {
	// Find returns every record matching where. No match is an empty slice.
	Find(ctx context.Context, where Filter) ([]T, error)
	// Get returns the record with the given id or a KindNotFound error.
	Get(ctx context.Context, id string) (T, error)
	// Insert writes values and returns the stored record with its assigned id.
	Insert(ctx context.Context, values Values) (T, error)
	Update(ctx context.Context, where Filter, values Values) (Mutation[T], error)
	Delete(ctx context.Context, where Filter) (Mutation[T], error)
}

// ByID is the filter used by single-record operations.
func ByID(id string) Filter {
	return Filter{"id": id}
}

// Single resolves a mutation that must touch exactly one row.
// Zero rows is NotFound; more than one is an integrity violation.
func Single[T any](m Mutation[T], entity string) (T, error) {
	var zero T
	switch {
	case m.Affected == 0:
		return zero, appErrors.NewNotFound(entity)
	case m.Affected > 1 || len(m.Records) != 1:
		return zero, appErrors.NewIntegrity(m.Affected)
	default:
		return m.Records[0], nil
	}
}
