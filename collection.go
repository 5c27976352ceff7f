package docpager

import "context"

type (
	// Filter is a backend query predicate. A nil or empty filter matches every
	// document.
	Filter map[string]any

	// Record is a plain document as returned in lean mode by map-decoding
	// backends.
	Record map[string]any
)

// Query is a configurable find operation. Every configuration method returns
// the query so calls can be chained; Exec runs it.
type Query[T any] interface {
	Select(projection Projection) Query[T]
	Sort(orderings Orderings) Query[T]
	Skip(n int) Query[T]
	Limit(n int) Query[T]
	Lean(lean bool) Query[T]
	Populate(population Population) Query[T]
	Exec(ctx context.Context) ([]T, error)
}

// Collection is the document-store capability a Paginator is attached to.
type Collection[T any] interface {
	// Find starts a query over documents matching filter.
	Find(filter Filter, findOptions *FindOptions) Query[T]
	// Count returns the number of documents matching filter, ignoring any
	// skip or limit.
	Count(ctx context.Context, filter Filter) (int64, error)
}
