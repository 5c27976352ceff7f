package gormcollection

import (
	"context"

	"github.com/Alp4ka/docpager"
	"gorm.io/gorm"
)

// Query implements docpager.Query by chaining GORM clauses.
type Query[T any] struct {
	db          *gorm.DB
	findOptions *docpager.FindOptions
}

// Select - implements docpager.Query.
func (q *Query[T]) Select(projection docpager.Projection) docpager.Query[T] {
	q.db = applyProjection(q.db, projection)

	return q
}

func applyProjection(db *gorm.DB, projection docpager.Projection) *gorm.DB {
	if included := projection.Included(); len(included) > 0 {
		db = db.Select(included)
	}
	if excluded := projection.Excluded(); len(excluded) > 0 {
		db = db.Omit(excluded...)
	}

	return db
}

// Sort - implements docpager.Query.
func (q *Query[T]) Sort(orderings docpager.Orderings) docpager.Query[T] {
	q.db = orderings.Apply(q.db)

	return q
}

// Skip - implements docpager.Query.
func (q *Query[T]) Skip(n int) docpager.Query[T] {
	if n > 0 {
		q.db = q.db.Offset(n)
	}

	return q
}

// Limit - implements docpager.Query.
func (q *Query[T]) Limit(n int) docpager.Query[T] {
	q.db = q.db.Limit(n)

	return q
}

// Lean - implements docpager.Query. GORM has no separate model-instance
// layer, so lean mode only skips model hooks.
func (q *Query[T]) Lean(lean bool) docpager.Query[T] {
	if lean {
		q.db = q.db.Session(&gorm.Session{SkipHooks: true})
	}

	return q
}

// Populate - implements docpager.Query.
func (q *Query[T]) Populate(population docpager.Population) docpager.Query[T] {
	if len(population.Select) == 0 {
		q.db = q.db.Preload(population.Path)
		return q
	}

	q.db = q.db.Preload(population.Path, func(tx *gorm.DB) *gorm.DB {
		return applyProjection(tx, population.Select)
	})

	return q
}

// Exec - implements docpager.Query.
func (q *Query[T]) Exec(ctx context.Context) ([]T, error) {
	if q.findOptions != nil && q.findOptions.MaxTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.findOptions.MaxTime)
		defer cancel()
	}

	db := q.db.WithContext(ctx)

	// GORM only scans rows into maps through *[]map[string]any.
	if _, ok := any(*new(T)).(docpager.Record); ok {
		var rows []map[string]any
		if err := db.Find(&rows).Error; err != nil {
			return nil, err
		}

		ret := make([]T, 0, len(rows))
		for _, row := range rows {
			ret = append(ret, any(docpager.Record(row)).(T))
		}

		return ret, nil
	}

	var ret []T
	if err := db.Find(&ret).Error; err != nil {
		return nil, err
	}

	return ret, nil
}

var _ docpager.Query[any] = (*Query[any])(nil)
