// Package gormcollection exposes a GORM-scoped table as a docpager.Collection.
//
// The *gorm.DB handed to New must already point at a table, either through
// Model or Table:
//
//	posts := gormcollection.New[Post](db.Model(&Post{}))
//	res, err := docpager.New[Post](posts).Paginate(ctx, docpager.Filter{"status": "active"}, opts)
//
// Option mapping:
//   - Filter: Where(map) equality conditions.
//   - Select: included fields go to Select, excluded fields to Omit.
//   - Sort: docpager.Orderings.Apply.
//   - Skip/Limit: Offset/Limit.
//   - Lean: hooks (AfterFind and friends) are skipped.
//   - Populate: Preload(path); the path is the association field name.
//   - FindOptions.MaxTime: context deadline for the find.
//
// Collation, Hint, Comment and AllowDiskUse have no GORM equivalent and are
// ignored.
package gormcollection

import (
	"context"

	"github.com/Alp4ka/docpager"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type (
	Option func(*options)

	options struct {
		logger *zerolog.Logger
	}
)

// WithLogger routes GORM statement logging through logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// Collection implements docpager.Collection on top of a GORM scope.
type Collection[T any] struct {
	db *gorm.DB
}

// New wraps a table-scoped *gorm.DB.
func New[T any](db *gorm.DB, opts ...Option) *Collection[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	session := &gorm.Session{}
	if o.logger != nil {
		session.Logger = NewLogger(*o.logger)
	}

	return &Collection[T]{
		db: db.Session(session),
	}
}

// Find - implements docpager.Collection.
func (c *Collection[T]) Find(filter docpager.Filter, findOptions *docpager.FindOptions) docpager.Query[T] {
	return &Query[T]{
		db:          c.scope(filter),
		findOptions: findOptions,
	}
}

// Count - implements docpager.Collection.
func (c *Collection[T]) Count(ctx context.Context, filter docpager.Filter) (int64, error) {
	var count int64
	err := c.scope(filter).WithContext(ctx).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// scope returns a fresh statement with filter applied, so find and count
// never share conditions.
func (c *Collection[T]) scope(filter docpager.Filter) *gorm.DB {
	db := c.db.Session(&gorm.Session{})
	if len(filter) > 0 {
		db = db.Where(map[string]any(filter))
	}

	return db
}

var _ docpager.Collection[any] = (*Collection[any])(nil)
