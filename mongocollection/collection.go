// Package mongocollection exposes a MongoDB collection as a
// docpager.Collection.
//
//	posts := mongocollection.New[bson.M](db.Collection("posts"),
//		mongocollection.WithRef("author", mongocollection.Ref{Collection: "users"}),
//	)
//	res, err := docpager.New[bson.M](posts).Paginate(ctx, docpager.Filter{"status": "active"}, opts)
//
// Queries without populations run as a plain find. Populations switch the
// query to an aggregation: $match, $sort, $skip, $limit, $project, then one
// $lookup per population ($unwind for single references). Lookups with a
// projection combine localField/foreignField with a sub-pipeline, which
// needs MongoDB 5.0 or newer.
package mongocollection

import (
	"context"
	"errors"

	"github.com/Alp4ka/docpager"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrUnknownRef is returned when a population path has no registered Ref.
var ErrUnknownRef = errors.New("unknown reference")

// Ref describes how a path references documents of another collection.
type Ref struct {
	// Collection holding the referenced documents.
	Collection string
	// LocalField holding the reference. Defaults to the population path.
	LocalField string
	// ForeignField matched against LocalField. Defaults to "_id".
	ForeignField string
	// Many keeps the lookup result as an array.
	Many bool
}

type (
	Option func(*collOptions)

	collOptions struct {
		refs   map[string]Ref
		logger zerolog.Logger
	}
)

// WithRef registers a populatable path.
func WithRef(path string, ref Ref) Option {
	return func(o *collOptions) {
		if ref.LocalField == "" {
			ref.LocalField = path
		}
		if ref.ForeignField == "" {
			ref.ForeignField = docpager.DefaultIDField
		}

		o.refs[path] = ref
	}
}

// WithLogger sets the logger used to trace executed queries.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *collOptions) {
		o.logger = logger.With().Str("component", "mongo").Logger()
	}
}

// Collection implements docpager.Collection on top of a *mongo.Collection.
type Collection[T any] struct {
	coll   *mongo.Collection
	refs   map[string]Ref
	logger zerolog.Logger
}

// New wraps coll. Options register populatable references and a logger.
func New[T any](coll *mongo.Collection, opts ...Option) *Collection[T] {
	o := collOptions{
		refs:   make(map[string]Ref),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Collection[T]{
		coll:   coll,
		refs:   o.refs,
		logger: o.logger,
	}
}

// Find - implements docpager.Collection.
func (c *Collection[T]) Find(filter docpager.Filter, findOptions *docpager.FindOptions) docpager.Query[T] {
	return &Query[T]{
		c:           c,
		filter:      filter,
		findOptions: findOptions,
	}
}

// Count - implements docpager.Collection.
func (c *Collection[T]) Count(ctx context.Context, filter docpager.Filter) (int64, error) {
	return c.coll.CountDocuments(ctx, filterDoc(filter))
}

// filterDoc converts filter to a BSON document. The driver rejects a nil
// filter, so an empty one matches everything.
func filterDoc(filter docpager.Filter) bson.M {
	if filter == nil {
		return bson.M{}
	}

	return bson.M(filter)
}

var _ docpager.Collection[any] = (*Collection[any])(nil)
