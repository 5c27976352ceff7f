package mongocollection

import (
	"context"
	"fmt"

	"github.com/Alp4ka/docpager"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Query implements docpager.Query. Clauses are collected and translated to
// find options or an aggregation pipeline on Exec.
type Query[T any] struct {
	c           *Collection[T]
	filter      docpager.Filter
	findOptions *docpager.FindOptions

	projection  docpager.Projection
	orderings   docpager.Orderings
	skip        int
	limit       int
	lean        bool
	populations []docpager.Population
}

// Select - implements docpager.Query.
func (q *Query[T]) Select(projection docpager.Projection) docpager.Query[T] {
	q.projection = projection
	return q
}

// Sort - implements docpager.Query.
func (q *Query[T]) Sort(orderings docpager.Orderings) docpager.Query[T] {
	q.orderings = orderings
	return q
}

// Skip - implements docpager.Query.
func (q *Query[T]) Skip(n int) docpager.Query[T] {
	q.skip = n
	return q
}

// Limit - implements docpager.Query.
func (q *Query[T]) Limit(n int) docpager.Query[T] {
	q.limit = n
	return q
}

// Lean - implements docpager.Query. The driver decodes straight into T, so
// there is no heavier representation to opt out of.
func (q *Query[T]) Lean(lean bool) docpager.Query[T] {
	q.lean = lean
	return q
}

// Populate - implements docpager.Query.
func (q *Query[T]) Populate(population docpager.Population) docpager.Query[T] {
	q.populations = append(q.populations, population)
	return q
}

// Exec - implements docpager.Query.
func (q *Query[T]) Exec(ctx context.Context) ([]T, error) {
	var (
		cursor *mongo.Cursor
		err    error
	)

	if len(q.populations) == 0 {
		q.c.logger.Debug().
			Str("collection", q.collectionName()).
			Interface("filter", q.filter).
			Int("skip", q.skip).
			Int("limit", q.limit).
			Bool("lean", q.lean).
			Msg("find")

		cursor, err = q.c.coll.Find(ctx, filterDoc(q.filter), q.buildFindOptions())
	} else {
		pipeline, pErr := q.buildPipeline()
		if pErr != nil {
			return nil, pErr
		}

		q.c.logger.Debug().
			Str("collection", q.collectionName()).
			Int("stages", len(pipeline)).
			Bool("lean", q.lean).
			Msg("aggregate")

		cursor, err = q.c.coll.Aggregate(ctx, pipeline, q.buildAggregateOptions())
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ret []T
	if err := cursor.All(ctx, &ret); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}

	return ret, nil
}

func (q *Query[T]) collectionName() string {
	if q.c.coll == nil {
		return ""
	}

	return q.c.coll.Name()
}

func (q *Query[T]) buildFindOptions() *options.FindOptions {
	opts := options.Find()
	if projection := projectionDoc(q.projection); len(projection) > 0 {
		opts.SetProjection(projection)
	}
	if len(q.orderings) > 0 {
		opts.SetSort(sortDoc(q.orderings))
	}
	if q.skip > 0 {
		opts.SetSkip(int64(q.skip))
	}
	if q.limit > 0 {
		opts.SetLimit(int64(q.limit))
	}

	fo := q.findOptions
	if fo == nil {
		return opts
	}

	if fo.Collation != nil {
		opts.SetCollation(collation(fo.Collation))
	}
	if fo.Hint != nil {
		opts.SetHint(fo.Hint)
	}
	if fo.Comment != "" {
		opts.SetComment(fo.Comment)
	}
	if fo.MaxTime > 0 {
		opts.SetMaxTime(fo.MaxTime)
	}
	if fo.AllowDiskUse != nil {
		opts.SetAllowDiskUse(*fo.AllowDiskUse)
	}

	return opts
}

func (q *Query[T]) buildAggregateOptions() *options.AggregateOptions {
	opts := options.Aggregate()

	fo := q.findOptions
	if fo == nil {
		return opts
	}

	if fo.Collation != nil {
		opts.SetCollation(collation(fo.Collation))
	}
	if fo.Hint != nil {
		opts.SetHint(fo.Hint)
	}
	if fo.Comment != "" {
		opts.SetComment(fo.Comment)
	}
	if fo.MaxTime > 0 {
		opts.SetMaxTime(fo.MaxTime)
	}
	if fo.AllowDiskUse != nil {
		opts.SetAllowDiskUse(*fo.AllowDiskUse)
	}

	return opts
}

// buildPipeline mirrors the find semantics as aggregation stages and joins
// each population with $lookup.
func (q *Query[T]) buildPipeline() (mongo.Pipeline, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filterDoc(q.filter)}},
	}
	if len(q.orderings) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sortDoc(q.orderings)}})
	}
	if q.skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(q.skip)}})
	}
	if q.limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(q.limit)}})
	}
	if projection := projectionDoc(q.projection); len(projection) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: projection}})
	}

	for _, population := range q.populations {
		ref, ok := q.c.refs[population.Path]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRef, population.Path)
		}

		lookup := bson.D{
			{Key: "from", Value: ref.Collection},
			{Key: "localField", Value: ref.LocalField},
			{Key: "foreignField", Value: ref.ForeignField},
			{Key: "as", Value: population.Path},
		}
		if projection := projectionDoc(population.Select); len(projection) > 0 {
			lookup = append(lookup, bson.E{
				Key:   "pipeline",
				Value: mongo.Pipeline{{{Key: "$project", Value: projection}}},
			})
		}
		pipeline = append(pipeline, bson.D{{Key: "$lookup", Value: lookup}})

		if !ref.Many {
			pipeline = append(pipeline, bson.D{{Key: "$unwind", Value: bson.D{
				{Key: "path", Value: "$" + population.Path},
				{Key: "preserveNullAndEmptyArrays", Value: true},
			}}})
		}
	}

	return pipeline, nil
}

func projectionDoc(projection docpager.Projection) bson.D {
	return lo.Map(projection, func(fs docpager.FieldSelection, _ int) bson.E {
		return bson.E{Key: fs.Field, Value: lo.Ternary(fs.Include, 1, 0)}
	})
}

func sortDoc(orderings docpager.Orderings) bson.D {
	return lo.Map(orderings, func(ob docpager.OrderBy, _ int) bson.E {
		return bson.E{Key: ob.Column, Value: ob.Direction.Sign()}
	})
}

func collation(c *docpager.Collation) *options.Collation {
	return &options.Collation{
		Locale:          c.Locale,
		Strength:        c.Strength,
		CaseLevel:       c.CaseLevel,
		NumericOrdering: c.NumericOrdering,
	}
}

var _ docpager.Query[any] = (*Query[any])(nil)
