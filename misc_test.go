package docpager

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
)

// tCollection is an in-memory Collection over records, used to exercise the
// paginator without a database. Filters match by equality on top-level keys.
type tCollection struct {
	records []Record
	// refs maps a populate path to the records it references, keyed by _id.
	refs map[string]map[any]Record

	findErr  error
	countErr error
	// countGate, when set, blocks Count until the find has started.
	countGate chan struct{}

	mu      sync.Mutex
	queries []*tQuery
	counts  atomic.Int32
}

type tQuery struct {
	coll        *tCollection
	filter      Filter
	findOptions *FindOptions
	projection  Projection
	orderings   Orderings
	skip        int
	limit       int
	lean        bool
	populations []Population
}

func newTCollection(records ...Record) *tCollection {
	return &tCollection{records: records}
}

func (c *tCollection) Find(filter Filter, findOptions *FindOptions) Query[Record] {
	q := &tQuery{coll: c, filter: filter, findOptions: findOptions, limit: -1}

	c.mu.Lock()
	c.queries = append(c.queries, q)
	c.mu.Unlock()

	return q
}

func (c *tCollection) Count(ctx context.Context, filter Filter) (int64, error) {
	c.counts.Add(1)
	if c.countGate != nil {
		select {
		case <-c.countGate:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if c.countErr != nil {
		return 0, c.countErr
	}

	return int64(len(c.match(filter))), nil
}

func (c *tCollection) lastQuery() *tQuery {
	c.mu.Lock()
	defer c.mu.Unlock()

	return lo.LastOrEmpty(c.queries)
}

func (c *tCollection) match(filter Filter) []Record {
	return lo.Filter(c.records, func(r Record, _ int) bool {
		for k, v := range filter {
			if r[k] != v {
				return false
			}
		}
		return true
	})
}

func (q *tQuery) Select(projection Projection) Query[Record] {
	q.projection = projection
	return q
}

func (q *tQuery) Sort(orderings Orderings) Query[Record] {
	q.orderings = orderings
	return q
}

func (q *tQuery) Skip(n int) Query[Record] {
	q.skip = n
	return q
}

func (q *tQuery) Limit(n int) Query[Record] {
	q.limit = n
	return q
}

func (q *tQuery) Lean(lean bool) Query[Record] {
	q.lean = lean
	return q
}

func (q *tQuery) Populate(population Population) Query[Record] {
	q.populations = append(q.populations, population)
	return q
}

func (q *tQuery) Exec(ctx context.Context) ([]Record, error) {
	if q.coll.countGate != nil {
		close(q.coll.countGate)
	}
	if q.coll.findErr != nil {
		return nil, q.coll.findErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched := q.coll.match(q.filter)
	slices.SortStableFunc(matched, func(a, b Record) int {
		for _, ob := range q.orderings {
			as, bs := fmt.Sprint(a[ob.Column]), fmt.Sprint(b[ob.Column])
			if as == bs {
				continue
			}
			cmp := lo.Ternary(as < bs, -1, 1)
			return cmp * ob.Direction.Sign()
		}
		return 0
	})

	matched = matched[min(q.skip, len(matched)):]
	if q.limit >= 0 {
		matched = matched[:min(q.limit, len(matched))]
	}

	ret := make([]Record, 0, len(matched))
	for _, r := range matched {
		doc := q.project(r)
		for _, p := range q.populations {
			doc[p.Path] = q.coll.populate(r[p.Path], p.Path)
		}
		ret = append(ret, doc)
	}

	return ret, nil
}

func (q *tQuery) project(r Record) Record {
	included := q.projection.Included()
	excluded := q.projection.Excluded()

	ret := Record{}
	for k, v := range r {
		if len(included) > 0 && !slices.Contains(included, k) && k != DefaultIDField {
			continue
		}
		if slices.Contains(excluded, k) {
			continue
		}
		ret[k] = v
	}

	return ret
}

func (c *tCollection) populate(ref any, path string) any {
	targets := c.refs[path]
	switch v := ref.(type) {
	case []any:
		return lo.Map(v, func(id any, _ int) any { return targets[id] })
	default:
		return targets[v]
	}
}

var _ Collection[Record] = (*tCollection)(nil)

// tObjectID mimics a driver object id: String() is decorated, Hex() is not.
type tObjectID [3]byte

func (o tObjectID) Hex() string {
	return fmt.Sprintf("%x", o[:])
}

func (o tObjectID) String() string {
	return fmt.Sprintf("ObjectID(%q)", o.Hex())
}

// tStructCollection serves struct documents by value, ignoring filters.
type tStructCollection struct {
	docs []tPost
}

type tStructQuery struct {
	docs []tPost
}

func (c *tStructCollection) Find(Filter, *FindOptions) Query[tPost] {
	return &tStructQuery{docs: slices.Clone(c.docs)}
}

func (c *tStructCollection) Count(context.Context, Filter) (int64, error) {
	return int64(len(c.docs)), nil
}

func (q *tStructQuery) Select(Projection) Query[tPost] { return q }
func (q *tStructQuery) Sort(Orderings) Query[tPost] { return q }
func (q *tStructQuery) Skip(int) Query[tPost] { return q }
func (q *tStructQuery) Limit(int) Query[tPost] { return q }
func (q *tStructQuery) Lean(bool) Query[tPost] { return q }
func (q *tStructQuery) Populate(Population) Query[tPost] { return q }

func (q *tStructQuery) Exec(context.Context) ([]tPost, error) {
	return q.docs, nil
}

var _ Collection[tPost] = (*tStructCollection)(nil)
