package docpager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrFind wraps failures of the find operation.
	ErrFind = errors.New("find documents")
	// ErrCount wraps failures of the count operation.
	ErrCount = errors.New("count documents")
)

type (
	// Callback receives the outcome of PaginateFunc.
	Callback[T any] func(result *Result[T], err error)

	// Outcome is the single value delivered by PaginateAsync.
	Outcome[T any] struct {
		Result *Result[T]
		Err    error
	}

	// Option configures a Paginator.
	Option func(*config)

	config struct {
		defaults Options
		idField  string
		maxLimit int
		logger   zerolog.Logger
	}
)

// WithDefaults sets options merged under every call's options.
func WithDefaults(defaults Options) Option {
	return func(c *config) {
		c.defaults = defaults.Clone()
	}
}

// WithIDField sets the identifier field used in lean mode. Defaults to "_id".
func WithIDField(field string) Option {
	return func(c *config) {
		if field != "" {
			c.idField = field
		}
	}
}

// WithMaxLimit clamps requested limits to maxLimit. NoMaxLimit disables it.
// Negative values are ignored and keep the previous setting.
func WithMaxLimit(maxLimit int) Option {
	return func(c *config) {
		if maxLimit >= NoMaxLimit {
			c.maxLimit = maxLimit
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Paginator pages through one collection.
//
// A Paginator is safe for concurrent use: its configuration is read-only
// after New and every call builds its own queries.
type Paginator[T any] struct {
	collection Collection[T]
	config
}

// New binds a Paginator to collection.
func New[T any](collection Collection[T], opts ...Option) *Paginator[T] {
	c := config{
		idField:  DefaultIDField,
		maxLimit: NoMaxLimit,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&c)
	}

	return &Paginator[T]{
		collection: collection,
		config:     c,
	}
}

// Paginate is a shorthand for New(collection).Paginate.
func Paginate[T any](ctx context.Context, collection Collection[T], filter Filter, options *Options) (*Result[T], error) {
	return New(collection).Paginate(ctx, filter, options)
}

// Defaults returns a copy of the options merged under every call.
func (p *Paginator[T]) Defaults() Options {
	return p.defaults.Clone()
}

// Paginate finds one page of documents matching filter together with the
// total number of matches. The find and the count run concurrently; the first
// failure cancels the other and is returned.
func (p *Paginator[T]) Paginate(ctx context.Context, filter Filter, options *Options) (*Result[T], error) {
	if p == nil || p.collection == nil {
		return nil, errors.New("cannot paginate: paginator has no collection")
	}

	startedAt := time.Now()

	result, err := p.paginate(ctx, lo.Ternary(filter == nil, Filter{}, filter), options)
	if err != nil {
		p.logger.Error().Err(err).Msg("pagination failed")
		return nil, err
	}

	p.logger.Debug().
		Int64("count", result.Count).
		Int("docs", len(result.Docs)).
		Dur("took", time.Since(startedAt)).
		Msg("pagination done")

	return result, nil
}

// PaginateFunc runs Paginate and hands the outcome to callback exactly once,
// errors included. It exists for call sites built around callbacks.
func (p *Paginator[T]) PaginateFunc(ctx context.Context, filter Filter, options *Options, callback Callback[T]) {
	result, err := p.Paginate(ctx, filter, options)
	if callback != nil {
		callback(result, err)
	}
}

// PaginateAsync runs Paginate in the background. The returned channel
// receives exactly one Outcome and is then closed.
func (p *Paginator[T]) PaginateAsync(ctx context.Context, filter Filter, options *Options) <-chan Outcome[T] {
	ch := make(chan Outcome[T], 1)
	go func() {
		defer close(ch)

		result, err := p.Paginate(ctx, filter, options)
		ch <- Outcome[T]{Result: result, Err: err}
	}()

	return ch
}

func (p *Paginator[T]) paginate(ctx context.Context, filter Filter, options *Options) (*Result[T], error) {
	opts := MergeOptions(&p.defaults, options)
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	limit := NormalizeLimitMax(opts.Limit, p.maxLimit)
	position, err := ResolvePosition(opts.Offset, opts.Page, limit)
	if err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	p.logger.Debug().
		Stringer("mode", position.GetMode()).
		Int("skip", position.GetSkip()).
		Int("limit", limit).
		Bool("lean", opts.IsLean()).
		Msg("paginating")

	result := &Result[T]{Limit: limit}
	if offset, ok := position.GetOffset(); ok {
		result.Offset = lo.ToPtr(offset)
	}
	if page, ok := position.GetPage(); ok {
		result.Page = lo.ToPtr(page)
	}

	g, gctx := errgroup.WithContext(ctx)

	if limit > 0 {
		query := p.buildQuery(filter, &opts, position.GetSkip(), limit)
		attachIDs := opts.IsLean() && opts.IsLeanWithID()

		g.Go(func() error {
			docs, err := query.Exec(gctx)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrFind, err)
			}

			if docs == nil {
				docs = []T{}
			}
			if attachIDs {
				AttachStringIDs(docs, p.idField)
			}
			result.Docs = docs

			return nil
		})
	}

	g.Go(func() error {
		count, err := p.collection.Count(gctx, filter)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCount, err)
		}
		result.Count = count

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if limit > 0 {
		result.Pages = lo.ToPtr(PageCount(result.Count, limit))
	}

	return result, nil
}

func (p *Paginator[T]) buildQuery(filter Filter, opts *Options, skip, limit int) Query[T] {
	query := p.collection.Find(filter, opts.FindOptions).
		Select(opts.Select).
		Sort(opts.Sort).
		Skip(skip).
		Limit(limit).
		Lean(opts.IsLean())

	for _, population := range opts.Populate {
		query = query.Populate(population)
	}

	return query
}
