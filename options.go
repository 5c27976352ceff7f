package docpager

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// ErrInvalidOptions is returned when pagination options cannot be applied.
var ErrInvalidOptions = errors.New("invalid pagination options")

// Options configures a single pagination call. Every field is optional; nil
// means "not set" and falls back to the paginator defaults, then to the
// built-in defaults:
//
//   - Select: full document.
//   - FindOptions: none.
//   - Sort: backend default order.
//   - Populate: none.
//   - Lean: false.
//   - LeanWithID: true (only relevant in lean mode).
//   - Offset / Page: page 1, offset 0. Offset wins when both are set.
//   - Limit: DefaultLimit. Zero requests the total count only.
type Options struct {
	Select      Projection   `json:"select,omitempty"`
	FindOptions *FindOptions `json:"findOptions,omitempty"`
	Sort        Orderings    `json:"sort,omitempty"`
	Populate    []Population `json:"populate,omitempty"`
	Lean        *bool        `json:"lean,omitempty"`
	LeanWithID  *bool        `json:"leanWithId,omitempty"`
	Offset      *int         `json:"offset,omitempty" validate:"omitempty,min=0"`
	Page        *int         `json:"page,omitempty" validate:"omitempty,min=1"`
	Limit       *int         `json:"limit,omitempty" validate:"omitempty,min=0"`
}

// FindOptions carries backend execution options. Backends apply what they
// can express and ignore the rest.
type FindOptions struct {
	Collation    *Collation    `json:"collation,omitempty"`
	Hint         any           `json:"hint,omitempty"`
	Comment      string        `json:"comment,omitempty"`
	MaxTime      time.Duration `json:"maxTime,omitempty" validate:"min=0"`
	AllowDiskUse *bool         `json:"allowDiskUse,omitempty"`
}

// Collation selects language-specific string comparison rules.
type Collation struct {
	Locale          string `json:"locale" validate:"required"`
	Strength        int    `json:"strength,omitempty" validate:"min=0,max=5"`
	CaseLevel       bool   `json:"caseLevel,omitempty"`
	NumericOrdering bool   `json:"numericOrdering,omitempty"`
}

func NewOptions() *Options {
	return new(Options)
}

// WithLimit sets the maximum number of returned documents. Zero makes the
// call count-only.
func (o *Options) WithLimit(limit int) *Options {
	if o == nil {
		o = new(Options)
	}

	o.Limit = &limit

	return o
}

// WithPage selects a 1-based page.
func (o *Options) WithPage(page int) *Options {
	if o == nil {
		o = new(Options)
	}

	o.Page = &page

	return o
}

// WithOffset selects an absolute skip count.
//
// IMPORTANT:
// Offset takes precedence over Page when both are set.
func (o *Options) WithOffset(offset int) *Options {
	if o == nil {
		o = new(Options)
	}

	o.Offset = &offset

	return o
}

// WithSort appends sort orderings without overwriting existing ones. A later
// ordering for the same column replaces the earlier one.
func (o *Options) WithSort(orderBy ...OrderBy) *Options {
	if o == nil {
		o = new(Options)
	}

	o.Sort = o.Sort.Then(orderBy...)

	return o
}

// WithSelect sets the projection.
func (o *Options) WithSelect(fields ...FieldSelection) *Options {
	if o == nil {
		o = new(Options)
	}

	o.Select = fields

	return o
}

// WithPopulate appends related-entity expansions.
func (o *Options) WithPopulate(populations ...Population) *Options {
	if o == nil {
		o = new(Options)
	}

	o.Populate = append(o.Populate, populations...)

	return o
}

// WithLean toggles lean mode.
func (o *Options) WithLean(lean bool) *Options {
	if o == nil {
		o = new(Options)
	}

	o.Lean = &lean

	return o
}

// WithLeanID toggles attaching a string "id" to lean documents.
func (o *Options) WithLeanID(leanWithID bool) *Options {
	if o == nil {
		o = new(Options)
	}

	o.LeanWithID = &leanWithID

	return o
}

// WithFindOptions sets backend execution options.
func (o *Options) WithFindOptions(findOptions *FindOptions) *Options {
	if o == nil {
		o = new(Options)
	}

	o.FindOptions = findOptions

	return o
}

// IsLean reports whether lean mode is enabled.
func (o *Options) IsLean() bool {
	if o == nil {
		return false
	}

	return lo.FromPtrOr(o.Lean, false)
}

// IsLeanWithID reports whether lean documents get a string "id".
func (o *Options) IsLeanWithID() bool {
	if o == nil {
		return true
	}

	return lo.FromPtrOr(o.LeanWithID, true)
}

// Clone returns a copy that shares no slices or pointers with o.
func (o *Options) Clone() Options {
	if o == nil {
		return Options{}
	}

	ret := Options{
		Select:   slices.Clone(o.Select),
		Sort:     slices.Clone(o.Sort),
		Populate: slices.Clone(o.Populate),
	}
	if o.FindOptions != nil {
		fo := *o.FindOptions
		if fo.Collation != nil {
			fo.Collation = lo.ToPtr(*fo.Collation)
		}
		ret.FindOptions = &fo
	}
	ret.Lean = clonePtr(o.Lean)
	ret.LeanWithID = clonePtr(o.LeanWithID)
	ret.Offset = clonePtr(o.Offset)
	ret.Page = clonePtr(o.Page)
	ret.Limit = clonePtr(o.Limit)

	return ret
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	return lo.ToPtr(*p)
}

// MergeOptions lays user options over defaults. The merge is shallow: for
// each field the user's value wins whenever it is set.
func MergeOptions(defaults, user *Options) Options {
	d, u := defaults.Clone(), user.Clone()

	return Options{
		Select:      lo.Ternary(u.Select != nil, u.Select, d.Select),
		FindOptions: lo.CoalesceOrEmpty(u.FindOptions, d.FindOptions),
		Sort:        lo.Ternary(u.Sort != nil, u.Sort, d.Sort),
		Populate:    lo.Ternary(u.Populate != nil, u.Populate, d.Populate),
		Lean:        lo.CoalesceOrEmpty(u.Lean, d.Lean),
		LeanWithID:  lo.CoalesceOrEmpty(u.LeanWithID, d.LeanWithID),
		Offset:      lo.CoalesceOrEmpty(u.Offset, d.Offset),
		Page:        lo.CoalesceOrEmpty(u.Page, d.Page),
		Limit:       lo.CoalesceOrEmpty(u.Limit, d.Limit),
	}
}

var _validate = validator.New()

func (o *Options) validate() error {
	if o == nil {
		return nil
	}

	if err := _validate.Struct(o); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	if err := o.Select.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	if err := o.Sort.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	for _, p := range o.Populate {
		if err := p.validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
		}
	}

	return nil
}
