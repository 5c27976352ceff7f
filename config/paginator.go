package config

import (
	"fmt"

	"github.com/Alp4ka/docpager"
)

// PaginatorOptions converts the pagination section into paginator options.
// Sort and select use the space separated "-field +field" syntax.
func (c *Config) PaginatorOptions() ([]docpager.Option, error) {
	p := c.Pagination

	defaults := docpager.NewOptions().
		WithLimit(p.Limit).
		WithLean(p.Lean).
		WithLeanID(p.LeanWithID)

	if p.Sort != "" {
		sort, err := docpager.ParseSortSpec(p.Sort)
		if err != nil {
			return nil, fmt.Errorf("pagination.sort: %w", err)
		}
		defaults.WithSort(sort...)
	}

	if p.Select != "" {
		projection, err := docpager.ParseProjection(p.Select)
		if err != nil {
			return nil, fmt.Errorf("pagination.select: %w", err)
		}
		defaults.WithSelect(projection...)
	}

	if len(p.Populate) > 0 {
		defaults.WithPopulate(docpager.PopulatePaths(p.Populate...)...)
	}

	return []docpager.Option{
		docpager.WithDefaults(*defaults),
		docpager.WithMaxLimit(p.MaxLimit),
		docpager.WithIDField(p.IDField),
	}, nil
}
