package docpager

import "fmt"

// RawPager is intended for API payloads. For proper code generation, inline it:
//
//	type MyFilter struct {
//	    Paging RawPager `json:",inline"`
//	}
type RawPager struct {
	// Limit - maximum number of documents to return in the response. Zero
	// returns the total count only.
	Limit *int `json:"limit,omitempty" query:"limit"`
	// Page - 1-based page number.
	Page *int `json:"page,omitempty" query:"page"`
	// Offset - number of documents to skip. Takes precedence over Page.
	Offset *int `json:"offset,omitempty" query:"offset"`
	// Sort - list of "alias asc|desc" strings resolved through a ColumnMapping.
	Sort []string `json:"sort,omitempty" query:"sort"`
}

// Decode converts RawPager into *Options, resolving sort aliases via
// columnMapping and validating the result.
func (p RawPager) Decode(columnMapping ColumnMapping) (*Options, error) {
	ret := &Options{
		Offset: clonePtr(p.Offset),
		Page:   clonePtr(p.Page),
		Limit:  clonePtr(p.Limit),
	}

	if len(p.Sort) > 0 {
		sort, err := ParseSort(p.Sort, columnMapping)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
		}
		ret = ret.WithSort(sort...)
	}

	if err := ret.validate(); err != nil {
		return nil, err
	}

	return ret, nil
}
