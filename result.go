package docpager

import "encoding/json"

// Result is the pagination envelope.
type Result[T any] struct {
	// Docs page elements. Nil when the call was count-only (zero limit).
	Docs []T
	// Count number of documents matching the filter, ignoring skip and limit.
	Count int64
	// Limit effective limit used for the query.
	Limit int
	// Offset is set in offset mode and when no position was requested.
	Offset *int
	// Page is set in page mode and when no position was requested.
	Page *int
	// Pages ceil(Count/Limit), at least 1. Nil for count-only calls.
	Pages *int
}

// HasDocs reports whether documents were fetched. An empty page still has
// docs; a count-only call does not.
func (r *Result[T]) HasDocs() bool {
	return r != nil && r.Docs != nil
}

type jsonResult[T any] struct {
	Docs   *[]T  `json:"docs,omitempty"`
	Count  int64 `json:"count"`
	Limit  int   `json:"limit"`
	Offset *int  `json:"offset,omitempty"`
	Page   *int  `json:"page,omitempty"`
	Pages  *int  `json:"pages,omitempty"`
}

// MarshalJSON omits "docs" only for count-only results and renders an empty
// page as "docs": [].
func (r Result[T]) MarshalJSON() ([]byte, error) {
	out := jsonResult[T]{
		Count:  r.Count,
		Limit:  r.Limit,
		Offset: r.Offset,
		Page:   r.Page,
		Pages:  r.Pages,
	}
	if r.Docs != nil {
		out.Docs = &r.Docs
	}

	return json.Marshal(out)
}

// UnmarshalJSON - implements json.Unmarshaler.
func (r *Result[T]) UnmarshalJSON(data []byte) error {
	var in jsonResult[T]
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*r = Result[T]{
		Count:  in.Count,
		Limit:  in.Limit,
		Offset: in.Offset,
		Page:   in.Page,
		Pages:  in.Pages,
	}
	if in.Docs != nil {
		r.Docs = *in.Docs
		if r.Docs == nil {
			r.Docs = []T{}
		}
	}

	return nil
}

var (
	_ json.Marshaler   = Result[any]{}
	_ json.Unmarshaler = (*Result[any])(nil)
)
