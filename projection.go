package docpager

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type (
	// Projection is an ordered list of field selections. An empty projection
	// returns the full document.
	Projection []FieldSelection

	FieldSelection struct {
		Field   string
		Include bool
	}

	// Population expands a reference stored at Path into the referenced
	// document. Select optionally narrows the fields of the expanded document.
	Population struct {
		Path   string
		Select Projection
	}
)

// ParseProjection builds a Projection from a space separated field list.
// A leading "-" excludes the field, a leading "+" or no prefix includes it:
//
//	ParseProjection("name email -password")
func ParseProjection(spec string) (Projection, error) {
	var ret Projection
	for _, token := range strings.Fields(spec) {
		fs := FieldSelection{Field: token, Include: true}
		switch token[0] {
		case '-':
			fs = FieldSelection{Field: token[1:], Include: false}
		case '+':
			fs.Field = token[1:]
		}

		if err := fs.validate(); err != nil {
			return nil, err
		}
		ret = append(ret, fs)
	}

	return ret, nil
}

// Included returns the names of included fields.
func (p Projection) Included() []string {
	return lo.FilterMap(p, func(fs FieldSelection, _ int) (string, bool) {
		return fs.Field, fs.Include
	})
}

// Excluded returns the names of excluded fields.
func (p Projection) Excluded() []string {
	return lo.FilterMap(p, func(fs FieldSelection, _ int) (string, bool) {
		return fs.Field, !fs.Include
	})
}

func (fs FieldSelection) validate() error {
	if !validColumnName(fs.Field) {
		return fmt.Errorf("projection field name contains forbidden symbols '%s'", fs.Field)
	}

	return nil
}

func (p Projection) validate() error {
	for _, fs := range p {
		if err := fs.validate(); err != nil {
			return err
		}
	}

	return nil
}

// PopulatePaths is a shorthand for populations without a projection.
func PopulatePaths(paths ...string) []Population {
	return lo.Map(paths, func(path string, _ int) Population {
		return Population{Path: path}
	})
}

func (p Population) validate() error {
	if !validColumnName(p.Path) {
		return fmt.Errorf("populate path contains forbidden symbols '%s'", p.Path)
	}

	return p.Select.validate()
}
