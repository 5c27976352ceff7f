package docpager

import (
	"fmt"
	"math"
)

// Mode tells how the position of a page inside the dataset was requested.
type Mode int

const (
	// ModeDefault is used when neither offset nor page were given: the first
	// page, reported both as page 1 and offset 0.
	ModeDefault Mode = iota
	// ModeOffset positions by an absolute number of skipped documents.
	ModeOffset
	// ModePage positions by a 1-based page number.
	ModePage
)

func (m Mode) String() string {
	switch m {
	case ModeOffset:
		return "offset"
	case ModePage:
		return "page"
	default:
		return "default"
	}
}

// Position is the resolved location of the requested page.
type Position struct {
	mode   Mode
	skip   int
	offset int
	page   int
}

// ResolvePosition applies the offset/page precedence rules:
//   - offset set (zero included): skip = offset, no page;
//   - else page set: skip = (page-1) * limit, no offset;
//   - else page 1 and offset 0.
//
// A page whose skip does not fit in an int is rejected with ErrInvalidOptions.
func ResolvePosition(offset, page *int, limit int) (Position, error) {
	switch {
	case offset != nil:
		return Position{mode: ModeOffset, skip: *offset, offset: *offset}, nil
	case page != nil:
		if limit > 0 && *page-1 > math.MaxInt/limit {
			return Position{}, fmt.Errorf("%w: page %d with limit %d overflows skip", ErrInvalidOptions, *page, limit)
		}
		return Position{mode: ModePage, skip: (*page - 1) * limit, page: *page}, nil
	default:
		return Position{mode: ModeDefault, skip: 0, offset: 0, page: 1}, nil
	}
}

// GetMode returns how the position was requested.
func (p Position) GetMode() Mode {
	return p.mode
}

// GetSkip returns the number of matching documents to discard.
func (p Position) GetSkip() int {
	return p.skip
}

// GetOffset returns the offset and whether it is part of the result.
func (p Position) GetOffset() (int, bool) {
	return p.offset, p.mode != ModePage
}

// GetPage returns the page and whether it is part of the result.
func (p Position) GetPage() (int, bool) {
	return p.page, p.mode != ModeOffset
}
