package cell

import (
	"fmt"
	"strings"
)

// Range is a rectangular block of cells. Start and End are normalized so
// that Start.Col <= End.Col and Start.Row <= End.Row; both bounds are
// inclusive on both axes.
type Range struct {
	Start Address
	End   Address
}

// NewRange builds a Range from two corners, swapping coordinates per axis
// where needed.
func NewRange(a, b Address) Range {
	if a.Col > b.Col {
		a.Col, b.Col = b.Col, a.Col
	}
	if a.Row > b.Row {
		a.Row, b.Row = b.Row, a.Row
	}
	return Range{Start: a, End: b}
}

// ParseRange parses the textual form "A0_B4": two addresses joined by an
// underscore.
func ParseRange(s string) (Range, error) {
	left, right, ok := strings.Cut(s, "_")
	if !ok {
		return Range{}, fmt.Errorf("%w: %q has no underscore", ErrParseRange, s)
	}
	start, err := ParseAddress(left)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %v", ErrParseRange, err)
	}
	end, err := ParseAddress(right)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %v", ErrParseRange, err)
	}
	return NewRange(start, end), nil
}

// Cols returns the column indices covered by the range, in order.
func (r Range) Cols() []int {
	cols := make([]int, 0, r.End.Col-r.Start.Col+1)
	for c := r.Start.Col; c <= r.End.Col; c++ {
		cols = append(cols, c)
	}
	return cols
}

// Rows returns the row indices covered by the range, in order.
func (r Range) Rows() []int {
	rows := make([]int, 0, r.End.Row-r.Start.Row+1)
	for rw := r.Start.Row; rw <= r.End.Row; rw++ {
		rows = append(rows, rw)
	}
	return rows
}

// Contains reports whether the address lies inside the range.
func (r Range) Contains(a Address) bool {
	return a.Col >= r.Start.Col && a.Col <= r.End.Col &&
		a.Row >= r.Start.Row && a.Row <= r.End.Row
}

// Translate maps a local (dx, dy) offset from the range origin to an
// absolute address. The second return value is false when the result falls
// outside the range.
func (r Range) Translate(dx, dy int) (Address, bool) {
	a := Address{Col: r.Start.Col + dx, Row: r.Start.Row + dy}
	if !r.Contains(a) {
		return Address{}, false
	}
	return a, true
}

func (r Range) String() string {
	return r.Start.String() + "_" + r.End.String()
}
