// Package avoid holds forbidden angle ranges: closed intervals out of which
// motions that need an active target lock may not start.
//
// Ranges are stored in a one-dimensional R-tree so that membership tests stay
// cheap no matter how many ranges a search carries.
package avoid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dhconnelly/rtreego"

	"github.com/katalvlaran/anglepath/angle"
)

// Sentinel errors for range parsing and validation.
var (
	// ErrInverted indicates a range whose low end is above its high end.
	ErrInverted = errors.New("avoid: range low is above high")

	// ErrSyntax indicates a range literal that is not "low,high".
	ErrSyntax = errors.New("avoid: range must be written low,high")
)

// Range is the closed interval [Low, High].
type Range struct {
	Low  angle.State
	High angle.State
}

// Validate checks Low <= High.
func (r Range) Validate() error {
	if r.Low > r.High {
		return fmt.Errorf("%w: %s", ErrInverted, r)
	}

	return nil
}

// Contains reports whether s lies in r, bounds included.
func (r Range) Contains(s angle.State) bool {
	return r.Low <= s && s <= r.High
}

// String formats r as "0xLLLL,0xHHHH".
func (r Range) String() string {
	return r.Low.String() + "," + r.High.String()
}

// ParseRange reads "low,high" with both ends in hex.
func ParseRange(str string) (Range, error) {
	lo, hi, ok := strings.Cut(str, ",")
	if !ok {
		return Range{}, fmt.Errorf("%w: %q", ErrSyntax, str)
	}
	low, err := angle.Parse(lo)
	if err != nil {
		return Range{}, err
	}
	high, err := angle.Parse(hi)
	if err != nil {
		return Range{}, err
	}
	r := Range{Low: low, High: high}

	return r, r.Validate()
}

// MarshalText implements encoding.TextMarshaler.
func (r Range) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Range) UnmarshalText(b []byte) error {
	v, err := ParseRange(string(b))
	if err != nil {
		return err
	}
	*r = v

	return nil
}

// ParseRanges parses each element of list.
func ParseRanges(list []string) ([]Range, error) {
	out := make([]Range, 0, len(list))
	for _, s := range list {
		r, err := ParseRange(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}

	return out, nil
}

// entry adapts a Range to rtreego.Spatial. Integer bounds are widened by half
// a unit on each side because rtreego rejects zero-length rectangles.
type entry struct {
	r    Range
	rect rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect { return e.rect }

// Index answers "is this angle inside any forbidden range?".
// The zero value and a nil *Index contain nothing.
type Index struct {
	tree   *rtreego.Rtree
	ranges []Range
}

// NewIndex validates ranges and indexes them.
func NewIndex(ranges []Range) (*Index, error) {
	idx := &Index{ranges: make([]Range, 0, len(ranges))}
	if len(ranges) == 0 {
		return idx, nil
	}

	idx.tree = rtreego.NewTree(1, 4, 16)
	for _, r := range ranges {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		rect, err := rtreego.NewRect(
			rtreego.Point{float64(r.Low) - 0.5},
			[]float64{float64(r.High) - float64(r.Low) + 1},
		)
		if err != nil {
			return nil, fmt.Errorf("avoid: index %s: %w", r, err)
		}
		idx.tree.Insert(&entry{r: r, rect: rect})
		idx.ranges = append(idx.ranges, r)
	}

	return idx, nil
}

// Contains reports whether s falls in any indexed range.
func (idx *Index) Contains(s angle.State) bool {
	if idx == nil || idx.tree == nil {
		return false
	}
	hits := idx.tree.SearchIntersect(rtreego.Point{float64(s)}.ToRect(0.01))
	for _, h := range hits {
		if h.(*entry).r.Contains(s) {
			return true
		}
	}

	return false
}

// Ranges returns the indexed ranges in insertion order.
func (idx *Index) Ranges() []Range {
	if idx == nil {
		return nil
	}
	out := make([]Range, len(idx.ranges))
	copy(out, idx.ranges)

	return out
}

// Len is the number of indexed ranges.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}

	return len(idx.ranges)
}
