package motion

import "github.com/katalvlaran/anglepath/angle"

// Table maps a motion to its angle transform. Implementations must be pure:
// the same (m, s) always yields the same result. The returned angle is not
// yet wrapped into the domain; ok=false means m cannot be performed from s.
type Table interface {
	Apply(m Motion, s angle.State) (to int, ok bool)
}

// TableFunc adapts a plain function to Table.
type TableFunc func(m Motion, s angle.State) (int, bool)

// Apply calls f.
func (f TableFunc) Apply(m Motion, s angle.State) (int, bool) { return f(m, s) }

type catalogTable struct{}

func (catalogTable) Apply(m Motion, s angle.State) (int, bool) { return m.Apply(s) }

// DefaultTable applies the catalog transforms.
var DefaultTable Table = catalogTable{}

// Offsets returns a Table in which every motion listed in offsets is a plain
// rotation by that amount; motions not listed fall back to base.
func Offsets(base Table, offsets map[Motion]int) Table {
	if len(offsets) == 0 {
		return base
	}
	fixed := make(map[Motion]int, len(offsets))
	for m, d := range offsets {
		fixed[m] = d
	}

	return TableFunc(func(m Motion, s angle.State) (int, bool) {
		if d, ok := fixed[m]; ok {
			return int(s) + d, true
		}

		return base.Apply(m, s)
	})
}
