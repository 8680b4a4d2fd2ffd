// Package costmodel derives the chained cost lookup used by the search:
// the cost of motion B performed immediately after motion A (or after no
// motion at all).
//
// Construction:
//
//  1. Every row (one per previous motion, plus motion.None) starts as a copy
//     of the base cost table.
//  2. Chain overrides replace individual (previous, next) cells.
//  3. Motions outside the allowed groups are removed from both dimensions.
//
// A Model is immutable once built and safe for concurrent reads.
//
// Errors:
//
//   - ErrNoGroups   if no movement group is allowed (the model would be empty).
//   - ErrMissingCost if an allowed motion has no base cost.
package costmodel

import (
	"errors"
	"fmt"
	"sort"

	"github.com/katalvlaran/anglepath/cost"
	"github.com/katalvlaran/anglepath/motion"
)

// Sentinel errors returned by New.
var (
	// ErrNoGroups indicates an empty allowed-group selection.
	ErrNoGroups = errors.New("costmodel: no movement groups allowed")

	// ErrMissingCost indicates an allowed motion without a base cost.
	ErrMissingCost = errors.New("costmodel: missing base cost")
)

// Table is the raw configuration a Model is derived from.
type Table struct {
	Base   map[motion.Motion]cost.Cost
	Chains map[motion.Pair]cost.Cost
}

// DefaultTable returns the catalog base costs and the default chains.
func DefaultTable() Table {
	return Table{
		Base:   motion.DefaultCosts(),
		Chains: motion.DefaultChains(),
	}
}

// Merge returns a copy of t with every entry of over applied on top.
func (t Table) Merge(over Table) Table {
	out := Table{
		Base:   make(map[motion.Motion]cost.Cost, len(t.Base)+len(over.Base)),
		Chains: make(map[motion.Pair]cost.Cost, len(t.Chains)+len(over.Chains)),
	}
	for m, c := range t.Base {
		out.Base[m] = c
	}
	for m, c := range over.Base {
		out.Base[m] = c
	}
	for p, c := range t.Chains {
		out.Chains[p] = c
	}
	for p, c := range over.Chains {
		out.Chains[p] = c
	}

	return out
}

// Step is one admissible follow-up motion and what it costs.
type Step struct {
	Motion motion.Motion
	Cost   cost.Cost
}

// Model is the chained cost lookup restricted to the allowed motions.
type Model struct {
	groups  []motion.Group
	allowed [motion.Count + 1]bool
	// rows[prev] lists the admissible next motions in catalog order.
	rows [motion.Count + 1][]Step
}

// New builds a Model from t, keeping only the motions of groups.
func New(t Table, groups []motion.Group) (*Model, error) {
	if len(groups) == 0 {
		return nil, ErrNoGroups
	}

	m := &Model{groups: dedupGroups(groups)}
	for _, g := range m.groups {
		for _, mv := range g.Motions() {
			m.allowed[mv] = true
		}
	}

	// base row shared by every previous motion before chain overrides
	base := make([]Step, 0, motion.Count)
	for _, mv := range motion.All() {
		if !m.allowed[mv] {
			continue
		}
		c, ok := t.Base[mv]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingCost, mv)
		}
		base = append(base, Step{Motion: mv, Cost: c})
	}
	if len(base) == 0 {
		return nil, fmt.Errorf("%w: groups %v contain no motions", ErrNoGroups, m.groups)
	}

	prevs := append([]motion.Motion{motion.None}, motion.All()...)
	for _, prev := range prevs {
		if prev != motion.None && !m.allowed[prev] {
			continue
		}
		row := make([]Step, len(base))
		copy(row, base)
		for i := range row {
			if c, ok := t.Chains[motion.Pair{Prev: prev, Next: row[i].Motion}]; ok {
				row[i].Cost = c
			}
		}
		m.rows[prev] = row
	}

	return m, nil
}

// Cost returns the cost of next performed right after prev. ok is false when
// either motion is not allowed.
func (m *Model) Cost(prev, next motion.Motion) (cost.Cost, bool) {
	for _, s := range m.Next(prev) {
		if s.Motion == next {
			return s.Cost, true
		}
	}

	return 0, false
}

// Cheapest returns the lowest cost of next over every possible previous
// motion, motion.None included. ok is false when next is not allowed.
func (m *Model) Cheapest(next motion.Motion) (c cost.Cost, ok bool) {
	for _, row := range m.rows {
		for _, s := range row {
			if s.Motion == next && (!ok || s.Cost < c) {
				c, ok = s.Cost, true
			}
		}
	}

	return c, ok
}

// Next lists the motions allowed after prev, in catalog order. The slice is
// shared; callers must not modify it.
func (m *Model) Next(prev motion.Motion) []Step {
	if prev < 0 || int(prev) >= len(m.rows) {
		return nil
	}

	return m.rows[prev]
}

// Allowed reports whether mv is part of the model.
func (m *Model) Allowed(mv motion.Motion) bool {
	return mv.Valid() && m.allowed[mv]
}

// Motions lists the allowed motions in catalog order.
func (m *Model) Motions() []motion.Motion {
	row := m.rows[motion.None]
	out := make([]motion.Motion, len(row))
	for i, s := range row {
		out[i] = s.Motion
	}

	return out
}

// Groups returns the allowed groups, deduplicated and sorted.
func (m *Model) Groups() []motion.Group {
	out := make([]motion.Group, len(m.groups))
	copy(out, m.groups)

	return out
}

func dedupGroups(groups []motion.Group) []motion.Group {
	seen := make(map[motion.Group]bool, len(groups))
	out := make([]motion.Group, 0, len(groups))
	for _, g := range groups {
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}
