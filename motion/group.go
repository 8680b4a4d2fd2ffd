package motion

import (
	"fmt"

	"github.com/katalvlaran/anglepath/cost"
)

// Group is a named bundle of motions that are enabled together (for example
// every motion that needs a sword).
type Group int

// Movement groups.
const (
	Basic Group = iota + 1
	TargetEnabled
	NoCarry
	Sword
	Biggoron
	Hammer
	ShieldCorners
	CUpFrameTurn

	groupEnd
)

var groupNames = [groupEnd]string{
	Basic:         "basic",
	TargetEnabled: "target enabled",
	NoCarry:       "no carry",
	Sword:         "sword",
	Biggoron:      "biggoron",
	Hammer:        "hammer",
	ShieldCorners: "shield corners",
	CUpFrameTurn:  "c-up frame turn",
}

// Groups returns every group in catalog order.
func Groups() []Group {
	out := make([]Group, 0, int(groupEnd)-1)
	for g := Basic; g < groupEnd; g++ {
		out = append(out, g)
	}

	return out
}

// String is the group name.
func (g Group) String() string {
	if g <= 0 || g >= groupEnd {
		return fmt.Sprintf("group(%d)", int(g))
	}

	return groupNames[g]
}

// Motions lists the catalog motions belonging to g.
func (g Group) Motions() []Motion {
	var out []Motion
	for m := EssUp; m < count; m++ {
		if catalog[m].group == g {
			out = append(out, m)
		}
	}

	return out
}

// ParseGroup resolves a group by name; "target_enabled" and "target enabled"
// are the same group.
func ParseGroup(name string) (Group, error) {
	n := normalize(name)
	for g := Basic; g < groupEnd; g++ {
		if groupNames[g] == n {
			return g, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownGroup, name)
}

// ParseGroups resolves each name, stopping at the first unknown one.
func ParseGroups(names []string) ([]Group, error) {
	out := make([]Group, 0, len(names))
	for _, n := range names {
		g, err := ParseGroup(n)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}

	return out, nil
}

// MarshalText implements encoding.TextMarshaler.
func (g Group) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Group) UnmarshalText(b []byte) error {
	v, err := ParseGroup(string(b))
	if err != nil {
		return err
	}
	*g = v

	return nil
}

// DefaultChains returns the chained-motion overrides: repeating an ess or a
// c-up frame turn is much cheaper than starting one.
func DefaultChains() map[Pair]cost.Cost {
	return map[Pair]cost.Cost{
		{EssLeft, EssLeft}:                     cost.Millis(75),
		{EssRight, EssRight}:                   cost.Millis(75),
		{CUpFrameTurnLeft, CUpFrameTurnLeft}:   cost.Millis(250),
		{CUpFrameTurnRight, CUpFrameTurnRight}: cost.Millis(250),
	}
}

// DefaultCosts returns the base cost of every catalog motion.
func DefaultCosts() map[Motion]cost.Cost {
	out := make(map[Motion]cost.Cost, Count)
	for m := EssUp; m < count; m++ {
		out[m] = catalog[m].base
	}

	return out
}
