// Package motion is the closed catalog of discrete motions.
//
// Every Motion carries a base cost, a target-lock flag (whether the target
// lock must already be active when the motion starts) and a transform from
// one angle to another. Transforms are opaque to the search: some are plain
// rotations, some snap to camera headings, and some are inapplicable from
// particular angles.
//
// Motions are bundled into named Groups; a search only uses the motions of
// the groups it allows.
package motion

import (
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/cost"
)

// Sentinel errors for catalog lookups.
var (
	// ErrUnknownMotion indicates a name that is not in the catalog.
	ErrUnknownMotion = errors.New("motion: unknown motion")

	// ErrUnknownGroup indicates a group name that is not in the catalog.
	ErrUnknownGroup = errors.New("motion: unknown group")
)

// Motion identifies one entry of the catalog. The zero value None is the
// synthetic "no motion": the previous motion of a path's first step and the
// motion of a start terminator edge.
type Motion int

// Catalog entries.
const (
	None Motion = iota
	EssUp
	EssLeft
	EssRight
	TurnLeft
	TurnRight
	Turn180
	SidehopSiderollLeft
	SidehopSiderollRight
	EssDownSideroll
	BackflipSideroll
	SwordSpinShieldCancel
	BiggoronSlashShieldCancel
	BiggoronQuickspinShieldCancel
	HammerShieldCancel
	ShieldTopRight
	ShieldTopLeft
	ShieldBottomLeft
	ShieldBottomRight
	CUpFrameTurnLeft
	CUpFrameTurnRight

	count
)

// Count is the number of real motions (None excluded).
const Count = int(count) - 1

// Pair keys a chained cost: Next performed immediately after Prev.
type Pair struct {
	Prev, Next Motion
}

type entry struct {
	name  string
	group Group
	base  cost.Cost
	lock  bool
	apply func(int) (int, bool)
}

func rotate(d int) func(int) (int, bool) {
	return func(a int) (int, bool) { return a + d, true }
}

// snapHeading moves to the nearest 0x1000 camera heading; it has no effect
// (and so is inapplicable) when the angle is already on one.
func snapHeading(a int) (int, bool) {
	n := (a + 0x0800) &^ 0x0FFF
	if n == a {
		return 0, false
	}

	return n, true
}

// frameTurn rotates by d except on the four cardinals, where the camera does
// not turn.
func frameTurn(d int) func(int) (int, bool) {
	return func(a int) (int, bool) {
		if a&0x3FFF == 0 {
			return 0, false
		}

		return a + d, true
	}
}

var catalog = [count]entry{
	None:                          {name: "none"},
	EssUp:                         {"ess up", TargetEnabled, cost.Millis(750), true, snapHeading},
	EssLeft:                       {"ess left", Basic, cost.Millis(750), false, rotate(0x0708)},
	EssRight:                      {"ess right", Basic, cost.Millis(750), false, rotate(-0x0708)},
	TurnLeft:                      {"turn left", TargetEnabled, cost.Units(1), true, rotate(0x4000)},
	TurnRight:                     {"turn right", TargetEnabled, cost.Units(1), true, rotate(-0x4000)},
	Turn180:                       {"turn 180", TargetEnabled, cost.Units(1), true, rotate(0x8000)},
	SidehopSiderollLeft:           {"sidehop sideroll left", NoCarry, cost.Units(1), false, rotate(-0x0F90)},
	SidehopSiderollRight:          {"sidehop sideroll right", NoCarry, cost.Units(1), false, rotate(0x0F90)},
	EssDownSideroll:               {"ess down sideroll", NoCarry, cost.Units(1), false, rotate(0x3A98)},
	BackflipSideroll:              {"backflip sideroll", NoCarry, cost.Units(1), false, rotate(0x8000 - 0x0F90)},
	SwordSpinShieldCancel:         {"sword spin shield cancel", Sword, cost.Millis(1250), false, rotate(0x1C72)},
	BiggoronSlashShieldCancel:     {"biggoron slash shield cancel", Biggoron, cost.Units(1), false, rotate(-0x2AAA)},
	BiggoronQuickspinShieldCancel: {"biggoron quickspin shield cancel", Biggoron, cost.Millis(1250), false, rotate(0x38E3)},
	HammerShieldCancel:            {"hammer shield cancel", Hammer, cost.Millis(1250), false, rotate(0x2492)},
	ShieldTopRight:                {"shield top-right", ShieldCorners, cost.Units(1), true, rotate(-0x2000)},
	ShieldTopLeft:                 {"shield top-left", ShieldCorners, cost.Units(1), true, rotate(0x2000)},
	ShieldBottomLeft:              {"shield bottom-left", ShieldCorners, cost.Units(1), true, rotate(0x6000)},
	ShieldBottomRight:             {"shield bottom-right", ShieldCorners, cost.Units(1), true, rotate(-0x6000)},
	CUpFrameTurnLeft:              {"c-up frame turn left", CUpFrameTurn, cost.Millis(1250), false, frameTurn(0x0E38)},
	CUpFrameTurnRight:             {"c-up frame turn right", CUpFrameTurn, cost.Millis(1250), false, frameTurn(-0x0E38)},
}

// All returns every real motion in catalog order.
func All() []Motion {
	out := make([]Motion, 0, Count)
	for m := EssUp; m < count; m++ {
		out = append(out, m)
	}

	return out
}

// Valid reports whether m is a real catalog motion.
func (m Motion) Valid() bool { return m > None && m < count }

// Name is the human-readable motion name, e.g. "ess left".
func (m Motion) Name() string {
	if m < 0 || m >= count {
		return fmt.Sprintf("motion(%d)", int(m))
	}

	return catalog[m].name
}

// String implements fmt.Stringer.
func (m Motion) String() string { return m.Name() }

// Group is the movement group m belongs to.
func (m Motion) Group() Group {
	if !m.Valid() {
		return 0
	}

	return catalog[m].group
}

// BaseCost is the cost of m when it does not follow a chain partner.
func (m Motion) BaseCost() cost.Cost {
	if !m.Valid() {
		return cost.Zero
	}

	return catalog[m].base
}

// TargetLock reports whether the target lock must be active before m starts.
// Such motions are disallowed out of forbidden ranges.
func (m Motion) TargetLock() bool {
	return m.Valid() && catalog[m].lock
}

// Apply runs the raw transform. The result is not reduced into the angle
// domain; callers wrap it. ok is false when m has no effect from s.
func (m Motion) Apply(s angle.State) (int, bool) {
	if !m.Valid() {
		return 0, false
	}

	return catalog[m].apply(int(s))
}

// Parse resolves a motion by name. Underscores stand for spaces so names can
// be passed as single shell words ("ess_left").
func Parse(name string) (Motion, error) {
	n := normalize(name)
	for m := EssUp; m < count; m++ {
		if catalog[m].name == n {
			return m, nil
		}
	}

	return None, fmt.Errorf("%w: %q", ErrUnknownMotion, name)
}

// MarshalText implements encoding.TextMarshaler.
func (m Motion) MarshalText() ([]byte, error) { return []byte(m.Name()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Motion) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*m = v

	return nil
}

// ParsePair reads a chain key written "prev -> next".
func ParsePair(str string) (Pair, error) {
	prev, next, ok := strings.Cut(str, "->")
	if !ok {
		return Pair{}, fmt.Errorf("%w: chain %q must be written \"prev -> next\"", ErrUnknownMotion, str)
	}
	p, err := Parse(prev)
	if err != nil {
		return Pair{}, err
	}
	n, err := Parse(next)
	if err != nil {
		return Pair{}, err
	}

	return Pair{Prev: p, Next: n}, nil
}

// String formats the pair as "prev -> next".
func (p Pair) String() string { return p.Prev.Name() + " -> " + p.Next.Name() }

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "_", " ")))
}
