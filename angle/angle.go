// Package angle defines the discrete search domain: 65536 facing angles,
// 0x0000 through 0xFFFF, with wrap-around arithmetic.
//
// A State carries no identity beyond its value. Every motion result is
// reduced modulo Count before it becomes a State again.
package angle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Count is the size of the domain.
const Count = 1 << 16

// ErrBadState indicates an angle literal that is not a 16-bit value.
var ErrBadState = errors.New("angle: invalid state")

// State is a single facing angle.
type State uint16

// Wrap reduces any integer angle into the domain.
func Wrap(v int) State {
	return State(uint32(v) & 0xFFFF)
}

// String formats s the way angles are usually written: 0x followed by four
// upper-case hex digits.
func (s State) String() string {
	return fmt.Sprintf("0x%04X", uint16(s))
}

// Parse reads a hex angle. The "0x" prefix is optional since angles are
// conventionally written in hex ("8000" and "0x8000" are the same state).
// A leading '#' selects decimal ("#32768").
func Parse(str string) (State, error) {
	raw := strings.TrimSpace(str)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrBadState)
	}

	base := 16
	digits := raw
	switch {
	case strings.HasPrefix(raw, "#"):
		base, digits = 10, raw[1:]
	case strings.HasPrefix(raw, "0x"), strings.HasPrefix(raw, "0X"):
		digits = raw[2:]
	}

	v, err := strconv.ParseUint(digits, base, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadState, str)
	}

	return State(v), nil
}

// MustParse is Parse for constants in tests and tables; it panics on error.
func MustParse(str string) State {
	s, err := Parse(str)
	if err != nil {
		panic(err)
	}

	return s
}

// ParseAll parses every element of list, stopping at the first error.
func ParseAll(list []string) ([]State, error) {
	out := make([]State, 0, len(list))
	for _, str := range list {
		s, err := Parse(str)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*s = v

	return nil
}
