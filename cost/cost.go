// Package cost implements the exact fixed-point cost value used throughout
// the search.
//
// Costs are non-negative rationals with a resolution of one thousandth. They
// are stored as an int64 count of thousandths so that tie and margin checks
// such as `c > best + flex` are exact and reproducible; there is no binary
// floating point anywhere on the comparison path.
//
// Parsing is exact for decimal literals ("0.075", "1.25", "3"). Only native
// float inputs (e.g. numbers in a JSON body) go through rounding, and they are
// rounded to the nearest thousandth once, at the boundary.
package cost

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Scale is the number of Cost units in 1.
const Scale = 1000

// Sentinel errors returned by the parsers.
var (
	// ErrSyntax indicates a literal that is not a plain decimal number.
	ErrSyntax = errors.New("cost: invalid decimal")

	// ErrPrecision indicates a literal finer than one thousandth.
	ErrPrecision = errors.New("cost: more than 3 fractional digits")

	// ErrNegative indicates a negative literal; costs are never negative.
	ErrNegative = errors.New("cost: negative value")

	// ErrRange indicates a value above Max.
	ErrRange = errors.New("cost: value out of range")
)

// Cost is a fixed-point value in thousandths.
type Cost int64

// Zero is the cost of doing nothing.
const Zero Cost = 0

// DefaultFlex is the tolerated overrun above the best known cost, both when
// admitting edges and when enumerating paths.
const DefaultFlex Cost = 3 * Scale

// Max is the largest cost the parsers accept. A path has at most 65536 steps,
// so sums of parsed costs stay far below math.MaxInt64.
const Max Cost = 1_000_000_000 * Scale

// Millis builds a Cost from a count of thousandths.
func Millis(n int64) Cost { return Cost(n) }

// Units builds a Cost from a whole number.
func Units(n int64) Cost { return Cost(n * Scale) }

// Millis returns the raw count of thousandths.
func (c Cost) Millis() int64 { return int64(c) }

// Float returns an approximate float64, for display and metrics only.
func (c Cost) Float() float64 { return float64(c) / Scale }

// String prints c as a trimmed decimal: "0.825", "1.25", "3".
func (c Cost) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign, v = "-", -v
	}
	whole, frac := v/Scale, v%Scale
	if frac == 0 {
		return sign + strconv.FormatInt(whole, 10)
	}

	f := strings.TrimRight(fmt.Sprintf("%03d", frac), "0")

	return sign + strconv.FormatInt(whole, 10) + "." + f
}

// Parse reads a non-negative decimal literal exactly.
func Parse(str string) (Cost, error) {
	raw := strings.TrimSpace(str)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrSyntax)
	}
	if strings.HasPrefix(raw, "-") {
		return 0, fmt.Errorf("%w: %q", ErrNegative, str)
	}
	raw = strings.TrimPrefix(raw, "+")

	whole, frac, hasDot := strings.Cut(raw, ".")
	if whole == "" && (!hasDot || frac == "") {
		return 0, fmt.Errorf("%w: %q", ErrSyntax, str)
	}
	if whole == "" {
		whole = "0"
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, fmt.Errorf("%w: %q", ErrSyntax, str)
	}

	frac = strings.TrimRight(frac, "0")
	if len(frac) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrPrecision, str)
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w > (math.MaxInt64-(Scale-1))/Scale {
		return 0, fmt.Errorf("%w: %q", ErrRange, str)
	}

	var f int64
	if frac != "" {
		f, _ = strconv.ParseInt(frac+strings.Repeat("0", 3-len(frac)), 10, 64)
	}

	c := Cost(w*Scale + f)
	if c > Max {
		return 0, fmt.Errorf("%w: %q above %s", ErrRange, str, Max)
	}

	return c, nil
}

// MustParse is Parse for tables and tests; it panics on error.
func MustParse(str string) Cost {
	c, err := Parse(str)
	if err != nil {
		panic(err)
	}

	return c
}

// FromFloat rounds f to the nearest thousandth.
func FromFloat(f float64) (Cost, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrSyntax, f)
	}
	if f < 0 {
		return 0, fmt.Errorf("%w: %v", ErrNegative, f)
	}
	if f > Max.Float() {
		return 0, fmt.Errorf("%w: %v above %s", ErrRange, f, Max)
	}

	return Cost(math.Round(f * Scale)), nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Cost) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with the exact parser,
// so YAML scalars like 0.075 never pass through a float.
func (c *Cost) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = v

	return nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
