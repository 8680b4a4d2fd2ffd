// Package format turns a motion path into the run-length form players read:
// "2 ess left" followed by the angle reached after the run.
package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/motion"
)

// Step is a run of one repeated motion and the angle reached after it.
type Step struct {
	Motion motion.Motion `json:"motion"`
	Count  int           `json:"count"`
	State  angle.State   `json:"state"`
}

// Label is "<count> <motion>", e.g. "3 ess left".
func (s Step) Label() string {
	return strconv.Itoa(s.Count) + " " + s.Motion.Name()
}

// Steps walks path forward from origin and collapses consecutive identical
// motions. A motion the table cannot apply leaves the angle unchanged; that
// only happens if path did not come from a graph built with table.
func Steps(table motion.Table, origin angle.State, path []motion.Motion) []Step {
	var out []Step
	s := origin
	for _, m := range path {
		if to, ok := table.Apply(m, s); ok {
			s = angle.Wrap(to)
		}
		if n := len(out); n > 0 && out[n-1].Motion == m {
			out[n-1].Count++
			out[n-1].State = s
			continue
		}
		out = append(out, Step{Motion: m, Count: 1, State: s})
	}

	return out
}

// Text writes the readable form of a route:
//
//	start at 0000
//	2 ess left  to 0x0e10
//	1 turn left to 0x4e10
func Text(w io.Writer, origin angle.State, steps []Step) error {
	if _, err := fmt.Fprintf(w, "start at %04X\n", uint16(origin)); err != nil {
		return err
	}

	width := 0
	for _, s := range steps {
		if l := len(s.Label()); l > width {
			width = l
		}
	}
	for _, s := range steps {
		label := s.Label()
		pad := strings.Repeat(" ", width-len(label))
		if _, err := fmt.Fprintf(w, "%s%s to 0x%04x\n", label, pad, uint16(s.State)); err != nil {
			return err
		}
	}

	return nil
}
