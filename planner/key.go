package planner

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/katalvlaran/anglepath/costmodel"
)

// Key identifies req together with the planner's cost table. Requests that
// differ only in defaulted fields share a key. Start order is kept since it
// decides tie order between equal-cost routes.
func (p *Planner) Key(req Request) string {
	req = req.WithDefaults()

	var b strings.Builder
	b.WriteString(p.fingerprint)
	b.WriteString("|g")
	for _, g := range req.Groups {
		b.WriteByte(' ')
		b.WriteString(g.String())
	}
	b.WriteString("|s")
	for _, s := range req.Starts {
		b.WriteByte(' ')
		b.WriteString(s.String())
	}
	b.WriteString("|t")
	for _, s := range req.Targets {
		b.WriteByte(' ')
		b.WriteString(s.String())
	}
	b.WriteString("|a")
	for _, r := range req.Avoid {
		b.WriteByte(' ')
		b.WriteString(r.String())
	}
	b.WriteString("|" + strconv.Itoa(req.Sample) + "|" + strconv.Itoa(req.Number) + "|" + req.Flex.String())

	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}

// fingerprint renders a cost table in a fixed order.
func fingerprint(t costmodel.Table) string {
	lines := make([]string, 0, len(t.Base)+len(t.Chains))
	for m, c := range t.Base {
		lines = append(lines, m.Name()+"="+c.String())
	}
	for p, c := range t.Chains {
		lines = append(lines, p.String()+"="+c.String())
	}
	sort.Strings(lines)

	return strings.Join(lines, ";")
}
