// Package report renders planner results for people and programs: the
// classic plain-text listing, Markdown (rendered for terminals with
// glamour), and JSON.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/cost"
	"github.com/katalvlaran/anglepath/format"
	"github.com/katalvlaran/anglepath/motion"
	"github.com/katalvlaran/anglepath/navigate"
	"github.com/katalvlaran/anglepath/planner"
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("report: unknown format")

// Format selects the output encoding.
type Format string

// Output formats.
const (
	Text     Format = "text"
	Markdown Format = "markdown"
	JSON     Format = "json"
)

// ParseFormat resolves a format name; "md" is accepted for Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return Text, nil
	case "markdown", "md":
		return Markdown, nil
	case "json":
		return JSON, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Route is a navigate.Route with its formatted steps, the shape written by
// JSON and served over HTTP.
type Route struct {
	Cost    cost.Cost       `json:"cost"`
	Origin  angle.State     `json:"origin"`
	Target  angle.State     `json:"target"`
	Motions []motion.Motion `json:"motions"`
	Steps   []format.Step   `json:"steps"`
}

// Document is the JSON form of a planner.Result.
type Document struct {
	Routes      []Route          `json:"routes"`
	Targets     []planner.Target `json:"targets"`
	Unreachable []angle.State    `json:"unreachable"`
	Visited     int              `json:"visited"`
	Edges       int              `json:"edges"`
	Cached      bool             `json:"cached"`
}

// NewDocument attaches formatted steps to every route of res.
func NewDocument(table motion.Table, res *planner.Result) Document {
	doc := Document{
		Routes:      make([]Route, 0, len(res.Routes)),
		Targets:     res.Targets,
		Unreachable: res.Unreachable,
		Visited:     res.Visited,
		Edges:       res.Edges,
		Cached:      res.Cached,
	}
	for _, r := range res.Routes {
		doc.Routes = append(doc.Routes, withSteps(table, r))
	}

	return doc
}

func withSteps(table motion.Table, r navigate.Route) Route {
	steps := format.Steps(table, r.Origin, r.Motions)
	if steps == nil {
		steps = []format.Step{}
	}

	return Route{Cost: r.Cost, Origin: r.Origin, Target: r.Target, Motions: r.Motions, Steps: steps}
}

// Writer renders results onto one output.
type Writer struct {
	out     io.Writer
	table   motion.Table
	profile termenv.Profile
	style   string
	width   int
}

// Option configures a Writer.
type Option func(*Writer)

// WithColor forces colored (true) or plain (false) text output.
func WithColor(on bool) Option {
	return func(w *Writer) {
		if on {
			w.profile = termenv.ANSI256
		} else {
			w.profile = termenv.Ascii
		}
	}
}

// WithWidth sets the Markdown word-wrap width.
func WithWidth(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.width = n
		}
	}
}

// WithStyle selects a glamour style ("dark", "light", "notty", ...).
func WithStyle(style string) Option {
	return func(w *Writer) {
		w.style = style
	}
}

// New returns a Writer with plain output, 80 columns and the "notty" style.
func New(out io.Writer, table motion.Table, opts ...Option) *Writer {
	w := &Writer{out: out, table: table, profile: termenv.Ascii, style: "notty", width: 80}
	for _, opt := range opts {
		opt(w)
	}

	return w
}

// ForFile returns a Writer configured for f: color, auto style and the
// terminal width when f is a terminal, plain output otherwise.
func ForFile(f *os.File, table motion.Table) *Writer {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return New(f, table)
	}
	w := New(f, table, WithStyle("auto"))
	w.profile = termenv.NewOutput(f).EnvColorProfile()
	if width, _, err := term.GetSize(fd); err == nil {
		w.width = width
	}

	return w
}

// Write renders res in the given format.
func (w *Writer) Write(f Format, res *planner.Result) error {
	switch f {
	case Text:
		return w.Text(res)
	case Markdown:
		return w.Markdown(res)
	case JSON:
		return w.JSON(res)
	}

	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// Text writes every route as
//
//	cost: 0.825
//	-----
//	start at 0000
//	2 ess left to 0x0e10
//	-----
//
// or a hint when there are no routes at all.
func (w *Writer) Text(res *planner.Result) error {
	if len(res.Routes) == 0 {
		_, err := fmt.Fprintln(w.out, w.paint("No way to get to the desired angle!", "1")+"\nAdd some more motions.")
		return err
	}

	for _, r := range res.Routes {
		head := w.paint("cost: "+r.Cost.String(), "3")
		if _, err := fmt.Fprintf(w.out, "%s\n-----\n", head); err != nil {
			return err
		}
		if err := format.Text(w.out, r.Origin, format.Steps(w.table, r.Origin, r.Motions)); err != nil {
			return err
		}
		if _, err := fmt.Fprint(w.out, "-----\n\n"); err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) paint(s, color string) string {
	if w.profile == termenv.Ascii {
		return s
	}

	return w.profile.String(s).Foreground(w.profile.Color(color)).Bold().String()
}

// Markdown renders res through glamour.
func (w *Writer) Markdown(res *planner.Result) error {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(w.width)}
	if w.style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(w.style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	out, err := r.Render(MarkdownSource(w.table, res))
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	_, err = io.WriteString(w.out, out)

	return err
}

// MarkdownSource is the unrendered Markdown for res.
func MarkdownSource(table motion.Table, res *planner.Result) string {
	var b strings.Builder
	b.WriteString("# Routes\n\n")
	if len(res.Routes) == 0 {
		b.WriteString("No way to get to the desired angle! Add some more motions.\n")
	}
	for i, r := range res.Routes {
		fmt.Fprintf(&b, "## %d. %s to %s, cost %s\n\n", i+1, r.Origin, r.Target, r.Cost)
		steps := format.Steps(table, r.Origin, r.Motions)
		if len(steps) == 0 {
			b.WriteString("Already there.\n\n")
			continue
		}
		b.WriteString("| Steps | Angle |\n|---|---|\n")
		for _, s := range steps {
			fmt.Fprintf(&b, "| %s | `%s` |\n", s.Label(), s.State)
		}
		b.WriteString("\n")
	}
	if len(res.Unreachable) > 0 {
		names := make([]string, len(res.Unreachable))
		for i, s := range res.Unreachable {
			names[i] = "`" + s.String() + "`"
		}
		fmt.Fprintf(&b, "Unreachable: %s\n", strings.Join(names, ", "))
	}

	return b.String()
}

// JSON writes the Document form of res.
func (w *Writer) JSON(res *planner.Result) error {
	data, err := sonic.ConfigStd.MarshalIndent(NewDocument(w.table, res), "", "  ")
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.out.Write(data)

	return err
}
