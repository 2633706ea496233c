// Package display renders batch progress as one terminal line per container.
//
// Every container owns a fixed line. An update moves the cursor up to that
// line, rewrites it and moves back, all under one lock so concurrent workers
// never interleave escape sequences.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/meigma/npk/internal/npktype"
)

const nameWidth = 10

// Display is a line-addressed progress surface. It is safe for concurrent use.
type Display struct {
	mu      sync.Mutex
	w       io.Writer
	names   []string
	width   int
	plain   bool
	started bool
	last    []string

	nameStyle    lipgloss.Style
	unknownStyle lipgloss.Style
	failedStyle  lipgloss.Style
	doneStyle    lipgloss.Style
}

// Option configures a Display.
type Option func(*Display)

// WithWidth truncates rendered lines to width cells. Zero disables truncation.
func WithWidth(width int) Option {
	return func(d *Display) {
		d.width = width
	}
}

// WithPlain writes one unstyled line per update instead of rewriting fixed
// lines. Use it when the writer is not a terminal.
func WithPlain(plain bool) Option {
	return func(d *Display) {
		d.plain = plain
	}
}

// New returns a display with one line per name, in slot order.
func New(w io.Writer, names []string, opts ...Option) *Display {
	d := &Display{
		w:            w,
		names:        names,
		last:         make([]string, len(names)),
		nameStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		unknownStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("3")),
		failedStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		doneStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start reserves the lines by printing each name once. Updates before Start
// trigger it implicitly.
func (d *Display) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.start()
}

func (d *Display) start() {
	if d.started {
		return
	}
	d.started = true
	if d.plain {
		return
	}
	for _, name := range d.names {
		fmt.Fprintln(d.w, ansi.EraseEntireLine+d.nameStyle.Render(name))
	}
}

// Update renders ev on the line of its slot. Events for unknown slots are
// ignored.
func (d *Display) Update(ev npktype.ProgressEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ev.Slot < 0 || ev.Slot >= len(d.names) {
		return
	}
	d.start()

	if d.plain {
		fmt.Fprintln(d.w, ansi.Strip(d.line(ev)))
		return
	}

	line := d.truncate(d.line(ev))
	d.last[ev.Slot] = line
	move := len(d.names) - ev.Slot

	var b strings.Builder
	b.WriteString("\r")
	b.WriteString(ansi.CursorUp(move))
	b.WriteString(ansi.EraseEntireLine)
	b.WriteString(line)
	b.WriteString("\r")
	b.WriteString(ansi.CursorDown(move))
	io.WriteString(d.w, b.String()) //nolint:errcheck // progress output is best effort
}

// Progress returns Update as a progress callback.
func (d *Display) Progress() npktype.ProgressFunc {
	return d.Update
}

// Last returns the most recent line rendered for slot.
func (d *Display) Last(slot int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if slot < 0 || slot >= len(d.last) {
		return ""
	}
	return d.last[slot]
}

// line formats one progress line:
//
//	name       >>   12/40    | unknown: 3 > path/to/file
func (d *Display) line(ev npktype.ProgressEvent) string {
	name := ev.Container
	if name == "" {
		name = d.names[ev.Slot]
	}

	var b strings.Builder
	b.WriteString(d.nameStyle.Render(fmt.Sprintf("%-*s >>", nameWidth, name)))
	fmt.Fprintf(&b, " %5d/%-5d", ev.FilesDone, ev.FilesTotal)
	if ev.Unknown > 0 {
		b.WriteString(" | ")
		b.WriteString(d.unknownStyle.Render(fmt.Sprintf("unknown: %d", ev.Unknown)))
	}
	if ev.Failed > 0 {
		b.WriteString(" | ")
		b.WriteString(d.failedStyle.Render(fmt.Sprintf("failed: %d", ev.Failed)))
	}
	switch {
	case ev.Stage == npktype.StageDone:
		b.WriteString(" ")
		b.WriteString(d.doneStyle.Render("done"))
	case ev.Err != nil:
		b.WriteString(" > ")
		b.WriteString(d.failedStyle.Render(ev.Err.Error()))
	case ev.Path != "":
		b.WriteString(" > ")
		b.WriteString(ev.Path)
	}
	return b.String()
}

func (d *Display) truncate(s string) string {
	if d.width <= 0 {
		return s
	}
	return ansi.Truncate(s, d.width, "…")
}
