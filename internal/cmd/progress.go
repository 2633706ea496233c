package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/meigma/npk"
)

//nolint:gochecknoglobals
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	doneStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// stageLine renders downstream stage progress on one rewritten line:
//
//	   12/40 | Failed: 1 > client/main.pyc
type stageLine struct {
	mu    sync.Mutex
	t     terminal
	dirty bool
}

func newStageLine(t terminal) *stageLine {
	return &stageLine{t: t}
}

func (s *stageLine) update(ev npk.ProgressEvent) {
	if ev.Stage == npk.StageDone {
		return
	}
	line := fmt.Sprintf("%5d/%d", ev.FilesDone, ev.FilesTotal)
	if ev.Failed > 0 {
		line += " | " + failedStyle.Render(fmt.Sprintf("Failed: %d", ev.Failed))
	}
	line += " > " + ev.Path

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t.plain {
		fmt.Fprintln(s.t.w, ansi.Strip(line))
		return
	}
	if s.t.width > 0 {
		line = ansi.Truncate(line, s.t.width, "…")
	}
	fmt.Fprint(s.t.w, "\r"+ansi.EraseEntireLine+line)
	s.dirty = true
}

// finish ends the rewritten line.
func (s *stageLine) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty {
		fmt.Fprintln(s.t.w)
		s.dirty = false
	}
}

func printTitle(w io.Writer, title string) {
	fmt.Fprintln(w, titleStyle.Render("***** "+title+" *****"))
}

func printDone(w io.Writer, start time.Time) {
	fmt.Fprintln(w, doneStyle.Render(fmt.Sprintf("Done in %.1fsec", time.Since(start).Seconds())))
}

func printStats(w io.Writer, stats npk.ExtractStats) {
	fmt.Fprintf(w, "%s files written (%s)", humanize.Comma(int64(stats.Written)), humanize.IBytes(stats.TotalBytes))
	if stats.Unknown > 0 {
		fmt.Fprint(w, ", "+warnStyle.Render(fmt.Sprintf("%d unknown", stats.Unknown)))
	}
	if stats.Flagged > 0 {
		fmt.Fprint(w, ", "+warnStyle.Render(fmt.Sprintf("%d flagged", stats.Flagged)))
	}
	if n := len(stats.Failed); n > 0 {
		fmt.Fprint(w, ", "+failedStyle.Render(fmt.Sprintf("%d failed", n)))
	}
	fmt.Fprintln(w)
}

func printStage(w io.Writer, res npk.StageResult, failureLog string) {
	fmt.Fprintf(w, "%s of %s files processed", humanize.Comma(int64(res.Done)), humanize.Comma(int64(res.Total)))
	if res.Failed > 0 {
		msg := fmt.Sprintf("%d failed", res.Failed)
		if failureLog != "" {
			msg += ", wrote in " + failureLog
		}
		fmt.Fprint(w, ", "+warnStyle.Render(msg))
	}
	fmt.Fprintln(w)
}
