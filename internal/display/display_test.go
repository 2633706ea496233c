package display

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/npk/internal/npktype"
)

func TestDisplay_Plain(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	d := New(&buf, []string{"script.npk", "res1.npk"}, WithPlain(true))

	d.Update(npktype.ProgressEvent{Slot: 0, Container: "script.npk", FilesDone: 1, FilesTotal: 2, Path: "foo/bar.txt"})
	d.Update(npktype.ProgressEvent{Slot: 1, FilesDone: 2, FilesTotal: 2, Unknown: 1, Stage: npktype.StageDone})

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "script.npk >>     1/2     > foo/bar.txt", lines[0])
	assert.Equal(t, "res1.npk   >>     2/2     | unknown: 1 done", lines[1])
}

func TestDisplay_LineAddressed(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	d := New(&buf, []string{"a.npk", "b.npk"})
	d.Start()

	header := buf.String()
	assert.Equal(t, 2, strings.Count(header, "\n"))
	assert.Contains(t, ansi.Strip(header), "a.npk")
	assert.Contains(t, ansi.Strip(header), "b.npk")
	buf.Reset()

	d.Update(npktype.ProgressEvent{Slot: 0, FilesDone: 3, FilesTotal: 9, Path: "x.py"})
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\r"+ansi.CursorUp(2)+ansi.EraseEntireLine))
	assert.True(t, strings.HasSuffix(out, "\r"+ansi.CursorDown(2)))
	assert.NotContains(t, out, "\n")
	assert.Contains(t, ansi.Strip(d.Last(0)), "3/9")
	assert.Contains(t, ansi.Strip(d.Last(0)), "> x.py")
}

func TestDisplay_ErrorsAndBounds(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	d := New(&buf, []string{"a.npk"}, WithPlain(true))

	d.Update(npktype.ProgressEvent{Slot: 5})
	d.Update(npktype.ProgressEvent{Slot: -1})
	assert.Empty(t, buf.String())

	d.Update(npktype.ProgressEvent{Slot: 0, Failed: 1, Err: errors.New("boom")})
	assert.Contains(t, buf.String(), "failed: 1")
	assert.Contains(t, buf.String(), "> boom")
	assert.Empty(t, d.Last(7))
}

func TestDisplay_Truncate(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	d := New(&buf, []string{"a.npk"}, WithWidth(20))
	d.Update(npktype.ProgressEvent{Slot: 0, Path: strings.Repeat("very/long/path/", 10)})

	assert.LessOrEqual(t, ansi.StringWidth(d.Last(0)), 20)
}

func TestDisplay_Concurrent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	names := []string{"a", "b", "c", "d"}
	d := New(&buf, names)
	progress := d.Progress()

	var wg sync.WaitGroup
	for slot := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				progress(npktype.ProgressEvent{Slot: slot, FilesDone: i + 1, FilesTotal: 50})
			}
		}()
	}
	wg.Wait()

	// Every update is a complete up/erase/down sequence.
	updates := buf.String()[strings.Index(buf.String(), "\r"):]
	assert.Equal(t, 200, strings.Count(updates, ansi.EraseEntireLine))
	for slot := range names {
		assert.Contains(t, ansi.Strip(d.Last(slot)), "50/50")
	}
}
