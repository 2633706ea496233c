// Package batch extracts the entries of one container into a Sink.
package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/meigma/npk/internal/fileops"
	"github.com/meigma/npk/internal/magic"
	"github.com/meigma/npk/internal/npktype"
	"github.com/meigma/npk/internal/pathhash"
	"github.com/meigma/npk/internal/pathutil"
)

// UnknownPrefix starts the synthesized name of an entry whose hash is not in
// the path map.
const UnknownPrefix = "_unknown_"

// Transform rewrites decoded content before it is classified and written.
// It returns the new content and whether anything changed. On error the
// original content is written and the error is recorded for the entry.
type Transform func(out *Output, content []byte) ([]byte, bool, error)

// Observer is called after each file is committed.
type Observer func(out *Output, content []byte)

// Processor extracts container entries in map order.
//
// Each entry is read at its resolved offset, decoded according to its
// compression code, named through the path map and written to the sink.
// Per-entry failures are recorded in ProcessStats and never stop the
// container.
type Processor struct {
	ops       *fileops.Ops
	paths     *pathhash.Map
	container string
	slot      int
	logger    *slog.Logger
	progress  npktype.ProgressFunc
	transform Transform
	observer  Observer
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithContainer sets the container name used in errors, logs and progress.
func WithContainer(name string) ProcessorOption {
	return func(p *Processor) {
		p.container = name
	}
}

// WithSlot sets the progress slot reported in events.
func WithSlot(slot int) ProcessorOption {
	return func(p *Processor) {
		p.slot = slot
	}
}

// WithLogger sets the logger for recovered failures.
func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithProgress sets a callback invoked once per entry.
func WithProgress(fn npktype.ProgressFunc) ProcessorOption {
	return func(p *Processor) {
		p.progress = fn
	}
}

// WithTransform sets a content transform applied after decoding.
func WithTransform(fn Transform) ProcessorOption {
	return func(p *Processor) {
		p.transform = fn
	}
}

// WithObserver sets a callback invoked after each committed file.
func WithObserver(fn Observer) ProcessorOption {
	return func(p *Processor) {
		p.observer = fn
	}
}

// NewProcessor creates a processor reading through ops and naming entries
// with paths. A nil paths map names every non-manifest entry as unknown.
func NewProcessor(ops *fileops.Ops, paths *pathhash.Map, opts ...ProcessorOption) *Processor {
	p := &Processor{
		ops:    ops,
		paths:  paths,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process extracts entries in order, writing results to the sink.
//
// It only returns an error when ctx is done; the stats gathered so far are
// returned with it.
func (p *Processor) Process(ctx context.Context, entries []Entry, sink Sink) (ProcessStats, error) {
	var stats ProcessStats
	for i := range entries {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Entries++
		path, entryErr := p.processEntry(&entries[i], sink, &stats)
		p.emit(npktype.StageExtracting, path, i+1, len(entries), &stats, entryErr)
	}
	p.emit(npktype.StageDone, "", len(entries), len(entries), &stats, nil)
	return stats, nil
}

// resolution records how an output name was chosen.
type resolution uint8

const (
	resolvedMapped resolution = iota
	resolvedScriptManifest
	resolvedResourceManifest
	resolvedUnknown
)

// processEntry handles a single entry. It returns the output path used and
// the last failure recorded for the entry, if any.
func (p *Processor) processEntry(entry *Entry, sink Sink, stats *ProcessStats) (string, error) {
	var lastErr error
	fail := func(path string, err error) {
		lastErr = p.fail(stats, entry, path, err)
	}

	out := &Output{Entry: *entry}
	var how resolution
	out.Path, how = p.resolve(entry)
	if how == resolvedUnknown {
		out.Unknown = true
		stats.Unknown++
	}

	raw, err := p.ops.ReadRaw(entry)
	if err != nil {
		fail(out.Path, err)
		return out.Path, lastErr
	}

	res, err := p.ops.Decode(entry, raw)
	content := res.Data
	if res.Flagged {
		stats.Flagged++
		p.logger.Warn("unhandled compression code",
			"container", p.container,
			"index", entry.Index,
			"hash", entry.NameHash,
			"compression", entry.CompressionCode)
	}
	if err != nil {
		if len(content) == 0 {
			content = raw
		}
		fail(out.Path, err)
	}

	if how == resolvedResourceManifest {
		inflated, err := p.ops.Inflate(content)
		if err != nil {
			fail(out.Path, err)
		} else {
			content = inflated
		}
	}

	if p.transform != nil {
		next, changed, err := p.transform(out, content)
		if err != nil {
			fail(out.Path, err)
		} else if changed {
			content = next
		}
	}

	out.Kind = magic.Sniff(content)
	if out.Kind.Known() {
		out.Path = pathutil.ReplaceExt(out.Path, string(out.Kind))
	}

	if !pathutil.IsLocal(out.Path) {
		fail(out.Path, npktype.ErrUnsafePath)
		return out.Path, lastErr
	}

	if !sink.ShouldProcess(out) {
		stats.Skipped++
		return out.Path, lastErr
	}
	if err := p.write(out, content, sink); err != nil {
		fail(out.Path, err)
		return out.Path, lastErr
	}

	stats.Written++
	stats.TotalBytes += uint64(len(content))
	if p.observer != nil {
		p.observer(out, content)
	}
	return out.Path, lastErr
}

// resolve names an entry. The path map wins; manifest entries missing from
// it get their reserved names and anything else is synthesized from the hash.
func (p *Processor) resolve(entry *Entry) (string, resolution) {
	if path, ok := p.paths.Lookup(entry.NameHash); ok {
		return path, resolvedMapped
	}
	switch entry.NameHash {
	case npktype.ScriptManifestHash:
		return npktype.ScriptManifestName, resolvedScriptManifest
	case npktype.ResourceManifestHash:
		return npktype.ResourceManifestName, resolvedResourceManifest
	default:
		return UnknownName(entry.NameHash), resolvedUnknown
	}
}

// UnknownName returns the synthesized output name for hash.
func UnknownName(hash uint64) string {
	return UnknownPrefix + strconv.FormatUint(hash, 10)
}

func (p *Processor) write(out *Output, content []byte, sink Sink) error {
	w, err := sink.Writer(out)
	if err != nil {
		return err
	}
	if err := writeAll(w, content); err != nil {
		_ = w.Discard() //nolint:errcheck // best-effort cleanup
		return err
	}
	if err := w.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (p *Processor) fail(stats *ProcessStats, entry *Entry, path string, err error) error {
	entryErr := npktype.EntryError{
		Container: p.container,
		Index:     entry.Index,
		Hash:      entry.NameHash,
		Path:      path,
		Err:       err,
	}
	stats.Failed = append(stats.Failed, entryErr)
	p.logger.Warn("entry failed",
		"container", p.container,
		"index", entry.Index,
		"hash", entry.NameHash,
		"path", path,
		"error", err)
	return &entryErr
}

func (p *Processor) emit(stage npktype.ProgressStage, path string, done, total int, stats *ProcessStats, err error) {
	if p.progress == nil {
		return
	}
	p.progress(npktype.ProgressEvent{
		Stage:      stage,
		Container:  p.container,
		Slot:       p.slot,
		Path:       path,
		FilesDone:  done,
		FilesTotal: total,
		Unknown:    stats.Unknown,
		Failed:     len(stats.Failed),
		Err:        err,
	})
}

func writeAll(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		data = data[n:]
	}
	return nil
}
