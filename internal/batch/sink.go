package batch

import (
	"io"

	"github.com/meigma/npk/internal/magic"
	"github.com/meigma/npk/internal/npktype"
)

// Entry is an alias for npktype.Entry.
type Entry = npktype.Entry

// Output describes one recovered file.
type Output struct {
	// Entry is the map record the file came from.
	Entry Entry

	// Path is the slash-separated output path relative to the destination.
	Path string

	// Kind is the sniffed kind of the final bytes.
	Kind magic.Kind

	// Unknown is set when the path was synthesized from the hash.
	Unknown bool
}

// Sink receives decoded entry content during batch processing.
//
// Implementations determine where content is written and can filter which
// outputs to write.
type Sink interface {
	// ShouldProcess returns false if this output should be skipped.
	ShouldProcess(out *Output) bool

	// Writer returns a writer for the output's content.
	// The returned Committer must have Commit() called after a successful
	// write, or Discard() called on any error.
	Writer(out *Output) (Committer, error)
}

// Committer is a writer that can be committed or discarded.
//
// A file-based implementation writes to a temp file and renames it on
// Commit, or deletes it on Discard.
type Committer interface {
	io.Writer

	// Commit finalizes the write, making content available.
	Commit() error

	// Discard aborts the write and cleans up any temporary resources.
	Discard() error
}
