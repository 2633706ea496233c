package npk

import (
	_ "crypto/sha256" // digest.FromBytes
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/goccy/go-json"
	"github.com/opencontainers/go-digest"
)

// RecoveredFile describes one file written by an extraction.
type RecoveredFile struct {
	Container string        `json:"container"`
	Index     int           `json:"index"`
	Hash      uint64        `json:"hash"`
	Path      string        `json:"path"`
	Kind      Kind          `json:"kind"`
	Size      int           `json:"size"`
	Unknown   bool          `json:"unknown,omitempty"`
	Digest    digest.Digest `json:"digest"`
}

// Report writes RecoveredFile records as JSON lines. It is safe for
// concurrent use.
type Report struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
	count  int
	err    error
}

// NewReport returns a report writing to w.
func NewReport(w io.Writer) *Report {
	return &Report{enc: json.NewEncoder(w)}
}

// CreateReport creates or truncates the report file at path.
func CreateReport(path string) (*Report, error) {
	f, err := os.Create(path) //nolint:gosec // user-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("npk: create report: %w", err)
	}
	r := NewReport(f)
	r.closer = f
	return r, nil
}

// Record appends one record. After the first write error every later call
// returns that error.
func (r *Report) Record(f RecoveredFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if err := r.enc.Encode(f); err != nil {
		r.err = fmt.Errorf("npk: write report: %w", err)
		return r.err
	}
	r.count++
	return nil
}

// Count returns the number of records written.
func (r *Report) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Close closes the report file, if CreateReport opened it, and returns the
// first write error.
func (r *Report) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closer != nil {
		if err := r.closer.Close(); err != nil && r.err == nil {
			r.err = err
		}
		r.closer = nil
	}
	return r.err
}

func recoveredFile(container string, out *batchOutput, content []byte) RecoveredFile {
	return RecoveredFile{
		Container: container,
		Index:     out.Entry.Index,
		Hash:      out.Entry.NameHash,
		Path:      out.Path,
		Kind:      out.Kind,
		Size:      len(content),
		Unknown:   out.Unknown,
		Digest:    digest.FromBytes(content),
	}
}
