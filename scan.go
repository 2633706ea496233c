package npk

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/goccy/go-json"
)

// ScannedFile is one recognised file found by Scan.
type ScannedFile struct {
	Path string `json:"path"`
	Kind Kind   `json:"kind"`
}

// ScanReport is the result of Scan.
type ScanReport struct {
	// Files lists every file with a known kind, in walk order.
	Files []ScannedFile

	// Counts holds the number of files per kind. KindUnknown is always
	// present; empty files count as KindNone.
	Counts map[Kind]int
}

// Scan sniffs every regular file under root.
func Scan(root string) (ScanReport, error) {
	report := ScanReport{Counts: map[Kind]int{KindUnknown: 0}}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		kind, err := SniffFile(path)
		if err != nil {
			return fmt.Errorf("npk: scan %s: %w", path, err)
		}
		report.Counts[kind]++
		if kind != KindUnknown {
			report.Files = append(report.Files, ScannedFile{Path: path, Kind: kind})
		}
		return nil
	})
	return report, err
}

// WriteListing writes one " kind - path" line per recognised file.
func (r ScanReport) WriteListing(w io.Writer) error {
	for _, f := range r.Files {
		if _, err := fmt.Fprintf(w, "%-6s- %s\n", " "+string(f.Kind)+" ", f.Path); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the per-kind counts as an indented JSON object with
// sorted keys.
func (r ScanReport) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r.Counts, "", "    ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
