package batch

import "github.com/meigma/npk/internal/npktype"

// ProcessStats contains statistics from extracting one container.
type ProcessStats struct {
	// Entries is the number of map records visited.
	Entries int

	// Written is the number of files committed to the sink.
	Written int

	// Skipped is the number of outputs skipped (ShouldProcess returned false).
	Skipped int

	// Unknown is the number of entries given a synthesized name.
	Unknown int

	// Flagged is the number of entries that used a recognised but
	// unobserved compression code.
	Flagged int

	// TotalBytes is the sum of the sizes of all written files.
	TotalBytes uint64

	// Failed lists recovered per-entry failures.
	Failed []npktype.EntryError
}

// Add accumulates stats from another ProcessStats into this one.
func (s *ProcessStats) Add(other ProcessStats) {
	s.Entries += other.Entries
	s.Written += other.Written
	s.Skipped += other.Skipped
	s.Unknown += other.Unknown
	s.Flagged += other.Flagged
	s.TotalBytes += other.TotalBytes
	s.Failed = append(s.Failed, other.Failed...)
}
