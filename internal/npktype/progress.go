package npktype

// ProgressEvent represents a progress update during unpacking or a
// downstream stage.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Container is the base name of the container being processed, if any.
	Container string

	// Slot is the fixed position assigned to the container within a batch.
	Slot int

	// Path is the output path currently being written, relative to the
	// destination root.
	Path string

	// FilesDone is the number of entries or files completed.
	FilesDone int

	// FilesTotal is the total number of entries or files.
	FilesTotal int

	// Unknown is the number of entries given synthetic names so far.
	Unknown int

	// Failed is the number of failures so far.
	Failed int

	// Err is set when the event reports a recovered failure.
	Err error
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

const (
	// StageOpening indicates a container header and map are being read.
	StageOpening ProgressStage = iota

	// StageResolving indicates the embedded manifest is being decoded.
	StageResolving

	// StageExtracting indicates entries are being decoded and written.
	StageExtracting

	// StageDecrypting indicates NXS payloads are being decrypted.
	StageDecrypting

	// StageDecompiling indicates recovered bytecode is being decompiled.
	StageDecompiling

	// StageDone indicates a container or stage finished.
	StageDone
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageOpening:
		return "opening"
	case StageResolving:
		return "resolving"
	case StageExtracting:
		return "extracting"
	case StageDecrypting:
		return "decrypting"
	case StageDecompiling:
		return "decompiling"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during operations.
// Implementations must be safe for concurrent calls.
type ProgressFunc func(ProgressEvent)
