package npk

import "github.com/meigma/npk/internal/npktype"

// Re-export progress types from internal/npktype.
type (
	// ProgressEvent represents a progress update during unpacking or a
	// downstream stage.
	ProgressEvent = npktype.ProgressEvent

	// ProgressStage identifies the current phase of an operation.
	ProgressStage = npktype.ProgressStage

	// ProgressFunc receives progress updates during operations.
	// Implementations must be safe for concurrent calls.
	ProgressFunc = npktype.ProgressFunc
)

// Re-export progress stage constants.
const (
	// StageOpening indicates a container header and map are being read.
	StageOpening = npktype.StageOpening

	// StageResolving indicates the embedded manifest is being decoded.
	StageResolving = npktype.StageResolving

	// StageExtracting indicates entries are being decoded and written.
	StageExtracting = npktype.StageExtracting

	// StageDecrypting indicates NXS payloads are being decrypted.
	StageDecrypting = npktype.StageDecrypting

	// StageDecompiling indicates compiled scripts are being decompiled.
	StageDecompiling = npktype.StageDecompiling

	// StageDone indicates a container or stage finished.
	StageDone = npktype.StageDone
)
