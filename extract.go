package npk

import (
	"context"
	"fmt"

	"github.com/meigma/npk/internal/batch"
	"github.com/meigma/npk/internal/nxs"
)

// ExtractStats summarizes the extraction of one or more containers.
type ExtractStats = batch.ProcessStats

type batchOutput = batch.Output

// UnknownName returns the synthesized output name for an entry whose hash
// is not in the path map: "_unknown_" followed by the decimal hash.
func UnknownName(hash uint64) string {
	return batch.UnknownName(hash)
}

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	overwrite  bool
	decryptNXS bool
	slot       int
	progress   ProgressFunc
	report     *Report
}

// ExtractWithOverwrite controls whether existing files are replaced.
// Default: true.
func ExtractWithOverwrite(overwrite bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.overwrite = overwrite
	}
}

// ExtractWithNXS decrypts NXS payloads inline, so their recovered form is
// written instead. Payloads that fail to decrypt are written as stored and
// recorded as failures.
func ExtractWithNXS(enabled bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.decryptNXS = enabled
	}
}

// ExtractWithProgress sets a callback invoked once per entry.
func ExtractWithProgress(fn ProgressFunc) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.progress = fn
	}
}

// ExtractWithSlot sets the display slot reported in progress events.
func ExtractWithSlot(slot int) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.slot = slot
	}
}

// ExtractWithReport records every written file in r.
func ExtractWithReport(r *Report) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.report = r
	}
}

// Extract writes every entry of c under destDir, in map order.
//
// Names come from pm; entries missing from it use the reserved manifest
// names or a synthesized "_unknown_<hash>" name. The extension of every
// output is replaced by the sniffed kind of its final bytes when that kind
// is known. Per-entry failures are collected in the returned stats and do
// not stop extraction; an error is only returned when ctx is done.
func (c *Container) Extract(ctx context.Context, pm *PathMap, destDir string, opts ...ExtractOption) (ExtractStats, error) {
	cfg := extractConfig{overwrite: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	procOpts := []batch.ProcessorOption{
		batch.WithContainer(c.name),
		batch.WithSlot(cfg.slot),
		batch.WithLogger(c.logger),
		batch.WithProgress(cfg.progress),
	}
	if cfg.decryptNXS {
		codec := nxs.New(c.ops.Pool())
		procOpts = append(procOpts, batch.WithTransform(func(_ *batch.Output, content []byte) ([]byte, bool, error) {
			if !nxs.IsNXS(content) {
				return content, false, nil
			}
			plain, err := codec.Decrypt(content)
			if err != nil {
				return nil, false, err
			}
			return plain, true, nil
		}))
	}
	if cfg.report != nil {
		procOpts = append(procOpts, batch.WithObserver(func(out *batch.Output, content []byte) {
			if err := cfg.report.Record(recoveredFile(c.name, out, content)); err != nil {
				c.logger.Warn("report write failed", "container", c.name, "error", err)
			}
		}))
	}

	sink := batch.NewFileSink(destDir, batch.WithOverwrite(cfg.overwrite))
	stats, err := batch.NewProcessor(c.ops, pm, procOpts...).Process(ctx, c.entries, sink)
	if err != nil {
		return stats, fmt.Errorf("npk: %s: %w", c.name, err)
	}

	c.logger.Info("extracted container",
		"container", c.name,
		"written", stats.Written,
		"unknown", stats.Unknown,
		"failed", len(stats.Failed))
	return stats, nil
}
