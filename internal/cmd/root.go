package cmd

import (
	"io"
	"log/slog"
	"os"

	"charm.land/log/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/meigma/npk/version"
)

const (
	groupExtract = "extract"
	groupAnalyze = "analyze"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	verbose bool
	workers int
	plain   bool

	logger *slog.Logger
}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "npk",
		Short: "npk - unpack NXPK containers and recover their scripts",
		Long: `npk reads NXPK containers, the asset packages shipped inside a game's
installer bundle, and recovers their contents.

Entry names are resolved from the manifest embedded in the first container
of a batch. Encrypted script payloads (nxs) can be decrypted and handed to an
external decompiler.

Use subcommands to perform different operations:
  - unpack: extract one or more containers
  - xapk: run the whole pipeline on an .xapk bundle
  - nxs: decrypt nxs payload files
  - inspect: print a container header and entry map
  - scan: classify every file of a tree by signature`,
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.verbose)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().IntVarP(&opts.workers, "workers", "j", 0, "Number of parallel workers (default: number of CPUs)")
	rootCmd.PersistentFlags().BoolVar(&opts.plain, "plain", false, "Print progress as plain lines")

	rootCmd.AddGroup(&cobra.Group{ID: groupExtract, Title: "Extraction Commands"})
	rootCmd.AddGroup(&cobra.Group{ID: groupAnalyze, Title: "Analysis Commands"})

	unpackCmd := NewUnpackCmd(opts)
	xapkCmd := NewXAPKCmd(opts)
	nxsCmd := NewNXSCmd(opts)
	inspectCmd := NewInspectCmd(opts)
	scanCmd := NewScanCmd(opts)

	unpackCmd.GroupID = groupExtract
	xapkCmd.GroupID = groupExtract
	nxsCmd.GroupID = groupExtract
	inspectCmd.GroupID = groupAnalyze
	scanCmd.GroupID = groupAnalyze

	rootCmd.AddCommand(unpackCmd, xapkCmd, nxsCmd, inspectCmd, scanCmd, NewVersionCmd())
	return rootCmd
}

// newLogger returns a slog logger backed by a charm log handler.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: verbose,
		Prefix:          "npk",
	})
	return slog.New(handler)
}

// terminal describes where progress output goes.
type terminal struct {
	w     io.Writer
	plain bool
	width int
}

// newTerminal wraps w in a color profile writer so styled progress degrades
// on limited terminals. Output that is not a terminal is rendered plain.
func (o *globalOptions) newTerminal(w io.Writer) terminal {
	cw := colorprofile.NewWriter(w, os.Environ())
	t := terminal{
		w:     cw,
		plain: o.plain || cw.Profile == colorprofile.NoTTY,
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(f.Fd()) {
		if width, _, err := term.GetSize(f.Fd()); err == nil {
			t.width = width
		}
	}
	return t
}
