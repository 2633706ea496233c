package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/meigma/npk"
)

// NewUnpackCmd creates the unpack subcommand.
func NewUnpackCmd(g *globalOptions) *cobra.Command {
	var (
		output      string
		decryptNXS  bool
		noOverwrite bool
		reportPath  string
		maxEntry    uint64
	)

	cmd := &cobra.Command{
		Use:   "unpack NPK...",
		Short: "Extract one or more containers",
		Long: `Extract every entry of the given containers into one output directory.

The first container carrying a manifest names the entries of the whole
batch; entries missing from it are written as _unknown_<hash>. Extensions
are replaced by the signature sniffed from each payload.

When no output is given, the first container's path without its extension
is used.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := g.newTerminal(cmd.OutOrStdout())
			start := time.Now()

			opts := []npk.UnpackOption{
				npk.UnpackWithLogger(g.logger),
				npk.UnpackWithWorkers(g.workers),
				npk.UnpackWithDisplay(t.w, t.plain, t.width),
				npk.UnpackWithOverwrite(!noOverwrite),
				npk.UnpackWithNXS(decryptNXS),
				npk.UnpackWithMaxEntrySize(maxEntry),
			}
			if reportPath != "" {
				opts = append(opts, npk.UnpackWithReport(reportPath))
			}

			res, err := npk.Unpack(cmd.Context(), args, output, opts...)
			if err != nil {
				return err
			}

			printStats(t.w, res.Stats)
			printDone(t.w, start)
			g.logger.Debug("unpack finished", "dest", res.Dest, "manifest", res.ManifestFrom, "paths", res.PathMap.Len())

			if n := len(res.Errors); n > 0 {
				return fmt.Errorf("%d of %d containers could not be opened", n, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory")
	cmd.Flags().BoolVar(&decryptNXS, "nxs", false, "Decrypt nxs payloads while extracting")
	cmd.Flags().BoolVar(&noOverwrite, "no-overwrite", false, "Keep files that already exist")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a JSON-lines report of recovered files")
	cmd.Flags().Uint64Var(&maxEntry, "max-entry-size", npk.DefaultMaxEntrySize, "Reject entries larger than this many bytes")

	return cmd
}
