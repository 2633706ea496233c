package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/meigma/npk"
)

// NewNXSCmd creates the nxs subcommand.
func NewNXSCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "nxs PATH...",
		Short: "Decrypt nxs payload files",
		Long: `Decrypt nxs payloads. Directories are searched for *.nxs files.

Each plaintext is written next to its input, named after it with the last
extension replaced by the sniffed kind (usually .cpyc).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectFiles(args, npk.KindNXS.Ext())
			if err != nil {
				return err
			}

			t := g.newTerminal(cmd.OutOrStdout())
			line := newStageLine(t)
			start := time.Now()

			res, err := npk.RunStage(cmd.Context(), files, func(_ context.Context, path string) error {
				_, err := npk.DecryptNXSFile(path)
				return err
			},
				npk.StageWithWorkers(g.workers),
				npk.StageWithStage(npk.StageDecrypting),
				npk.StageWithLogger(g.logger),
				npk.StageWithProgress(line.update))
			line.finish()
			if err != nil {
				return err
			}

			printStage(t.w, res, "")
			printDone(t.w, start)
			if res.Failed > 0 {
				return fmt.Errorf("%d of %d files could not be decrypted", res.Failed, res.Total)
			}
			return nil
		},
	}
}

// collectFiles expands directories to the files under them ending in ext.
func collectFiles(args []string, ext string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := npk.FindFiles(arg, ext)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}
