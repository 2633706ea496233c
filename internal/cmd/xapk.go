package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/meigma/npk"
)

// NewXAPKCmd creates the xapk subcommand.
func NewXAPKCmd(g *globalOptions) *cobra.Command {
	var (
		decompiler     string
		decompilerArgs []string
	)

	cmd := &cobra.Command{
		Use:   "xapk BUNDLE.xapk OUT_DIR",
		Short: "Run the whole recovery pipeline on an .xapk bundle",
		Long: `Extract an .xapk bundle and everything inside it:

  1. the bundle is unzipped to OUT_DIR/<bundle name>
  2. nested .obb and .apk archives are unzipped next to themselves
  3. assets/script.npk is unpacked to assets/script
  4. every .npk of the obb is unpacked to res_npk
  5. every .nxs script is decrypted
  6. every .pyc script is decompiled, when --decompiler is set

Decompiler arguments may use {src} and {dst}; without --decompiler-arg the
program is run as "<decompiler> -o {dst} {src}". Files the decompiler
rejects are listed in failed_uncompyle.txt in the script directory.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := g.newTerminal(cmd.OutOrStdout())
			line := newStageLine(t)
			start := time.Now()

			opts := []npk.PipelineOption{
				npk.PipelineWithLogger(g.logger),
				npk.PipelineWithWorkers(g.workers),
				npk.PipelineWithDisplay(t.w, t.plain, t.width),
				npk.PipelineWithProgress(func(ev npk.ProgressEvent) {
					if ev.Stage == npk.StageDecrypting || ev.Stage == npk.StageDecompiling {
						line.update(ev)
					}
				}),
			}
			if decompiler != "" {
				opts = append(opts, npk.PipelineWithDecompiler(npk.CommandDecompiler{
					Path: decompiler,
					Args: decompilerArgs,
				}))
			}

			printTitle(t.w, "unpacking "+args[0])
			res, err := npk.UnpackXAPK(cmd.Context(), args[0], args[1], opts...)
			line.finish()
			if err != nil {
				return err
			}

			printTitle(t.w, "script.npk")
			printStats(t.w, res.Script.Stats)
			if res.OBBDir != "" {
				printTitle(t.w, "res*.npk")
				printStats(t.w, res.Resources.Stats)
			}
			printTitle(t.w, "nxs to cpyc")
			printStage(t.w, res.NXS, "")
			g.logger.Info("compiled scripts left encrypted", "count", res.CompiledScripts)
			if !res.DecompileSkipped {
				printTitle(t.w, "pyc to py")
				printStage(t.w, res.Decompile, npk.FailedDecompile)
			}
			printDone(t.w, start)
			return nil
		},
	}

	cmd.Flags().StringVar(&decompiler, "decompiler", "", "Decompiler program run once per .pyc file")
	cmd.Flags().StringArrayVar(&decompilerArgs, "decompiler-arg", nil, "Decompiler argument, repeatable; {src} and {dst} are expanded")
	return cmd
}
