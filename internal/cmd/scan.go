package cmd

import (
	"github.com/spf13/cobra"

	"github.com/meigma/npk"
)

// NewScanCmd creates the scan subcommand.
func NewScanCmd(_ *globalOptions) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "scan DIR",
		Short: "Classify every file of a tree by signature",
		Long: `Sniff every file under DIR, print the recognised ones as "kind - path"
and finish with a JSON object counting files per kind.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := npk.Scan(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !quiet {
				if err := report.WriteListing(out); err != nil {
					return err
				}
			}
			return report.WriteJSON(out)
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the counts")
	return cmd
}
