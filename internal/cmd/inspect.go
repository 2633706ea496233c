package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/meigma/npk"
)

// NewInspectCmd creates the inspect subcommand.
func NewInspectCmd(g *globalOptions) *cobra.Command {
	var csvOnly bool

	cmd := &cobra.Command{
		Use:   "inspect NPK...",
		Short: "Print container headers and entry maps",
		Long: `Print the header of each container followed by its entry map as CSV.

Version 1 records have no field_20 or field_32..35; those cells are left
empty and the reserved 64-bit field is printed as field_24.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs []error
			for _, path := range args {
				if err := inspect(cmd, g, path, csvOnly); err != nil {
					g.logger.Error("inspect failed", "path", path, "error", err)
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().BoolVar(&csvOnly, "csv", false, "Only print the entry map")
	return cmd
}

func inspect(cmd *cobra.Command, g *globalOptions, path string, csvOnly bool) error {
	c, err := npk.Open(path, npk.WithLogger(g.logger))
	if err != nil {
		return err
	}
	defer c.Close()

	out := cmd.OutOrStdout()
	if !csvOnly {
		if err := c.WriteHeader(out); err != nil {
			return err
		}
	}
	return c.WriteCSV(out)
}
