package cmd

import (
	"github.com/spf13/cobra"

	"github.com/msk-imaging/spinemark/internal/scancmd"
)

func newScansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scans",
		Short: "Iterate, download, and annotate scans",
		Long: `Commands that drive the scan source: list the catalog, pull scan
payloads to local disk, and push annotation artifacts.

The source is the XNAT archive configured via flags, environment, or
spinemark.yaml; with --local it is a directory or manifest of scan files
on disk instead.`,
	}

	cmd.AddCommand(scancmd.NewListCmd())
	cmd.AddCommand(scancmd.NewPullCmd())
	cmd.AddCommand(scancmd.NewPushCmd())

	return cmd
}
