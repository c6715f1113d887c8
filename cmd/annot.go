package cmd

import (
	"github.com/spf13/cobra"

	"github.com/msk-imaging/spinemark/internal/annotcmd"
)

func newAnnotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annot",
		Short: "Work with annotation artifacts",
	}

	cmd.AddCommand(annotcmd.NewInspectCmd())

	return cmd
}
