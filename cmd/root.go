package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "spinemark",
		Short: "Vertebra annotation sync tool for XNAT imaging archives",
		Long: `Spinemark iterates a cohort of CT scans hosted on an XNAT imaging archive
(or on local disk), materializes each scan's DICOM payload locally, and
persists vertebra landmark annotations back to the archive.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(newScansCmd())
	cmd.AddCommand(newAnnotCmd())

	return cmd
}
