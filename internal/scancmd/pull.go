package scancmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/msk-imaging/spinemark/internal/dicomutil"
	"github.com/msk-imaging/spinemark/internal/source"
)

// NewPullCmd creates the scans pull command.
func NewPullCmd() *cobra.Command {
	var flags sourceFlags
	var outputDir string
	var limit int

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Download scan payloads locally",
		Long: `Iterate the catalog and materialize each scan's image payload on local
disk. Without --out the payload lives in a per-scan temporary directory
that is removed before the next scan is fetched; with --out each scan is
copied into a subdirectory named after its session label.`,
		Example: `  # Smoke-check the first three unannotated scans
  spinemark scans pull --skip-annotated --limit 3

  # Keep all payloads under ./scans
  spinemark scans pull --out scans`,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := buildSource(&flags)
			if err != nil {
				return err
			}
			return source.With(src, func(src source.Source) error {
				return executePull(src, outputDir, limit)
			})
		},
	}

	addSourceFlags(cmd, &flags)
	cmd.Flags().StringVar(&outputDir, "out", "", "Copy each scan payload into this directory")
	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after this many scans (0 = all)")
	return cmd
}

func executePull(src source.Source, outputDir string, limit int) error {
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	src.Begin()
	pulled := 0
	for {
		if limit > 0 && pulled >= limit {
			break
		}

		step, err := src.Advance()
		if errors.Is(err, source.ErrEndOfCatalog) {
			break
		}
		if err != nil {
			return err
		}

		dir, err := src.MaterializeLocalCopy()
		if err != nil {
			return fmt.Errorf("failed to materialize %s: %w", step.Label, err)
		}
		pulled++

		if summary, err := dicomutil.Summarize(dir); err != nil {
			slog.Warn("No DICOM summary", "scan", step.Label, "error", err)
		} else {
			slog.Info("Pulled scan", "scan", step.Label,
				"files", summary.Files, "modality", summary.Modality,
				"series", summary.SeriesDesc, "patient", summary.PatientID)
		}

		if outputDir != "" {
			dest := filepath.Join(outputDir, step.Label)
			if err := os.CopyFS(dest, os.DirFS(dir)); err != nil {
				return fmt.Errorf("failed to copy %s to %s: %w", step.Label, dest, err)
			}
			fmt.Printf("  %s -> %s\n", step.Label, dest)
		}
	}

	fmt.Printf("\nPulled %d scans\n", pulled)
	return nil
}
