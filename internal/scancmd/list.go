package scancmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msk-imaging/spinemark/internal/source"
)

// NewListCmd creates the scans list command.
func NewListCmd() *cobra.Command {
	var flags sourceFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the scans of the catalog",
		Long: `List every scan the configured source yields, together with whether an
annotation artifact already exists for it.`,
		Example: `  # List all scans on the archive
  spinemark scans list --server https://xnat.example.org

  # List unannotated spine scans only
  spinemark scans list --filter bodypartexamined=SPINE --skip-annotated`,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := buildSource(&flags)
			if err != nil {
				return err
			}
			return source.With(src, executeList)
		},
	}

	addSourceFlags(cmd, &flags)
	return cmd
}

func executeList(src source.Source) error {
	src.Begin()

	count := 0
	annotated := 0
	for {
		step, err := src.Advance()
		if errors.Is(err, source.ErrEndOfCatalog) {
			break
		}
		if err != nil {
			return err
		}
		count++
		marker := " "
		if step.HasAnnotation {
			marker = "*"
			annotated++
		}
		fmt.Printf("  %s %s\n", marker, step.Label)
	}

	fmt.Printf("\n%d scans (%d annotated, * marked)\n", count, annotated)
	return nil
}
