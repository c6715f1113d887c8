package scancmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msk-imaging/spinemark/internal/annotation"
	"github.com/msk-imaging/spinemark/internal/source"
)

// NewPushCmd creates the scans push command.
func NewPushCmd() *cobra.Command {
	var flags sourceFlags
	var session string

	cmd := &cobra.Command{
		Use:   "push <annotation.json>",
		Short: "Store an annotation artifact for a scan",
		Long: `Validate an annotation artifact and store it for the scan whose session
label matches --session: on the archive as an ANNOTATIONS resource, or
beside the scan file for a local source.`,
		Example: `  spinemark scans push --session SESS1 landmarks.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if session == "" {
				return fmt.Errorf("--session is required")
			}
			src, err := buildSource(&flags)
			if err != nil {
				return err
			}
			return source.With(src, func(src source.Source) error {
				return executePush(src, session, args[0])
			})
		},
	}

	addSourceFlags(cmd, &flags)
	cmd.Flags().StringVar(&session, "session", "", "Session label of the target scan")
	return cmd
}

func executePush(src source.Source, session, artifactPath string) error {
	// Reject malformed artifacts before touching the archive.
	if _, err := annotation.Load(artifactPath); err != nil {
		return fmt.Errorf("invalid annotation artifact: %w", err)
	}

	src.Begin()
	for {
		step, err := src.Advance()
		if errors.Is(err, source.ErrEndOfCatalog) {
			return fmt.Errorf("no scan with session label %q in the catalog", session)
		}
		if err != nil {
			return err
		}
		if step.Label != session {
			continue
		}

		if err := src.StoreAnnotation(artifactPath); err != nil {
			return err
		}
		fmt.Printf("Stored annotation for %s\n", session)
		return nil
	}
}
