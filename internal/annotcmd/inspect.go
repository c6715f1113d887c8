// Package annotcmd implements the annot subcommands for working with
// annotation artifacts directly.
package annotcmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/msk-imaging/spinemark/internal/annotation"
)

// inspectReport is the YAML document printed for an artifact.
type inspectReport struct {
	Project  string    `yaml:"project"`
	Subject  string    `yaml:"subject"`
	Session  string    `yaml:"session"`
	Scan     string    `yaml:"scan"`
	Placed   int       `yaml:"placed"`
	Unset    []string  `yaml:"unset,omitempty"`
	Centroid []float64 `yaml:"centroid,flow,omitempty"`
	SpanMM   float64   `yaml:"spanMm"`
}

// NewInspectCmd creates the annot inspect command.
func NewInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <annotation.json>",
		Short: "Validate and summarize an annotation artifact",
		Long: `Parse an annotation artifact, failing on any label outside the vertebra
schema, and print a summary of the placed landmarks.`,
		Example: `  spinemark annot inspect SESS1-3.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeInspect(args[0])
		},
	}
}

func executeInspect(path string) error {
	rec, err := annotation.Load(path)
	if err != nil {
		return err
	}

	report := inspectReport{
		Project: rec.Project,
		Subject: rec.Subject,
		Session: rec.Session,
		Scan:    rec.Scan,
		Placed:  rec.PlacedCount(),
		SpanMM:  rec.Span(),
	}
	for _, label := range rec.Labels() {
		if _, placed, _ := rec.Get(label); !placed {
			report.Unset = append(report.Unset, label)
		}
	}
	if c, ok := rec.Centroid(); ok {
		report.Centroid = []float64{c.X, c.Y, c.Z}
	}

	out, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	fmt.Print(string(out))
	return nil
}
