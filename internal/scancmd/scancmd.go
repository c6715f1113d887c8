// Package scancmd implements the scans subcommands: listing the catalog,
// pulling scan payloads, and pushing annotation artifacts.
package scancmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msk-imaging/spinemark/internal/catalog"
	"github.com/msk-imaging/spinemark/internal/config"
	"github.com/msk-imaging/spinemark/internal/local"
	"github.com/msk-imaging/spinemark/internal/source"
	"github.com/msk-imaging/spinemark/internal/xnat"
)

// sourceFlags are the options shared by every scans subcommand.
type sourceFlags struct {
	configPath    string
	server        string
	user          string
	password      string
	queryFile     string
	localPath     string
	filters       []string
	skipAnnotated bool
}

func addSourceFlags(cmd *cobra.Command, f *sourceFlags) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to a spinemark.yaml config file")
	cmd.Flags().StringVar(&f.server, "server", "", "XNAT server URL (env XNAT_HOST)")
	cmd.Flags().StringVar(&f.user, "user", "", "XNAT username (env XNAT_USER, else ~/.netrc)")
	cmd.Flags().StringVar(&f.password, "password", "", "XNAT password (env XNAT_PASS, else ~/.netrc)")
	cmd.Flags().StringVar(&f.queryFile, "query", "", "XML scan search document (default ./"+xnat.DefaultQueryFile+")")
	cmd.Flags().StringVar(&f.localPath, "local", "", "Iterate a local scan directory or manifest instead of the archive")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "Catalog filter as field=value (repeatable)")
	cmd.Flags().BoolVar(&f.skipAnnotated, "skip-annotated", false, "Skip scans that already have an annotation")
}

// parseFilter turns repeated field=value pairs into a catalog filter.
func parseFilter(pairs []string) (*catalog.Filter, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	terms := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		field, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid filter %q: expected field=value", pair)
		}
		terms[field] = value
	}
	return catalog.NewFilter(terms)
}

// buildSource resolves config file, environment, and flags (flags win) and
// constructs the scan source.
func buildSource(f *sourceFlags) (source.Source, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	localPath := cfg.Local.Path
	if f.localPath != "" {
		localPath = f.localPath
	}

	skip := cfg.Iteration.SkipAnnotated || f.skipAnnotated

	var src source.Source
	if localPath != "" {
		src, err = local.NewSource(localPath)
	} else {
		opts := xnat.Options{
			Server:    cfg.Archive.Server,
			User:      cfg.Archive.User,
			Password:  cfg.Archive.Password,
			QueryFile: cfg.Archive.QueryFile,
		}
		if f.server != "" {
			opts.Server = f.server
		}
		if f.user != "" {
			opts.User = f.user
		}
		if f.password != "" {
			opts.Password = f.password
		}
		if f.queryFile != "" {
			opts.QueryFile = f.queryFile
		}
		if opts.Server == "" {
			return nil, fmt.Errorf("no XNAT server configured: set --server, XNAT_HOST, or archive.server in the config file")
		}
		opts.Filter, err = parseFilter(f.filters)
		if err != nil {
			return nil, err
		}
		src, err = xnat.NewSource(opts)
	}
	if err != nil {
		return nil, err
	}

	src.SetSkipAnnotated(skip)
	return src, nil
}
