// Package config loads spinemark's configuration from a YAML file and the
// environment. Command-line flags override both.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "spinemark.yaml"

// Config is the application configuration.
type Config struct {
	Archive struct {
		// Server is the XNAT base URL, e.g. https://xnat.example.org.
		Server string `yaml:"server"`
		// User and Password may stay empty to fall back to ~/.netrc.
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		// QueryFile is the XML search document posted to the archive.
		QueryFile string `yaml:"queryFile"`
	} `yaml:"archive"`

	Local struct {
		// Path is a scan directory or a manifest file; when set, the
		// local source is used instead of the archive.
		Path string `yaml:"path"`
	} `yaml:"local"`

	Iteration struct {
		// SkipAnnotated skips scans that already carry an annotation.
		SkipAnnotated bool `yaml:"skipAnnotated"`
	} `yaml:"iteration"`
}

// Default returns the configuration used when no file is present, with
// archive credentials taken from the XNAT_* environment.
func Default() *Config {
	cfg := &Config{}
	cfg.Archive.Server = os.Getenv("XNAT_HOST")
	cfg.Archive.User = os.Getenv("XNAT_USER")
	cfg.Archive.Password = os.Getenv("XNAT_PASS")
	return cfg
}

// Load reads the YAML file at path on top of the defaults. A missing file
// at the default path is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
