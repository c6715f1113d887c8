package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingDefaultIsNotAnError(t *testing.T) {
	t.Setenv("XNAT_HOST", "")
	t.Setenv("XNAT_USER", "")
	t.Setenv("XNAT_PASS", "")

	// Run from a directory without a spinemark.yaml.
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(orig)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Archive.Server != "" {
		t.Errorf("Expected empty server, got %q", cfg.Archive.Server)
	}
}

func TestLoadMissingExplicitPathFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing explicit config path")
	}
}

func TestLoadFileOverridesEnvDefaults(t *testing.T) {
	t.Setenv("XNAT_HOST", "https://env.example.org")
	t.Setenv("XNAT_USER", "envuser")
	t.Setenv("XNAT_PASS", "envpass")

	path := filepath.Join(t.TempDir(), "spinemark.yaml")
	content := `archive:
  server: https://file.example.org
  queryFile: custom_query.xml
iteration:
  skipAnnotated: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Archive.Server != "https://file.example.org" {
		t.Errorf("Expected file server, got %q", cfg.Archive.Server)
	}
	// Fields the file omits keep their env defaults.
	if cfg.Archive.User != "envuser" {
		t.Errorf("Expected env user preserved, got %q", cfg.Archive.User)
	}
	if cfg.Archive.QueryFile != "custom_query.xml" {
		t.Errorf("Expected custom query file, got %q", cfg.Archive.QueryFile)
	}
	if !cfg.Iteration.SkipAnnotated {
		t.Error("Expected skipAnnotated true")
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("XNAT_HOST", "https://env.example.org")
	t.Setenv("XNAT_USER", "alice")
	t.Setenv("XNAT_PASS", "secret")

	cfg := Default()
	if cfg.Archive.Server != "https://env.example.org" ||
		cfg.Archive.User != "alice" || cfg.Archive.Password != "secret" {
		t.Errorf("Env defaults not applied: %+v", cfg.Archive)
	}
}
