// Package local implements the scan source over files already resident on
// disk: a directory of image volumes or a manifest listing them, each
// paired with a same-stem annotation file when present. No network and no
// temporary storage are involved.
package local

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/msk-imaging/spinemark/internal/source"
)

// scanExtensions are the image-payload suffixes picked up when listing a
// directory.
var scanExtensions = []string{".nii.gz", ".nii", ".dcm"}

// Source iterates scan files on local disk.
type Source struct {
	scans         []string
	index         int
	skipAnnotated bool
	cur           *currentScan
}

type currentScan struct {
	path          string
	annotation    string // sibling annotation path, "" when absent
	hasAnnotation bool
}

// NewSource builds a local source from a directory of scan files or a
// manifest file (.csv or .parquet) listing them.
func NewSource(path string) (*Source, error) {
	if path == "" {
		return nil, fmt.Errorf("local scan path is empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", path, err)
	}

	var scans []string
	if info.IsDir() {
		scans, err = listScans(path)
	} else {
		scans, err = loadManifest(path)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("Loaded local scan catalog", "path", path, "scans", len(scans))
	return &Source{scans: scans}, nil
}

func listScans(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var scans []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		for _, ext := range scanExtensions {
			if strings.HasSuffix(e.Name(), ext) {
				scans = append(scans, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	sort.Strings(scans)
	return scans, nil
}

// annotationPath derives the sibling annotation filename for a scan file:
// the scan path with its image extension replaced by .json.
func annotationPath(scanPath string) string {
	for _, ext := range scanExtensions {
		if strings.HasSuffix(scanPath, ext) {
			return strings.TrimSuffix(scanPath, ext) + ".json"
		}
	}
	return scanPath + ".json"
}

// Begin resets the iteration to the first scan.
func (s *Source) Begin() {
	s.index = 0
}

// SetSkipAnnotated toggles skipping of scans that already have a sibling
// annotation file.
func (s *Source) SetSkipAnnotated(skip bool) {
	s.skipAnnotated = skip
}

// Advance makes the next scan file current, pairing it with a sibling
// annotation file when one exists.
func (s *Source) Advance() (source.Step, error) {
	s.cur = nil

	for {
		if s.index >= len(s.scans) {
			return source.Step{}, source.ErrEndOfCatalog
		}
		scan := s.scans[s.index]
		s.index++

		annotation := annotationPath(scan)
		has := false
		if _, err := os.Stat(annotation); err == nil {
			has = true
		} else {
			annotation = ""
		}

		if s.skipAnnotated && has {
			slog.Debug("Skipping annotated scan", "scan", scan)
			continue
		}

		s.cur = &currentScan{path: scan, annotation: annotation, hasAnnotation: has}
		return source.Step{
			Label:         filepath.Base(scan),
			HasAnnotation: has,
		}, nil
	}
}

// ScanPath returns the full path of the current scan file.
func (s *Source) ScanPath() (string, error) {
	if s.cur == nil {
		return "", source.ErrNoActiveScan
	}
	return s.cur.path, nil
}

// MaterializeLocalCopy is a no-op for resident files; it returns the
// directory holding the current scan.
func (s *Source) MaterializeLocalCopy() (string, error) {
	if s.cur == nil {
		return "", source.ErrNoActiveScan
	}
	return filepath.Dir(s.cur.path), nil
}

// StoreAnnotation copies the artifact next to the current scan file under
// the scan's stem with a .json extension.
func (s *Source) StoreAnnotation(path string) error {
	if s.cur == nil {
		return source.ErrNoActiveScan
	}

	dst := annotationPath(s.cur.path)
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open annotation artifact: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy annotation to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to copy annotation to %s: %w", dst, err)
	}

	s.cur.annotation = dst
	s.cur.hasAnnotation = true
	slog.Info("Stored annotation", "scan", s.cur.path, "file", dst)
	return nil
}

// LoadExistingAnnotation returns the sibling annotation path for the
// current scan, or "" when there is none.
func (s *Source) LoadExistingAnnotation() (string, error) {
	if s.cur == nil {
		return "", source.ErrNoActiveScan
	}
	if !s.cur.hasAnnotation {
		return "", nil
	}
	return s.cur.annotation, nil
}

// Teardown releases nothing for the local source; resident files are never
// deleted. Idempotent by construction.
func (s *Source) Teardown() error {
	s.cur = nil
	return nil
}
