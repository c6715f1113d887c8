// Package archive unpacks the zip payloads served by the imaging archive.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ExtractFlat extracts every file in the zip at zipPath into destDir,
// flattening entry paths to their basename so the archive's internal
// folder structure never survives extraction. Directory entries are
// skipped. On failure the partially extracted destDir is removed before
// the error is returned.
func ExtractFlat(zipPath, destDir string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", zipPath, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create extraction directory: %w", err)
	}

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		if err := extractEntry(entry, destDir); err != nil {
			os.RemoveAll(destDir)
			return err
		}
	}

	return nil
}

func extractEntry(entry *zip.File, destDir string) error {
	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", entry.Name, err)
	}
	defer src.Close()

	destPath := filepath.Join(destDir, filepath.Base(filepath.FromSlash(entry.Name)))
	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to extract %s: %w", entry.Name, err)
	}

	return nil
}
