package local

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// ManifestRow is one entry of a scan manifest file.
type ManifestRow struct {
	Path string `parquet:"path"`
}

// loadManifest reads a list of scan paths from a delimited manifest file,
// CSV or Parquet, dispatching on the file extension. Relative entries are
// resolved against the manifest's directory.
func loadManifest(path string) ([]string, error) {
	var rows []ManifestRow
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		rows, err = loadParquetManifest(path)
	case ".csv":
		rows, err = loadCSVManifest(path)
	default:
		return nil, fmt.Errorf("unsupported manifest format: %s (supported: .csv, .parquet)", path)
	}
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	scans := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Path == "" {
			continue
		}
		p := row.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		scans = append(scans, p)
	}
	return scans, nil
}

func loadCSVManifest(path string) ([]ManifestRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty manifest: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest header: %w", err)
	}

	pathCol := 0
	found := false
	for i, col := range header {
		if col == "path" {
			pathCol = i
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("manifest %s has no path column", path)
	}

	var rows []ManifestRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest row: %w", err)
		}
		if pathCol < len(record) {
			rows = append(rows, ManifestRow{Path: record[pathCol]})
		}
	}
	return rows, nil
}

func loadParquetManifest(path string) ([]ManifestRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat manifest: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet manifest: %w", err)
	}

	reader := parquet.NewGenericReader[ManifestRow](pf)
	defer reader.Close()

	var rows []ManifestRow
	batch := make([]ManifestRow, 64)
	for {
		n, err := reader.Read(batch)
		if n > 0 {
			rows = append(rows, batch[:n]...)
		}
		if err != nil {
			break
		}
	}
	return rows, nil
}
