package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Columns the search response must carry; the descriptive columns are
// optional and default to empty.
var requiredColumns = []string{
	FieldProject,
	FieldSubjectID,
	FieldSessionID,
	FieldSessionLabel,
	FieldScanID,
}

// ParseCSV reads an XNAT search response (CSV with a header row) into a
// catalog, preserving row order.
func ParseCSV(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty scan search response")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read search response header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("search response missing required column %q", col)
		}
	}

	field := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read search response row %d: %w", len(records)+1, err)
		}
		records = append(records, Record{
			Project:          field(row, FieldProject),
			SubjectID:        field(row, FieldSubjectID),
			SessionID:        field(row, FieldSessionID),
			SessionLabel:     field(row, FieldSessionLabel),
			ScanID:           field(row, FieldScanID),
			Note:             field(row, FieldNote),
			Orientation:      field(row, FieldOrientation),
			Frames:           field(row, FieldFrames),
			BodyPart:         field(row, FieldBodyPart),
			ImageType:        field(row, FieldImageType),
			UID:              field(row, FieldUID),
			SeriesDesc:       field(row, FieldSeriesDesc),
			QuarantineStatus: field(row, FieldQuarantineStatus),
		})
	}

	return NewCatalog(records), nil
}
