// Package dicomutil inspects materialized DICOM payloads so the operator
// can confirm what was downloaded before annotating.
package dicomutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Summary describes the DICOM series found in a working directory.
type Summary struct {
	Files      int
	Modality   string
	SeriesDesc string
	PatientID  string
	BodyPart   string
}

// Summarize counts the files in dir and reads identifying tags from the
// first parseable DICOM file. Missing individual tags are tolerated; a
// directory without any parseable DICOM file is an error.
func Summarize(dir string) (*Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	summary := &Summary{}
	var ds *dicom.Dataset
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		summary.Files++
		if ds != nil {
			continue
		}
		parsed, parseErr := dicom.ParseFile(filepath.Join(dir, e.Name()), nil)
		if parseErr == nil {
			ds = &parsed
		}
	}

	if ds == nil {
		return nil, fmt.Errorf("no parseable DICOM file in %s", dir)
	}

	summary.Modality = stringTag(ds, tag.Modality)
	summary.SeriesDesc = stringTag(ds, tag.SeriesDescription)
	summary.PatientID = stringTag(ds, tag.PatientID)
	summary.BodyPart = stringTag(ds, tag.BodyPartExamined)

	return summary, nil
}

func stringTag(ds *dicom.Dataset, t tag.Tag) string {
	elem, err := ds.FindElementByTag(t)
	if err != nil || elem == nil {
		return ""
	}
	if values, ok := elem.Value.GetValue().([]string); ok && len(values) > 0 {
		return values[0]
	}
	return ""
}
