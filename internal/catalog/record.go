package catalog

import (
	"fmt"
)

// Column names of the XNAT scan search response. Filters may only be built
// from these.
const (
	FieldProject          = "project"
	FieldSubjectID        = "subject_id"
	FieldSessionID        = "session_id"
	FieldSessionLabel     = "session_label"
	FieldScanID           = "id"
	FieldNote             = "note"
	FieldOrientation      = "parameters_orientation"
	FieldFrames           = "frames"
	FieldBodyPart         = "bodypartexamined"
	FieldImageType        = "parameters_imagetype"
	FieldUID              = "uid"
	FieldSeriesDesc       = "series_description"
	FieldQuarantineStatus = "quarantine_status"
)

// Fields lists every recognized column.
var Fields = []string{
	FieldProject,
	FieldSubjectID,
	FieldSessionID,
	FieldSessionLabel,
	FieldScanID,
	FieldNote,
	FieldOrientation,
	FieldFrames,
	FieldBodyPart,
	FieldImageType,
	FieldUID,
	FieldSeriesDesc,
	FieldQuarantineStatus,
}

// UnknownFieldError indicates a filter built on a column outside the
// recognized header set.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown scan catalog field: %s", e.Field)
}

// Record is one row of the scan catalog, immutable once fetched.
// (project, subject_id, session_id, id) is the identity key for remote
// operations.
type Record struct {
	Project          string
	SubjectID        string
	SessionID        string
	SessionLabel     string
	ScanID           string
	Note             string
	Orientation      string
	Frames           string
	BodyPart         string
	ImageType        string
	UID              string
	SeriesDesc       string
	QuarantineStatus string
}

// Field returns the record's value for a recognized column name.
func (r Record) Field(name string) (string, error) {
	switch name {
	case FieldProject:
		return r.Project, nil
	case FieldSubjectID:
		return r.SubjectID, nil
	case FieldSessionID:
		return r.SessionID, nil
	case FieldSessionLabel:
		return r.SessionLabel, nil
	case FieldScanID:
		return r.ScanID, nil
	case FieldNote:
		return r.Note, nil
	case FieldOrientation:
		return r.Orientation, nil
	case FieldFrames:
		return r.Frames, nil
	case FieldBodyPart:
		return r.BodyPart, nil
	case FieldImageType:
		return r.ImageType, nil
	case FieldUID:
		return r.UID, nil
	case FieldSeriesDesc:
		return r.SeriesDesc, nil
	case FieldQuarantineStatus:
		return r.QuarantineStatus, nil
	default:
		return "", &UnknownFieldError{Field: name}
	}
}

// Filter is an exact-match predicate over recognized columns.
type Filter struct {
	terms map[string]string
}

// NewFilter builds a filter from column -> required value pairs. Any key
// outside the recognized header set fails with UnknownFieldError.
func NewFilter(terms map[string]string) (*Filter, error) {
	known := make(map[string]bool, len(Fields))
	for _, f := range Fields {
		known[f] = true
	}
	for k := range terms {
		if !known[k] {
			return nil, &UnknownFieldError{Field: k}
		}
	}
	copied := make(map[string]string, len(terms))
	for k, v := range terms {
		copied[k] = v
	}
	return &Filter{terms: copied}, nil
}

// Matches reports whether every filter term equals the record's value.
func (f *Filter) Matches(r Record) bool {
	if f == nil {
		return true
	}
	for field, want := range f.terms {
		got, err := r.Field(field)
		if err != nil || got != want {
			return false
		}
	}
	return true
}

// Catalog is the ordered list of scans available to a source.
type Catalog struct {
	records []Record
}

// NewCatalog wraps a slice of records, preserving order.
func NewCatalog(records []Record) *Catalog {
	return &Catalog{records: records}
}

// Len returns the number of rows.
func (c *Catalog) Len() int {
	return len(c.records)
}

// At returns the row at position i.
func (c *Catalog) At(i int) Record {
	return c.records[i]
}

// Records returns a copy of the rows in catalog order.
func (c *Catalog) Records() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Apply returns a new catalog containing only rows matching the filter,
// in the original order. A nil filter returns the catalog unchanged.
func (c *Catalog) Apply(f *Filter) *Catalog {
	if f == nil {
		return c
	}
	var kept []Record
	for _, r := range c.records {
		if f.Matches(r) {
			kept = append(kept, r)
		}
	}
	return &Catalog{records: kept}
}
