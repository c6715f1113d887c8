package annotation

import (
	"encoding/json"
	"fmt"
	"os"
)

// FullSpineLabels is the complete vertebra schema in craniocaudal order.
var FullSpineLabels = []string{
	"C1", "C2", "C3", "C4", "C5", "C6", "C7",
	"T1", "T2", "T3", "T4", "T5", "T6", "T7", "T8", "T9", "T10", "T11", "T12",
	"L1", "L2", "L3", "L4", "L5",
	"S1", "S2", "S3",
}

// ReducedSpineLabels is the simplified 12-label schema used by older
// annotation sessions (three labels per spinal region).
var ReducedSpineLabels = []string{
	"C1", "C2", "C3",
	"T1", "T2", "T3",
	"L1", "L2", "L3",
	"S1", "S2", "S3",
}

// UnknownLabelError indicates an attempt to read or write a label outside
// the record's fixed schema.
type UnknownLabelError struct {
	Label string
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown vertebra label: %s", e.Label)
}

// Coordinate is an (x, y, z) landmark position in the scan's coordinate frame.
type Coordinate struct {
	X, Y, Z float64
}

// MarshalJSON encodes the coordinate as a 3-element array.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{c.X, c.Y, c.Z})
}

// UnmarshalJSON decodes a 3-element array into the coordinate.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var arr [3]float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("failed to parse coordinate: %w", err)
	}
	c.X, c.Y, c.Z = arr[0], arr[1], arr[2]
	return nil
}

// Record holds the landmark annotations for one scan. The label set is
// fixed at construction; labels outside the schema are rejected.
type Record struct {
	Project string
	Subject string
	Session string
	Scan    string

	labels []string
	coords map[string]*Coordinate
}

// New creates an empty record over the full 27-label spine schema.
func New(project, subject, session, scan string) *Record {
	return newRecord(project, subject, session, scan, FullSpineLabels)
}

// NewReduced creates an empty record over the reduced 12-label schema.
func NewReduced(project, subject, session, scan string) *Record {
	return newRecord(project, subject, session, scan, ReducedSpineLabels)
}

func newRecord(project, subject, session, scan string, labels []string) *Record {
	coords := make(map[string]*Coordinate, len(labels))
	for _, l := range labels {
		coords[l] = nil
	}
	return &Record{
		Project: project,
		Subject: subject,
		Session: session,
		Scan:    scan,
		labels:  labels,
		coords:  coords,
	}
}

// Labels returns the record's schema in craniocaudal order.
func (r *Record) Labels() []string {
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}

// Set stores the coordinate for a label.
func (r *Record) Set(label string, x, y, z float64) error {
	if _, ok := r.coords[label]; !ok {
		return &UnknownLabelError{Label: label}
	}
	r.coords[label] = &Coordinate{X: x, Y: y, Z: z}
	return nil
}

// Get returns the coordinate for a label and whether it has been placed.
func (r *Record) Get(label string) (Coordinate, bool, error) {
	c, ok := r.coords[label]
	if !ok {
		return Coordinate{}, false, &UnknownLabelError{Label: label}
	}
	if c == nil {
		return Coordinate{}, false, nil
	}
	return *c, true, nil
}

// Unset clears a previously placed label.
func (r *Record) Unset(label string) error {
	if _, ok := r.coords[label]; !ok {
		return &UnknownLabelError{Label: label}
	}
	r.coords[label] = nil
	return nil
}

// PlacedCount returns the number of labels with a coordinate set.
func (r *Record) PlacedCount() int {
	n := 0
	for _, c := range r.coords {
		if c != nil {
			n++
		}
	}
	return n
}

type wireRecord struct {
	Project     string                 `json:"project"`
	Subject     string                 `json:"subject"`
	Session     string                 `json:"session"`
	Scan        string                 `json:"scan"`
	Annotations map[string]*Coordinate `json:"annotations"`
}

// Serialize produces the wire artifact: a JSON object carrying the scan
// identifiers and the full label map, unset labels included as null.
func (r *Record) Serialize() ([]byte, error) {
	w := wireRecord{
		Project:     r.Project,
		Subject:     r.Subject,
		Session:     r.Session,
		Scan:        r.Scan,
		Annotations: r.coords,
	}
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize annotations: %w", err)
	}
	return data, nil
}

// Parse reconstructs a record from its wire artifact. Every annotation key
// must belong to the full spine schema; the parsed record's label set is
// exactly the keys present, in craniocaudal order.
func Parse(data []byte) (*Record, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse annotation artifact: %w", err)
	}

	known := make(map[string]bool, len(FullSpineLabels))
	for _, l := range FullSpineLabels {
		known[l] = true
	}
	for label := range w.Annotations {
		if !known[label] {
			return nil, &UnknownLabelError{Label: label}
		}
	}

	var labels []string
	for _, l := range FullSpineLabels {
		if _, ok := w.Annotations[l]; ok {
			labels = append(labels, l)
		}
	}

	return &Record{
		Project: w.Project,
		Subject: w.Subject,
		Session: w.Session,
		Scan:    w.Scan,
		labels:  labels,
		coords:  w.Annotations,
	}, nil
}

// Save writes the serialized artifact to disk.
func (r *Record) Save(path string) error {
	data, err := r.Serialize()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write annotation file: %w", err)
	}
	return nil
}

// Load reads and parses an annotation artifact from disk.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation file: %w", err)
	}
	return Parse(data)
}
