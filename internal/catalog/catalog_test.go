package catalog

import (
	"errors"
	"strings"
	"testing"
)

func TestNewFilterUnknownField(t *testing.T) {
	_, err := NewFilter(map[string]string{"modality": "CT"})

	var unknownErr *UnknownFieldError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("Expected UnknownFieldError, got %v", err)
	}
	if unknownErr.Field != "modality" {
		t.Errorf("Expected field modality in error, got %s", unknownErr.Field)
	}
}

func TestFilterMatchesKnownFields(t *testing.T) {
	rec := Record{
		Project:      "MSKGSTT",
		SubjectID:    "SUBJ01",
		SessionID:    "E1",
		SessionLabel: "SESS1",
		ScanID:       "3",
		BodyPart:     "SPINE",
	}

	tests := []struct {
		name  string
		terms map[string]string
		want  bool
	}{
		{"single match", map[string]string{"project": "MSKGSTT"}, true},
		{"multi match", map[string]string{"project": "MSKGSTT", "bodypartexamined": "SPINE"}, true},
		{"value mismatch", map[string]string{"project": "OTHER"}, false},
		{"partial mismatch", map[string]string{"project": "MSKGSTT", "id": "9"}, false},
		{"empty filter", map[string]string{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFilter(tt.terms)
			if err != nil {
				t.Fatalf("NewFilter failed: %v", err)
			}
			if got := f.Matches(rec); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyPreservesOrder(t *testing.T) {
	cat := NewCatalog([]Record{
		{SessionLabel: "A", BodyPart: "SPINE"},
		{SessionLabel: "B", BodyPart: "CHEST"},
		{SessionLabel: "C", BodyPart: "SPINE"},
	})

	f, err := NewFilter(map[string]string{"bodypartexamined": "SPINE"})
	if err != nil {
		t.Fatal(err)
	}

	filtered := cat.Apply(f)
	if filtered.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", filtered.Len())
	}
	if filtered.At(0).SessionLabel != "A" || filtered.At(1).SessionLabel != "C" {
		t.Errorf("Filter broke row order: %v, %v", filtered.At(0).SessionLabel, filtered.At(1).SessionLabel)
	}

	// Every surviving row satisfies the predicate.
	for _, r := range filtered.Records() {
		if !f.Matches(r) {
			t.Errorf("Row %s violates filter", r.SessionLabel)
		}
	}

	if cat.Apply(nil).Len() != 3 {
		t.Error("Nil filter must keep all rows")
	}
}

func TestParseCSV(t *testing.T) {
	raw := strings.Join([]string{
		"project,subject_id,session_id,session_label,id,series_description,quarantine_status",
		"MSKGSTT,SUBJ01,E1,SESS1,2,Sag CT,active",
		"MSKGSTT,SUBJ02,E2,SESS2,3,Ax CT,active",
	}, "\n")

	cat, err := ParseCSV(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", cat.Len())
	}

	first := cat.At(0)
	if first.Project != "MSKGSTT" || first.SubjectID != "SUBJ01" ||
		first.SessionID != "E1" || first.SessionLabel != "SESS1" || first.ScanID != "2" {
		t.Errorf("First row parsed wrong: %+v", first)
	}
	if first.SeriesDesc != "Sag CT" {
		t.Errorf("Expected series description 'Sag CT', got %q", first.SeriesDesc)
	}
	// Optional columns absent from the response stay empty.
	if first.BodyPart != "" {
		t.Errorf("Expected empty body part, got %q", first.BodyPart)
	}
}

func TestParseCSVMissingColumn(t *testing.T) {
	raw := "project,subject_id,session_id,session_label\nP,S,E,L\n"

	_, err := ParseCSV(strings.NewReader(raw))
	if err == nil || !strings.Contains(err.Error(), `"id"`) {
		t.Fatalf("Expected missing-column error for id, got %v", err)
	}
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	if err == nil {
		t.Fatal("Expected error for empty response")
	}
}
