package dicomutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func mustNewElement(t *testing.T, tg tag.Tag, value interface{}) *dicom.Element {
	t.Helper()
	elem, err := dicom.NewElement(tg, value)
	if err != nil {
		t.Fatalf("failed to create element %v: %v", tg, err)
	}
	return elem
}

func writeTestDICOM(t *testing.T, path string) {
	t.Helper()

	ds := dicom.Dataset{
		Elements: []*dicom.Element{
			mustNewElement(t, tag.MediaStorageSOPClassUID, []string{"1.2.840.10008.5.1.4.1.1.2"}),
			mustNewElement(t, tag.MediaStorageSOPInstanceUID, []string{"1.2.3.4.5"}),
			mustNewElement(t, tag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"}),
			mustNewElement(t, tag.SOPClassUID, []string{"1.2.840.10008.5.1.4.1.1.2"}),
			mustNewElement(t, tag.SOPInstanceUID, []string{"1.2.3.4.5"}),
			mustNewElement(t, tag.Modality, []string{"CT"}),
			mustNewElement(t, tag.SeriesDescription, []string{"Sag Spine"}),
			mustNewElement(t, tag.PatientID, []string{"SUBJ01"}),
			mustNewElement(t, tag.BodyPartExamined, []string{"SPINE"}),
		},
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := dicom.Write(f, ds); err != nil {
		t.Fatalf("failed to write test DICOM: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	dir := t.TempDir()
	writeTestDICOM(t, filepath.Join(dir, "scan001.dcm"))
	writeTestDICOM(t, filepath.Join(dir, "scan002.dcm"))

	summary, err := Summarize(dir)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summary.Files != 2 {
		t.Errorf("Expected 2 files, got %d", summary.Files)
	}
	if summary.Modality != "CT" {
		t.Errorf("Expected modality CT, got %q", summary.Modality)
	}
	if summary.SeriesDesc != "Sag Spine" {
		t.Errorf("Expected series description 'Sag Spine', got %q", summary.SeriesDesc)
	}
	if summary.PatientID != "SUBJ01" {
		t.Errorf("Expected patient SUBJ01, got %q", summary.PatientID)
	}
	if summary.BodyPart != "SPINE" {
		t.Errorf("Expected body part SPINE, got %q", summary.BodyPart)
	}
}

func TestSummarizeNoDICOM(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not dicom"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Summarize(dir); err == nil {
		t.Fatal("Expected error for directory without DICOM files")
	}
}

func TestSummarizeMissingDirectory(t *testing.T) {
	if _, err := Summarize(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("Expected error for missing directory")
	}
}
