package xnat

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/msk-imaging/spinemark/internal/archive"
	"github.com/msk-imaging/spinemark/internal/catalog"
	"github.com/msk-imaging/spinemark/internal/source"
)

// DefaultQueryFile is the XML search document used when none is supplied.
const DefaultQueryFile = "xnat_scan_query.xml"

// activeScan is the transient per-step state: the current catalog row and
// its private working directory. At most one exists per source instance.
type activeScan struct {
	rec           catalog.Record
	tmpRoot       string
	workDir       string
	hasAnnotation bool
	materialized  bool
}

// Source iterates scans hosted on an XNAT archive. The catalog is fetched
// once at construction and never refreshed during the source's lifetime,
// so iteration stays deterministic regardless of concurrent server-side
// changes.
type Source struct {
	client        *Client
	cat           *catalog.Catalog
	index         int
	skipAnnotated bool
	cur           *activeScan
	sessionClosed bool
}

// Options configures a remote source.
type Options struct {
	Server string
	// User and Password may be empty, in which case netrc resolution
	// applies.
	User     string
	Password string
	// QueryFile is the XML search document; DefaultQueryFile when empty.
	QueryFile string
	// Filter narrows the catalog; nil keeps every row.
	Filter *catalog.Filter
}

// NewSource opens an authenticated session and fetches the scan catalog.
// On a failed catalog fetch the already-opened session is released before
// the error is returned.
func NewSource(opts Options) (*Source, error) {
	client, err := NewClient(opts.Server, opts.User, opts.Password)
	if err != nil {
		return nil, err
	}

	queryFile := opts.QueryFile
	if queryFile == "" {
		queryFile = DefaultQueryFile
	}

	cat, err := client.SearchScans(queryFile)
	if err != nil {
		if closeErr := client.CloseSession(); closeErr != nil {
			slog.Debug("Session close after failed catalog fetch", "error", closeErr)
		}
		return nil, err
	}

	cat = cat.Apply(opts.Filter)
	slog.Info("Fetched scan catalog", "server", opts.Server, "scans", cat.Len())

	return &Source{client: client, cat: cat}, nil
}

// Begin resets the iteration to the first catalog row. The catalog is not
// re-fetched.
func (s *Source) Begin() {
	s.index = 0
}

// SetSkipAnnotated toggles skipping of rows that already carry an
// annotation artifact on the archive.
func (s *Source) SetSkipAnnotated(skip bool) {
	s.skipAnnotated = skip
}

// Advance releases the previous step's working directory, then selects the
// next catalog row, probes it for an existing annotation, and prepares a
// fresh working directory path. Skipped and exhausted per the source
// contract.
func (s *Source) Advance() (source.Step, error) {
	s.cleanupCurrent()

	// Explicit loop rather than recursion: a long run of annotated rows
	// must not grow the stack.
	for {
		if s.index >= s.cat.Len() {
			return source.Step{}, source.ErrEndOfCatalog
		}
		rec := s.cat.At(s.index)
		s.index++

		has, err := s.client.HasAnnotation(rec)
		if err != nil {
			return source.Step{}, fmt.Errorf("failed to probe annotations for %s: %w", rec.SessionLabel, err)
		}
		if s.skipAnnotated && has {
			slog.Debug("Skipping annotated scan", "session", rec.SessionLabel, "scan", rec.ScanID)
			continue
		}

		// A fresh unique temp root keeps scans with duplicate session
		// labels from colliding on disk.
		tmpRoot, err := os.MkdirTemp("", "spinemark-")
		if err != nil {
			return source.Step{}, fmt.Errorf("failed to create working directory: %w", err)
		}
		workDir := filepath.Join(tmpRoot, fmt.Sprintf("%s-%s", rec.SessionLabel, rec.ScanID))

		s.cur = &activeScan{
			rec:           rec,
			tmpRoot:       tmpRoot,
			workDir:       workDir,
			hasAnnotation: has,
		}
		slog.Info("Advanced to scan", "session", rec.SessionLabel, "scan", rec.ScanID, "annotated", has)

		return source.Step{
			Label:         rec.SessionLabel,
			ScanID:        rec.ScanID,
			HasAnnotation: has,
		}, nil
	}
}

// MaterializeLocalCopy downloads the current scan's DICOM payload as a zip
// archive, extracts it flat into the working directory, and removes the
// archive. Repeated calls within a step return the existing directory.
func (s *Source) MaterializeLocalCopy() (string, error) {
	if s.cur == nil {
		return "", source.ErrNoActiveScan
	}
	if s.cur.materialized {
		return s.cur.workDir, nil
	}

	zipPath := s.cur.workDir + ".zip"
	if err := s.client.DownloadScanZip(s.cur.rec, zipPath); err != nil {
		return "", err
	}

	if err := archive.ExtractFlat(zipPath, s.cur.workDir); err != nil {
		os.Remove(zipPath)
		return "", err
	}
	if err := os.Remove(zipPath); err != nil {
		slog.Warn("Failed to remove downloaded archive", "path", zipPath, "error", err)
	}

	s.cur.materialized = true
	slog.Debug("Materialized scan payload", "session", s.cur.rec.SessionLabel, "dir", s.cur.workDir)
	return s.cur.workDir, nil
}

// StoreAnnotation uploads the artifact at path to the archive under the
// current scan's ANNOTATIONS resource.
func (s *Source) StoreAnnotation(path string) error {
	if s.cur == nil {
		return source.ErrNoActiveScan
	}
	if err := s.client.UploadAnnotation(s.cur.rec, path); err != nil {
		return err
	}
	s.cur.hasAnnotation = true
	slog.Info("Stored annotation", "session", s.cur.rec.SessionLabel, "scan", s.cur.rec.ScanID,
		"file", AnnotationFilename(s.cur.rec))
	return nil
}

// LoadExistingAnnotation downloads the stored annotation artifact for the
// current scan into the working directory and returns its local path, or
// "" when the scan has none.
func (s *Source) LoadExistingAnnotation() (string, error) {
	if s.cur == nil {
		return "", source.ErrNoActiveScan
	}
	if !s.cur.hasAnnotation {
		return "", nil
	}

	if err := os.MkdirAll(s.cur.workDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create working directory: %w", err)
	}
	dest := filepath.Join(s.cur.workDir, AnnotationFilename(s.cur.rec))
	if err := s.client.DownloadAnnotation(s.cur.rec, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Teardown deletes the current working directory, invalidates the
// server-side session token, and closes the HTTP session. Idempotent, and
// safe even when construction only partially succeeded.
func (s *Source) Teardown() error {
	s.cleanupCurrent()

	if s.client == nil || s.sessionClosed {
		return nil
	}
	s.sessionClosed = true
	if err := s.client.CloseSession(); err != nil {
		return fmt.Errorf("failed to close archive session: %w", err)
	}
	return nil
}

func (s *Source) cleanupCurrent() {
	if s.cur == nil {
		return
	}
	if err := os.RemoveAll(s.cur.tmpRoot); err != nil {
		slog.Warn("Failed to remove working directory", "path", s.cur.tmpRoot, "error", err)
	}
	s.cur = nil
}
