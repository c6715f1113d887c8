// Package source defines the iteration contract shared by the XNAT-backed
// and local scan sources: a single-pass external iterator with one private
// working directory alive at a time and teardown guaranteed on every exit
// path.
package source

import (
	"errors"
)

// ErrEndOfCatalog signals normal exhaustion of the scan catalog. It is the
// expected terminal condition of an iteration, not a failure; Advance keeps
// returning it once the catalog is exhausted.
var ErrEndOfCatalog = errors.New("end of scan catalog")

// ErrNoActiveScan is returned by operations that need a current scan when
// Advance has not yet succeeded.
var ErrNoActiveScan = errors.New("no active scan: call Advance first")

// ErrAuthentication is returned at construction when no credentials were
// supplied and none could be resolved from the local credential store.
var ErrAuthentication = errors.New("no credentials available")

// Step describes the scan an Advance call made current.
type Step struct {
	// Label is the session label of the current scan, the identifier shown
	// to the operator.
	Label string
	// ScanID is the scan's identifier within its session.
	ScanID string
	// HasAnnotation reports whether an annotation artifact already exists
	// for this scan.
	HasAnnotation bool
}

// Source iterates a catalog of scans one at a time. Implementations own
// the current scan's working directory and, for remote sources, the
// authenticated archive session.
type Source interface {
	// Begin resets the iteration to the first catalog entry without
	// re-fetching the catalog.
	Begin()

	// Advance cleans up the previous step's working directory, then makes
	// the next catalog row current and returns its descriptor. Returns
	// ErrEndOfCatalog when the catalog is exhausted. With skip-annotated
	// set, rows whose annotation probe is positive are passed over.
	Advance() (Step, error)

	// MaterializeLocalCopy ensures the current scan's image payload exists
	// on local disk and returns the directory holding it. Idempotent
	// within a step.
	MaterializeLocalCopy() (string, error)

	// StoreAnnotation persists the artifact at path under an identifier
	// derived from the current scan.
	StoreAnnotation(path string) error

	// LoadExistingAnnotation returns a local path to the previously stored
	// annotation for the current scan, or "" when none exists.
	LoadExistingAnnotation() (string, error)

	// SetSkipAnnotated toggles skipping of already-annotated rows.
	SetSkipAnnotated(skip bool)

	// Teardown releases everything the source owns: the working directory
	// and, for remote sources, the HTTP session and the server-side token.
	// Idempotent and safe after partial construction failure.
	Teardown() error
}

// With runs fn against the source and guarantees Teardown on every exit
// path. A teardown failure is only surfaced when fn itself succeeded.
func With(src Source, fn func(Source) error) (err error) {
	defer func() {
		// Teardown must run even when fn panics.
		terr := src.Teardown()
		if err == nil {
			err = terr
		}
	}()
	return fn(src)
}
