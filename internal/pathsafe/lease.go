package pathsafe

import (
	"os"

	"github.com/DeltaShift/hookswitch/internal/errs"
)

// Lease owns a single temp file for the duration of one conversion and
// guarantees it is unlinked exactly once, regardless of which exit path is
// taken. Construction order across a conversion (shared-string index file,
// shared-string data file, worksheet temp file, and on failure the
// half-written output file) is mirrored by releasing leases in reverse via
// defer at each call site, per spec §9.
type Lease struct {
	file     *os.File
	released bool
}

// NewLease creates a temp file under dir with the given glob pattern (see
// os.CreateTemp) and returns a Lease wrapping it. dir should be the system
// temp directory so PathValidator's root check always accepts it.
func NewLease(dir, pattern string) (*Lease, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, errs.Wrap(errs.IoFailure, err)
	}
	return &Lease{file: f}, nil
}

// File returns the underlying *os.File.
func (l *Lease) File() *os.File { return l.file }

// Name returns the temp file's path.
func (l *Lease) Name() string { return l.file.Name() }

// Release closes and removes the temp file. Safe to call more than once.
func (l *Lease) Release() {
	if l.released {
		return
	}
	l.released = true
	_ = l.file.Close()
	_ = os.Remove(l.file.Name())
}

// ReopenRead closes the write handle (if still open) and reopens the temp
// file read-only, for leases used write-then-read (e.g. the worksheet XML
// temp file that is written by WorksheetXMLWriter and then streamed into the
// output archive).
func (l *Lease) ReopenRead() (*os.File, error) {
	name := l.file.Name()
	if err := l.file.Close(); err != nil {
		return nil, errs.Wrap(errs.IoFailure, err)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, errs.Wrap(errs.IoFailure, err)
	}
	return f, nil
}

// UnlinkOutput removes the named output file if it exists, used by the
// CLEANUP state on any failure so no half-written artifact remains.
func UnlinkOutput(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}
