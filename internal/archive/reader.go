// Package archive provides the ZIP-container read and write sides used by
// the XLSX pipeline: ArchiveReader opens the input workbook and exposes its
// parts by name or by pattern; PackageAssembler emits the minimal output
// package described in spec §6.
package archive

import (
	"archive/zip"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/DeltaShift/hookswitch/internal/errs"
)

// Reader wraps a zip.ReadCloser opened from an XLSX file on disk.
type Reader struct {
	zr *zip.ReadCloser
}

// Open opens path as a ZIP archive.
func Open(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errs.Wrap(errs.ArchiveFailure, err)
	}
	return &Reader{zr: zr}, nil
}

// Close closes the underlying archive.
func (r *Reader) Close() error {
	if err := r.zr.Close(); err != nil {
		return errs.Wrap(errs.ArchiveFailure, err)
	}
	return nil
}

// find returns the *zip.File for an exact entry name, or nil.
func (r *Reader) find(name string) *zip.File {
	for _, f := range r.zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Has reports whether name exists in the archive.
func (r *Reader) Has(name string) bool {
	return r.find(name) != nil
}

// OpenEntry opens the named entry for streaming reads. The caller must close it.
func (r *Reader) OpenEntry(name string) (io.ReadCloser, error) {
	f := r.find(name)
	if f == nil {
		return nil, errs.Newf(errs.ArchiveFailure, "archive entry %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errs.Wrap(errs.ArchiveFailure, err)
	}
	return rc, nil
}

// ReadAll reads a whole entry into memory. Reserved for the small
// control-plane parts (workbook.xml, the rels files) that spec §4.1 calls
// out as small enough to slurp; the worksheet and shared-string parts are
// always streamed via OpenEntry instead.
func (r *Reader) ReadAll(name string) ([]byte, error) {
	rc, err := r.OpenEntry(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errs.Wrap(errs.ArchiveFailure, err)
	}
	return data, nil
}

// FindMatching returns every entry name matching pattern, sorted
// lexicographically.
func (r *Reader) FindMatching(pattern *regexp.Regexp) []string {
	var names []string
	for _, f := range r.zr.File {
		if pattern.MatchString(f.Name) {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	return names
}

// worksheetEntryPattern matches xl/worksheets/<name>.xml case-insensitively,
// used as the fallback step in the WorkbookLocator algorithm (spec §4.1).
var worksheetEntryPattern = regexp.MustCompile(`(?i)^xl/worksheets/[^/]+\.xml$`)

// FindWorksheetEntries lists every worksheet part in the archive, sorted.
func (r *Reader) FindWorksheetEntries() []string {
	return r.FindMatching(worksheetEntryPattern)
}

// NormalizeTarget normalizes a relationship Target attribute into an
// archive entry path per spec §4.1 step 2: backslashes become slashes, a
// leading slash is stripped, and "xl/" is prepended if not already present.
func NormalizeTarget(target string) string {
	target = strings.ReplaceAll(target, `\`, "/")
	target = strings.TrimPrefix(target, "/")
	if !strings.HasPrefix(target, "xl/") {
		target = "xl/" + target
	}
	return target
}
