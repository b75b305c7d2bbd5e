package csvio

import (
	"encoding/csv"
	"io"

	"github.com/DeltaShift/hookswitch/internal/errs"
)

// Writer emits CSV rows with a fixed ',' delimiter (spec §6: "auto-detected
// on read, ',' on write") and LF line endings.
type Writer struct {
	out io.Writer
	csv *csv.Writer
}

// NewWriter wraps w. The underlying csv.Writer defaults to UseCRLF=false,
// which emits "\n" terminators as spec §6 requires.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: w, csv: csv.NewWriter(w)}
}

// WriteRow writes one row. A nil fields slice is the blank-line marker used
// for row-number gaps and empty declared rows (spec §3, §4.3): it bypasses
// the CSV encoder and emits a bare newline with no quoting.
func (w *Writer) WriteRow(fields []string) error {
	if fields == nil {
		w.csv.Flush()
		if err := w.csv.Error(); err != nil {
			return errs.Wrap(errs.WriteFailed, err)
		}
		if _, err := io.WriteString(w.out, "\n"); err != nil {
			return errs.Wrap(errs.WriteFailed, err)
		}
		return nil
	}
	if err := w.csv.Write(fields); err != nil {
		return errs.Wrap(errs.WriteFailed, err)
	}
	w.csv.Flush()
	return errs.Wrap(errs.WriteFailed, w.csv.Error())
}
