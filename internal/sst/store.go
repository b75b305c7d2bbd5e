// Package sst implements the disk-backed shared-string store: a pair of
// files (an arena of length-prefixed UTF-8 records and a fixed-width index
// of byte offsets) that lets a streaming XLSX reader resolve <c t="s"> cells
// without ever holding the shared-string table in memory.
package sst

import (
	"encoding/binary"
	"io"
	"os"
	"strconv"

	"github.com/DeltaShift/hookswitch/internal/errs"
	"github.com/DeltaShift/hookswitch/internal/pathsafe"
)

// indexRecordLen is the fixed width of one index record: 20 ASCII decimal
// digits holding the data-file offset, followed by one 0x0A separator byte.
// This must stay an unambiguous single byte; spec §9 calls out that writing
// the two-character escape sequence "\n" instead of a real newline would
// silently grow every record to 22 bytes and break the i*21 seek stride.
const indexRecordLen = 21

const offsetDigits = 20

// Builder writes the on-disk shared-string store as <si> elements are
// streamed out of xl/sharedStrings.xml.
type Builder struct {
	indexLease *pathsafe.Lease
	dataLease  *pathsafe.Lease
	dataOffset uint64
	count      int
}

// NewBuilder allocates the two backing temp files under tempDir.
func NewBuilder(tempDir string) (*Builder, error) {
	indexLease, err := pathsafe.NewLease(tempDir, "hookswitch-sst-index-*")
	if err != nil {
		return nil, err
	}
	dataLease, err := pathsafe.NewLease(tempDir, "hookswitch-sst-data-*")
	if err != nil {
		indexLease.Release()
		return nil, err
	}
	return &Builder{indexLease: indexLease, dataLease: dataLease}, nil
}

// Add appends one shared string to the store: it records the current
// data-file offset as an index record, then writes the length-prefixed
// string to the data file.
func (b *Builder) Add(s string) error {
	record := make([]byte, indexRecordLen)
	digits := strconv.FormatUint(b.dataOffset, 10)
	if len(digits) > offsetDigits {
		return errs.Newf(errs.WriteFailed, "shared-string offset %d overflows %d-digit index field", b.dataOffset, offsetDigits)
	}
	copy(record[offsetDigits-len(digits):offsetDigits], digits)
	for i := 0; i < offsetDigits-len(digits); i++ {
		record[i] = '0'
	}
	record[offsetDigits] = '\n'
	if err := writeFull(b.indexLease.File(), record); err != nil {
		return errs.Wrap(errs.WriteFailed, err)
	}

	payload := []byte(s)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if err := writeFull(b.dataLease.File(), lenBuf[:]); err != nil {
		return errs.Wrap(errs.WriteFailed, err)
	}
	if err := writeFull(b.dataLease.File(), payload); err != nil {
		return errs.Wrap(errs.WriteFailed, err)
	}

	b.dataOffset += uint64(4 + len(payload))
	b.count++
	return nil
}

// Count returns the number of strings added so far.
func (b *Builder) Count() int { return b.count }

// Finish closes the write handles and reopens both files read-only as a
// Store. The Builder must not be used afterward.
func (b *Builder) Finish() (*Store, error) {
	indexFile, err := b.indexLease.ReopenRead()
	if err != nil {
		b.dataLease.Release()
		return nil, err
	}
	dataFile, err := b.dataLease.ReopenRead()
	if err != nil {
		_ = indexFile.Close()
		return nil, err
	}
	return &Store{
		indexLease: b.indexLease,
		dataLease:  b.dataLease,
		indexFile:  indexFile,
		dataFile:   dataFile,
		count:      b.count,
	}, nil
}

// Abandon releases both backing temp files without producing a Store, used
// when the surrounding conversion fails before Finish is called.
func (b *Builder) Abandon() {
	b.indexLease.Release()
	b.dataLease.Release()
}

// Store provides random-access lookup into a shared-string table built by
// Builder. A nil *Store is legal: it represents a workbook with no
// xl/sharedStrings.xml part, and Lookup on a nil Store tolerantly returns "".
type Store struct {
	indexLease *pathsafe.Lease
	dataLease  *pathsafe.Lease
	indexFile  *os.File
	dataFile   *os.File
	count      int
}

// Count returns the number of strings in the table.
func (s *Store) Count() int {
	if s == nil {
		return 0
	}
	return s.count
}

// Lookup resolves shared-string index i to its text. Any short read (index
// out of range, truncated store) is tolerated and yields "". A nil Store,
// or one whose backing file handles are absent, is a hard failure only if a
// non-nil Store was expected to have them; Lookup on a nil *Store itself is
// legal and always returns "".
func (s *Store) Lookup(i int) (string, error) {
	if s == nil {
		return "", nil
	}
	if s.indexFile == nil || s.dataFile == nil {
		return "", errs.New(errs.EncodingFailure, "shared-string store has no open handle")
	}
	if i < 0 {
		return "", nil
	}

	record := make([]byte, indexRecordLen)
	n, err := s.indexFile.ReadAt(record, int64(i)*indexRecordLen)
	if err != nil && err != io.EOF {
		return "", errs.Wrap(errs.IoFailure, err)
	}
	if n < indexRecordLen {
		return "", nil
	}

	offset, err := strconv.ParseUint(string(record[:offsetDigits]), 10, 64)
	if err != nil {
		return "", nil
	}

	var lenBuf [4]byte
	n, err = s.dataFile.ReadAt(lenBuf[:], int64(offset))
	if err != nil && err != io.EOF {
		return "", errs.Wrap(errs.IoFailure, err)
	}
	if n < 4 {
		return "", nil
	}
	length := binary.BigEndian.Uint32(lenBuf[:])

	payload := make([]byte, length)
	n, err = s.dataFile.ReadAt(payload, int64(offset)+4)
	if err != nil && err != io.EOF {
		return "", errs.Wrap(errs.IoFailure, err)
	}
	if uint32(n) < length {
		return "", nil
	}
	return string(payload), nil
}

// Close releases the backing temp files.
func (s *Store) Close() {
	if s == nil {
		return
	}
	if s.indexFile != nil {
		_ = s.indexFile.Close()
	}
	if s.dataFile != nil {
		_ = s.dataFile.Close()
	}
	if s.indexLease != nil {
		s.indexLease.Release()
	}
	if s.dataLease != nil {
		s.dataLease.Release()
	}
}

func writeFull(f *os.File, data []byte) error {
	for len(data) > 0 {
		n, err := f.Write(data)
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.New(errs.WriteFailed, "zero-byte write")
		}
		data = data[n:]
	}
	return nil
}
