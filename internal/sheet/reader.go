package sheet

import (
	"context"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/DeltaShift/hookswitch/internal/column"
	"github.com/DeltaShift/hookswitch/internal/errs"
	"github.com/DeltaShift/hookswitch/internal/sst"
)

// Row is one dense, 1-based-numbered worksheet row. Fields == nil marks a
// row that must be emitted as a bare blank line: either a gap between
// non-contiguous declared row numbers, or a declared row with no cells.
type Row struct {
	Number int
	Fields []string
}

// RowStreamer pulls <row> elements out of a worksheet XML stream one at a
// time, resolving shared-string and boolean cells as it goes. It is
// forward-only and not restartable (spec §3, "Worksheet stream").
type RowStreamer struct {
	dec               *xml.Decoder
	store             *sst.Store
	expectedRowNumber int
	queue             []*Row
	done              bool
}

// NewRowStreamer wraps r (the worksheet XML entry) and store (possibly nil,
// for workbooks with no shared-string table).
func NewRowStreamer(r io.Reader, store *sst.Store) *RowStreamer {
	return &RowStreamer{
		dec:               xml.NewDecoder(r),
		store:             store,
		expectedRowNumber: 1,
	}
}

// Next returns the next row to emit, or (nil, nil) once the stream is
// exhausted. It respects ctx cancellation at row boundaries, per spec §5.
func (rs *RowStreamer) Next(ctx context.Context) (*Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(rs.queue) > 0 {
		row := rs.queue[0]
		rs.queue = rs.queue[1:]
		return row, nil
	}
	if rs.done {
		return nil, nil
	}

	for {
		tok, err := rs.dec.Token()
		if err == io.EOF {
			rs.done = true
			return nil, nil
		}
		if err != nil {
			return nil, errs.Wrap(errs.XMLMalformed, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}

		declared := rs.expectedRowNumber
		if v, ok := attrValue(se, "r"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
				declared = n
			}
		}
		for rs.expectedRowNumber < declared {
			rs.queue = append(rs.queue, &Row{Number: rs.expectedRowNumber})
			rs.expectedRowNumber++
		}

		row, err := rs.readRowCells()
		if err != nil {
			return nil, err
		}
		row.Number = declared
		rs.expectedRowNumber = declared + 1
		rs.queue = append(rs.queue, row)

		out := rs.queue[0]
		rs.queue = rs.queue[1:]
		return out, nil
	}
}

// readRowCells consumes tokens from just after a <row> start tag through its
// matching end tag, building the dense field slice described in spec §4.3.
func (rs *RowStreamer) readRowCells() (*Row, error) {
	depth := 0
	currentColumn := 1
	maxColumn := 0
	values := make(map[int]string)

	for {
		tok, err := rs.dec.Token()
		if err == io.EOF {
			return nil, errs.New(errs.XMLMalformed, "unexpected end of document inside <row>")
		}
		if err != nil {
			return nil, errs.Wrap(errs.XMLMalformed, err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "c" {
				colIndex, value, err := rs.readCell(el, &currentColumn)
				if err != nil {
					return nil, err
				}
				values[colIndex] = value
				if colIndex > maxColumn {
					maxColumn = colIndex
				}
				continue
			}
			depth++
		case xml.EndElement:
			if el.Name.Local == "row" && depth == 0 {
				if maxColumn == 0 {
					return &Row{}, nil
				}
				fields := make([]string, maxColumn)
				for idx, v := range values {
					fields[idx-1] = v
				}
				return &Row{Fields: fields}, nil
			}
			depth--
		}
	}
}

// readCell consumes a <c>...</c> (or self-closing <c/>) subtree, returning
// its 1-based column index and resolved text value.
func (rs *RowStreamer) readCell(start xml.StartElement, currentColumn *int) (int, string, error) {
	ref, _ := attrValue(start, "r")
	typ, _ := attrValue(start, "t")

	colIndex := 0
	if ref != "" {
		letters, _ := column.SplitLeadingLetters(ref)
		if letters != "" {
			colIndex = column.LettersToNumber(letters)
		}
	}
	if colIndex <= 0 {
		colIndex = *currentColumn
	}
	*currentColumn = colIndex + 1

	var text strings.Builder
	depth := 0
	inCapture := false

	for {
		tok, err := rs.dec.Token()
		if err == io.EOF {
			return 0, "", errs.New(errs.XMLMalformed, "unexpected end of document inside <c>")
		}
		if err != nil {
			return 0, "", errs.Wrap(errs.XMLMalformed, err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "v" || el.Name.Local == "t" {
				inCapture = true
			}
			depth++
		case xml.CharData:
			if inCapture {
				text.Write(el)
			}
		case xml.EndElement:
			if el.Name.Local == "c" && depth == 0 {
				return colIndex, rs.resolveCellValue(typ, text.String()), nil
			}
			depth--
			if el.Name.Local == "v" || el.Name.Local == "t" {
				inCapture = false
			}
		}
	}
}

// resolveCellValue applies the type rules from spec §3.
func (rs *RowStreamer) resolveCellValue(typ, raw string) string {
	switch typ {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return ""
		}
		val, lookupErr := rs.store.Lookup(idx)
		if lookupErr != nil {
			return ""
		}
		return val
	case "b":
		if strings.TrimSpace(raw) == "1" {
			return "TRUE"
		}
		return "FALSE"
	default:
		return raw
	}
}

func attrValue(se xml.StartElement, local string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}
