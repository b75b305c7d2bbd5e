package sheet

import (
	"io"
	"strconv"
	"strings"

	"github.com/DeltaShift/hookswitch/internal/column"
	"github.com/DeltaShift/hookswitch/internal/errs"
	"github.com/DeltaShift/hookswitch/internal/xmltext"
)

const utf8BOM = "\xEF\xBB\xBF"

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`

const xmlFooter = `</sheetData></worksheet>`

// XMLWriter streams the worksheet XML body described in spec §4.4 to w as
// CSV rows arrive, so the generated sheet never accumulates in memory.
type XMLWriter struct {
	w          io.Writer
	rowNum     int
	headerDone bool
}

// NewXMLWriter writes the document preamble and returns a ready writer.
func NewXMLWriter(w io.Writer) (*XMLWriter, error) {
	xw := &XMLWriter{w: w}
	if err := writeFullString(w, xmlHeader); err != nil {
		return nil, errs.Wrap(errs.WriteFailed, err)
	}
	xw.headerDone = true
	return xw, nil
}

// WriteRow appends one CSV row as the next sequential worksheet row.
// Empty-string cells are omitted entirely (sparse representation); the
// first field of the first row has any leading UTF-8 BOM stripped.
func (xw *XMLWriter) WriteRow(cells []string) error {
	xw.rowNum++
	if xw.rowNum == 1 && len(cells) > 0 {
		cells[0] = strings.TrimPrefix(cells[0], utf8BOM)
	}

	var sb strings.Builder
	sb.WriteString(`<row r="`)
	sb.WriteString(strconv.Itoa(xw.rowNum))
	sb.WriteString(`">`)
	for i, val := range cells {
		if val == "" {
			continue
		}
		ref := column.NumberToLetters(i+1) + strconv.Itoa(xw.rowNum)
		sb.WriteString(`<c r="`)
		sb.WriteString(ref)
		sb.WriteString(`" t="inlineStr"><is><t xml:space="preserve">`)
		sb.WriteString(escapeXML(xmltext.Sanitize(val)))
		sb.WriteString(`</t></is></c>`)
	}
	sb.WriteString(`</row>`)

	if err := writeFullString(xw.w, sb.String()); err != nil {
		return errs.Wrap(errs.WriteFailed, err)
	}
	return nil
}

// Close writes the document's closing tags.
func (xw *XMLWriter) Close() error {
	if err := writeFullString(xw.w, xmlFooter); err != nil {
		return errs.Wrap(errs.WriteFailed, err)
	}
	return nil
}

// escapeXML replaces the five predefined XML entities in a single pass, so
// the '&' introduced by escaping '<' or '"' is never re-escaped.
func escapeXML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}

// writeFullString retries partial writes until all bytes are written, per
// spec §4.4's short-write handling: a zero-byte return is treated as
// failure rather than retried forever.
func writeFullString(w io.Writer, s string) error {
	data := []byte(s)
	for len(data) > 0 {
		n, err := w.Write(data)
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
