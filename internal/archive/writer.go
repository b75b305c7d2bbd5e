package archive

import (
	"archive/zip"
	"io"
	"os"

	"github.com/DeltaShift/hookswitch/internal/errs"
)

// The four fixed, non-worksheet parts of the minimal package layout mandated
// by spec §6.
// Literal byte content is load-bearing: several OOXML-consuming tools
// reject a package whose declared parts drift from these exact strings.
const (
	ContentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>
<Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>
</Types>`

	PackageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>
</Relationships>`

	WorkbookXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets>
<sheet name="Sheet1" sheetId="1" r:id="rId1"/>
</sheets>
</workbook>`

	WorkbookRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
</Relationships>`
)

// entryContentTypes, entryPackageRels, etc name the fixed part paths.
const (
	entryContentTypes = "[Content_Types].xml"
	entryPackageRels  = "_rels/.rels"
	entryWorkbook     = "xl/workbook.xml"
	entryWorkbookRels = "xl/_rels/workbook.xml.rels"
	entrySheet1       = "xl/worksheets/sheet1.xml"
)

// Assembler creates a new XLSX package on disk and adds its fixed parts
// plus the generated worksheet.
type Assembler struct {
	path string
	f    *os.File
	zw   *zip.Writer
}

// NewAssembler creates (or overwrites) outputPath and opens a zip.Writer
// over it.
func NewAssembler(outputPath string) (*Assembler, error) {
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, errs.Wrap(errs.IoFailure, err)
	}
	return &Assembler{path: outputPath, f: f, zw: zip.NewWriter(f)}, nil
}

func (a *Assembler) addBytes(name string, data string) error {
	w, err := a.zw.Create(name)
	if err != nil {
		return errs.Wrap(errs.ArchiveFailure, err)
	}
	if _, err := io.WriteString(w, data); err != nil {
		return errs.Wrap(errs.ArchiveFailure, err)
	}
	return nil
}

// WriteFixedParts adds the four byte-exact, non-worksheet parts of the
// package.
func (a *Assembler) WriteFixedParts() error {
	parts := []struct{ name, data string }{
		{entryContentTypes, ContentTypesXML},
		{entryPackageRels, PackageRelsXML},
		{entryWorkbook, WorkbookXML},
		{entryWorkbookRels, WorkbookRelsXML},
	}
	for _, p := range parts {
		if err := a.addBytes(p.name, p.data); err != nil {
			return err
		}
	}
	return nil
}

// AddSheetStream streams r (the already-finalized worksheet temp file) into
// the archive as xl/worksheets/sheet1.xml, without slurping it into memory.
func (a *Assembler) AddSheetStream(r io.Reader) error {
	w, err := a.zw.Create(entrySheet1)
	if err != nil {
		return errs.Wrap(errs.ArchiveFailure, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return errs.Wrap(errs.ArchiveFailure, err)
	}
	return nil
}

// Close finalizes the ZIP central directory and closes the output file.
func (a *Assembler) Close() error {
	if err := a.zw.Close(); err != nil {
		_ = a.f.Close()
		return errs.Wrap(errs.ArchiveFailure, err)
	}
	if err := a.f.Close(); err != nil {
		return errs.Wrap(errs.IoFailure, err)
	}
	return nil
}

// Abort discards the in-progress archive and unlinks the output file, used
// when any part fails to write (spec §4.5: "If any add fails, the entire
// archive is discarded").
func (a *Assembler) Abort() {
	_ = a.zw.Close()
	_ = a.f.Close()
	_ = os.Remove(a.path)
}
