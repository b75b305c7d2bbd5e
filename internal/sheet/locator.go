// Package sheet implements the worksheet-location algorithm, the streaming
// row reader for XLSX→CSV, and the streaming row writer for CSV→XLSX.
package sheet

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/DeltaShift/hookswitch/internal/archive"
	"github.com/DeltaShift/hookswitch/internal/errs"
)

// LocateFirstWorksheet implements spec §4.1: find the archive entry path of
// the first worksheet, trying the workbook/relationships route first and
// falling back to a sorted directory scan.
func LocateFirstWorksheet(ar *archive.Reader) (string, error) {
	if target, ok := locateViaRelationships(ar); ok {
		return target, nil
	}
	entries := ar.FindWorksheetEntries()
	if len(entries) == 0 {
		return "", errs.New(errs.SheetNotFound, "no worksheet entries found in archive")
	}
	return entries[0], nil
}

func locateViaRelationships(ar *archive.Reader) (string, bool) {
	if !ar.Has("xl/workbook.xml") || !ar.Has("xl/_rels/workbook.xml.rels") {
		return "", false
	}
	wbData, err := ar.ReadAll("xl/workbook.xml")
	if err != nil {
		return "", false
	}
	relID, ok := firstSheetRelationshipID(wbData)
	if !ok {
		return "", false
	}
	relsData, err := ar.ReadAll("xl/_rels/workbook.xml.rels")
	if err != nil {
		return "", false
	}
	target, ok := relationshipTarget(relsData, relID)
	if !ok || target == "" {
		return "", false
	}
	return archive.NormalizeTarget(target), true
}

// firstSheetRelationshipID stream-scans workbook.xml for the first <sheet>
// element and returns its relationship id (r:id, matched by local name
// "id"; the attribute's namespace is not checked).
func firstSheetRelationshipID(data []byte) (string, bool) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		for _, attr := range se.Attr {
			if attr.Name.Local == "id" {
				return attr.Value, true
			}
		}
		return "", false
	}
}

// relationshipTarget stream-scans a .rels document for the <Relationship>
// whose Id equals id and returns its Target.
func relationshipTarget(data []byte, id string) (string, bool) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", false
		}
		if err != nil {
			return "", false
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var gotID, target string
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "Id":
				gotID = attr.Value
			case "Target":
				target = attr.Value
			}
		}
		if gotID == id {
			return target, true
		}
	}
}
