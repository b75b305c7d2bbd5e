package sst

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/DeltaShift/hookswitch/internal/errs"
)

// BuildFromXML streams xl/sharedStrings.xml and writes the resulting
// strings into a freshly allocated on-disk Store. Element matching is by
// local name only, so the reader is not coupled to the document's namespace
// prefix (spec §9).
func BuildFromXML(r io.Reader, tempDir string) (*Store, error) {
	builder, err := NewBuilder(tempDir)
	if err != nil {
		return nil, err
	}

	dec := xml.NewDecoder(r)
	var (
		inSI bool
		inT  bool
		text strings.Builder
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			builder.Abandon()
			return nil, errs.Wrap(errs.XMLMalformed, err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "si":
				inSI = true
				text.Reset()
			case "t":
				if inSI {
					inT = true
				}
			}
		case xml.CharData:
			if inSI && inT {
				text.Write(el)
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				if inSI && inT {
					inT = false
				}
			case "si":
				if inSI {
					if err := builder.Add(text.String()); err != nil {
						builder.Abandon()
						return nil, err
					}
					inSI = false
					inT = false
				}
			}
		}
	}

	return builder.Finish()
}
