// Package csvio implements CSV delimiter inference and the row-oriented
// CSV reader/writer wrappers used by both conversion directions.
package csvio

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/DeltaShift/hookswitch/internal/errs"
)

const utf8BOM = "\xEF\xBB\xBF"

// candidates is the fixed, ordered delimiter list from spec §4.6. Order is
// the tie-break: the earlier entry wins a field-count tie.
var candidates = []rune{',', ';', '\t', '|'}

// DetectDelimiter scans r for its first non-blank line, picks whichever
// candidate delimiter splits that line into the most fields, and rewinds r
// to the start so the caller can parse the whole stream with the chosen
// delimiter. If the stream has no non-blank line, it defaults to ','.
func DetectDelimiter(r io.ReadSeeker) (rune, error) {
	line, err := firstNonBlankLine(r)
	if err != nil {
		return 0, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, errs.Wrap(errs.IoFailure, err)
	}
	if line == "" {
		return ',', nil
	}
	return chooseDelimiter(line), nil
}

func firstNonBlankLine(r io.Reader) (string, error) {
	br := bufio.NewReader(r)
	strippedBOM := false
	for {
		line, err := br.ReadString('\n')
		if !strippedBOM {
			line = strings.TrimPrefix(line, utf8BOM)
			strippedBOM = true
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(trimmed) != "" {
			return trimmed, nil
		}
		if err == io.EOF {
			return "", nil
		}
		if err != nil {
			return "", errs.Wrap(errs.IoFailure, err)
		}
	}
}

func chooseDelimiter(line string) rune {
	best := candidates[0]
	bestCount := -1
	for _, d := range candidates {
		count := fieldCount(line, d)
		if count > bestCount {
			bestCount = count
			best = d
		}
	}
	return best
}

func fieldCount(line string, delim rune) int {
	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = delim
	record, err := reader.Read()
	if err != nil {
		return 1
	}
	return len(record)
}
