// Package convert orchestrates the two conversion directions, wiring
// together archive, sheet, sst, csvio, and pathsafe. Each public operation
// follows the VALIDATE → OPEN → STREAM → FINALIZE → CLEANUP state machine
// from spec §4.9: any failure in the first four states falls through to
// CLEANUP, which unlinks every temp file and, on failure only, the output.
package convert

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/DeltaShift/hookswitch/internal/archive"
	"github.com/DeltaShift/hookswitch/internal/csvio"
	"github.com/DeltaShift/hookswitch/internal/pathsafe"
	"github.com/DeltaShift/hookswitch/internal/sheet"
	"github.com/DeltaShift/hookswitch/internal/sst"
)

const sharedStringsEntry = "xl/sharedStrings.xml"

// Options bundles the collaborators a conversion needs. Validator is
// required; Logger defaults to a no-op logger if nil.
type Options struct {
	Validator *pathsafe.Validator
	Logger    *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// ConvertXLSXToCSV reads the first worksheet of the XLSX file at inputPath
// and writes it as CSV to outputPath. It returns (false, err) on any
// failure, with the output file guaranteed absent; the error is for the
// caller's diagnostics only, per spec §7's "collapse into a boolean
// success/failure".
func ConvertXLSXToCSV(ctx context.Context, inputPath, outputPath string, opts Options) (bool, error) {
	logger := opts.logger()

	var cleanups []func()
	outCanon := ""
	success := false
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
		if !success {
			pathsafe.UnlinkOutput(outCanon)
		}
	}()

	inCanon, err := opts.Validator.ValidateInput(inputPath)
	if err != nil {
		logger.Error("input path rejected", zap.Error(err))
		return false, err
	}
	outCanon, err = opts.Validator.ValidateOutput(outputPath)
	if err != nil {
		logger.Error("output path rejected", zap.Error(err))
		return false, err
	}

	ar, err := archive.Open(inCanon)
	if err != nil {
		logger.Error("failed to open xlsx archive", zap.Error(err))
		return false, err
	}
	cleanups = append(cleanups, func() { _ = ar.Close() })

	sheetName, err := sheet.LocateFirstWorksheet(ar)
	if err != nil {
		logger.Error("failed to locate worksheet", zap.Error(err))
		return false, err
	}
	logger.Debug("located worksheet", zap.String("entry", sheetName))

	var store *sst.Store
	if ar.Has(sharedStringsEntry) {
		rc, err := ar.OpenEntry(sharedStringsEntry)
		if err != nil {
			logger.Error("failed to open shared strings", zap.Error(err))
			return false, err
		}
		store, err = sst.BuildFromXML(rc, os.TempDir())
		_ = rc.Close()
		if err != nil {
			logger.Error("failed to build shared-string store", zap.Error(err))
			return false, err
		}
		cleanups = append(cleanups, func() { store.Close() })
		logger.Debug("built shared-string store", zap.Int("count", store.Count()))
	}

	sheetRC, err := ar.OpenEntry(sheetName)
	if err != nil {
		logger.Error("failed to open worksheet entry", zap.Error(err))
		return false, err
	}
	cleanups = append(cleanups, func() { _ = sheetRC.Close() })

	outFile, err := os.Create(outCanon)
	if err != nil {
		logger.Error("failed to create output file", zap.Error(err))
		return false, err
	}
	cleanups = append(cleanups, func() { _ = outFile.Close() })

	rs := sheet.NewRowStreamer(sheetRC, store)
	cw := csvio.NewWriter(outFile)

	rowCount := 0
	for {
		row, err := rs.Next(ctx)
		if err != nil {
			logger.Error("failed streaming worksheet row", zap.Error(err))
			return false, err
		}
		if row == nil {
			break
		}
		if err := cw.WriteRow(row.Fields); err != nil {
			logger.Error("failed writing csv row", zap.Error(err))
			return false, err
		}
		rowCount++
	}
	logger.Debug("conversion complete", zap.Int("rows", rowCount))

	success = true
	return true, nil
}
