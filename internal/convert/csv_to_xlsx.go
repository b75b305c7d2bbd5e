package convert

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/DeltaShift/hookswitch/internal/archive"
	"github.com/DeltaShift/hookswitch/internal/csvio"
	"github.com/DeltaShift/hookswitch/internal/pathsafe"
	"github.com/DeltaShift/hookswitch/internal/sheet"
)

// ConvertCSVToXLSX reads the CSV file at inputPath and writes a minimal,
// single-sheet XLSX package to outputPath. It returns (false, err) on any
// failure, with the output file guaranteed absent and the worksheet temp
// file always released.
func ConvertCSVToXLSX(ctx context.Context, inputPath, outputPath string, opts Options) (bool, error) {
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

	inFile, err := os.Open(inCanon)
	if err != nil {
		logger.Error("failed to open csv input", zap.Error(err))
		return false, err
	}
	cleanups = append(cleanups, func() { _ = inFile.Close() })

	delim, err := csvio.DetectDelimiter(inFile)
	if err != nil {
		logger.Error("failed to detect delimiter", zap.Error(err))
		return false, err
	}
	logger.Debug("detected delimiter", zap.String("delimiter", string(delim)))

	lease, err := pathsafe.NewLease(os.TempDir(), "hookswitch-sheet-*")
	if err != nil {
		logger.Error("failed to allocate worksheet temp file", zap.Error(err))
		return false, err
	}
	cleanups = append(cleanups, func() { lease.Release() })

	xw, err := sheet.NewXMLWriter(lease.File())
	if err != nil {
		logger.Error("failed to start worksheet xml", zap.Error(err))
		return false, err
	}

	rs := csvio.NewRowStreamer(inFile, delim)
	rowCount := 0
	for {
		record, err := rs.Next(ctx)
		if err != nil {
			logger.Error("failed reading csv row", zap.Error(err))
			return false, err
		}
		if record == nil {
			break
		}
		if err := xw.WriteRow(record); err != nil {
			logger.Error("failed writing worksheet row", zap.Error(err))
			return false, err
		}
		rowCount++
	}
	if err := xw.Close(); err != nil {
		logger.Error("failed finalizing worksheet xml", zap.Error(err))
		return false, err
	}
	logger.Debug("worksheet xml complete", zap.Int("rows", rowCount))

	sheetFile, err := lease.ReopenRead()
	if err != nil {
		logger.Error("failed reopening worksheet temp file", zap.Error(err))
		return false, err
	}
	defer func() { _ = sheetFile.Close() }()

	asm, err := archive.NewAssembler(outCanon)
	if err != nil {
		logger.Error("failed creating output archive", zap.Error(err))
		return false, err
	}
	if err := asm.WriteFixedParts(); err != nil {
		logger.Error("failed writing fixed package parts", zap.Error(err))
		asm.Abort()
		return false, err
	}
	if err := asm.AddSheetStream(sheetFile); err != nil {
		logger.Error("failed adding worksheet part", zap.Error(err))
		asm.Abort()
		return false, err
	}
	if err := asm.Close(); err != nil {
		logger.Error("failed finalizing archive", zap.Error(err))
		return false, err
	}

	success = true
	return true, nil
}
