// Package cmd implements the hookswitch command-line entry point: argument
// parsing, the timing/memory report block on stdout, and diagnostic
// logging on stderr. The conversion logic itself lives in internal/convert.
package cmd

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/DeltaShift/hookswitch/internal/convert"
	"github.com/DeltaShift/hookswitch/internal/pathsafe"
)

// version is overwritten at build time via -ldflags.
var version = "dev"

const (
	defaultInput  = "./test.csv"
	defaultOutput = "./output.xlsx"
	defaultMode   = "csv_to_xlsx"

	modeCSVToXLSX = "csv_to_xlsx"
	modeXLSXToCSV = "xlsx_to_csv"
)

var verbose bool

// NewRootCommand builds the hookswitch cobra command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "hookswitch [input] [output] [mode]",
		Short:   "Convert tabular data between XLSX and CSV without loading it all into memory",
		Version: version,
		Args:    cobra.MaximumNArgs(3),
		RunE:    runConvert,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging on stderr")
	return root
}

// Execute runs the root command and exits the process with the code cobra
// itself reports; runConvert handles the spec's own exit-code contract
// internally via os.Exit so it is never overridden by cobra's default
// non-zero-on-error behavior.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	input, output, mode := defaultInput, defaultOutput, defaultMode
	if len(args) > 0 {
		input = args[0]
	}
	if len(args) > 1 {
		output = args[1]
	}
	if len(args) > 2 {
		mode = args[2]
	}

	logger := newLogger(verbose)
	defer func() { _ = logger.Sync() }()

	if mode != modeCSVToXLSX && mode != modeXLSXToCSV {
		fmt.Fprintf(os.Stderr, "invalid mode %q: must be %q or %q\n", mode, modeCSVToXLSX, modeXLSXToCSV)
		os.Exit(1)
	}
	if info, err := os.Stat(input); err != nil || !info.Mode().IsRegular() {
		fmt.Fprintf(os.Stderr, "input file %q not found\n", input)
		os.Exit(1)
	}

	validator := pathsafe.New("")
	opts := convert.Options{Validator: validator, Logger: logger}

	var memBefore, memAfter runtime.MemStats
	runtime.ReadMemStats(&memBefore)
	start := time.Now()

	var ok bool
	var convErr error
	switch mode {
	case modeCSVToXLSX:
		ok, convErr = convert.ConvertCSVToXLSX(cmd.Context(), input, output, opts)
	case modeXLSXToCSV:
		ok, convErr = convert.ConvertXLSXToCSV(cmd.Context(), input, output, opts)
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&memAfter)

	if convErr != nil {
		logger.Debug("conversion returned an error", zap.Error(convErr))
	}

	fmt.Println("=== hookswitch conversion report ===")
	fmt.Printf("mode:       %s\n", mode)
	fmt.Printf("input:      %s\n", input)
	fmt.Printf("output:     %s\n", output)
	fmt.Printf("elapsed:    %s\n", elapsed)
	fmt.Printf("heap delta: %d bytes\n", int64(memAfter.HeapAlloc)-int64(memBefore.HeapAlloc))
	if ok {
		fmt.Println("SUCCESS")
	} else {
		fmt.Println("FAILED")
	}
	return nil
}

func newLogger(verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
