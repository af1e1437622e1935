package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/rouri404/grabtext/internal/batch"
	"github.com/rouri404/grabtext/internal/config"
	"github.com/rouri404/grabtext/internal/export"
	"github.com/rouri404/grabtext/internal/ocr"
	"github.com/rouri404/grabtext/internal/record"
)

func runProcess(args []string, build BuildInfo) int {
	fs := pflag.NewFlagSet("process", pflag.ContinueOnError)
	config.BindFlags(fs)
	recursive := fs.BoolP("recursive", "r", false, "descend into subdirectories")
	formatFlag := fs.StringP("format", "f", "text", "output format (text, json, csv)")
	output := fs.StringP("output", "o", "", "write output to a file instead of stdout")
	forceBatch := fs.Bool("batch", false, "use the batch output schema even for a single file")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: grabtext process <path> [flags]")
		fmt.Fprintln(os.Stderr)
		fs.PrintDefaults()
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "process requires exactly one image file or directory path")
		fs.Usage()
		return 2
	}
	path := fs.Arg(0)

	format, err := export.ParseFormat(*formatFlag)
	if err != nil {
		return fail(err)
	}
	cfg, err := config.Load(fs)
	if err != nil {
		return fail(err)
	}
	logger, store, err := newLogger(cfg)
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	info, err := os.Stat(path)
	if err != nil {
		logger.Error("path not found", "path", path)
		return fail(fmt.Errorf("path not found: %s", path))
	}

	engine, err := ocr.DefaultManager().Select(cfg.Engine)
	if err != nil {
		logger.Error("no usable ocr engine", "error", err)
		return fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder := record.NewBuilder(engine, cfg.Timeout, logger)
	writer := export.NewWriter(build.Version)

	if info.IsDir() {
		agg := batch.NewAggregator(builder, logger, cfg.Workers)
		result, err := agg.Run(ctx, path, *recursive, cfg.Language)
		if err != nil {
			return fail(err)
		}
		return emitBatch(writer, result, format, *output)
	}

	rec, err := builder.Build(ctx, path, cfg.Language)
	if err != nil {
		logger.Error("failed to process image", "file", path, "error", err)
		return fail(err)
	}

	if *forceBatch {
		result := &batch.BatchResult{
			Records:               []record.OcrRecord{*rec},
			TotalFiles:            1,
			SuccessfullyProcessed: 1,
			Directory:             filepath.Dir(rec.Filepath),
			Recursive:             false,
			ProcessedAt:           time.Now(),
		}
		return emitBatch(writer, result, format, *output)
	}
	return emitSingle(writer, rec, format, *output)
}

func emitSingle(writer *export.Writer, rec *record.OcrRecord, format export.Format, outPath string) int {
	if outPath == "" {
		if err := writer.WriteSingle(os.Stdout, rec, format); err != nil {
			return fail(err)
		}
		return 0
	}
	if err := writer.ExportSingle(outPath, rec, format); err != nil {
		return fail(err)
	}
	return 0
}

func emitBatch(writer *export.Writer, result *batch.BatchResult, format export.Format, outPath string) int {
	if outPath == "" {
		if err := writer.WriteBatch(os.Stdout, result, format); err != nil {
			return fail(err)
		}
		return 0
	}
	if err := writer.ExportBatch(outPath, result, format); err != nil {
		return fail(err)
	}
	return 0
}
