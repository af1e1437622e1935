package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/rouri404/grabtext/internal/config"
	"github.com/rouri404/grabtext/internal/export"
	"github.com/rouri404/grabtext/internal/ocr"
	"github.com/rouri404/grabtext/internal/record"
	"github.com/rouri404/grabtext/internal/watch"
)

func runMonitor(args []string, build BuildInfo) int {
	fs := pflag.NewFlagSet("monitor", pflag.ContinueOnError)
	config.BindFlags(fs)
	recursive := fs.BoolP("recursive", "r", false, "watch subdirectories too")
	formatFlag := fs.StringP("format", "f", "text", "output format (text, json, csv)")
	output := fs.StringP("output", "o", "", "write one result file per image into this directory instead of stdout")
	backendFlag := fs.String("backend", string(watch.BackendAuto), "watch backend (auto, poll, notify)")
	processExisting := fs.Bool("process-existing", false, "process files already in the directory before watching")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: grabtext monitor <path> [flags]")
		fmt.Fprintln(os.Stderr)
		fs.PrintDefaults()
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "monitor requires exactly one directory path")
		fs.Usage()
		return 2
	}
	dir := fs.Arg(0)

	format, err := export.ParseFormat(*formatFlag)
	if err != nil {
		return fail(err)
	}
	backend, err := watch.ParseBackend(*backendFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
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

	engine, err := ocr.DefaultManager().Select(cfg.Engine)
	if err != nil {
		logger.Error("no usable ocr engine", "error", err)
		return fail(err)
	}

	builder := record.NewBuilder(engine, cfg.Timeout, logger)
	writer := export.NewWriter(build.Version)
	var csvStream *export.CSVStream
	if *output == "" && format == export.FormatCSV {
		csvStream = export.NewCSVStream(os.Stdout)
	}

	handler := func(ctx context.Context, path string) error {
		rec, err := builder.Build(ctx, path, cfg.Language)
		if err != nil {
			return err
		}
		if *output != "" {
			return writer.ExportSingle(resultPath(*output, path, format), rec, format)
		}
		if csvStream != nil {
			return csvStream.Write(rec)
		}
		return writer.WriteSingle(os.Stdout, rec, format)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watch.New(watch.Options{
		Dir:             dir,
		Recursive:       *recursive,
		Interval:        cfg.PollInterval,
		ProcessExisting: *processExisting,
		Backend:         backend,
	}, handler, logger)
	if err := w.Run(ctx); err != nil {
		return fail(err)
	}
	return 0
}

// resultPath names the export file for one watched image: the image's
// stem plus the format's extension, inside outDir.
func resultPath(outDir, imagePath string, format export.Format) string {
	base := filepath.Base(imagePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, stem+"."+format.Ext())
}
