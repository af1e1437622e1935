package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/rouri404/grabtext/internal/config"
	"github.com/rouri404/grabtext/internal/export"
	"github.com/rouri404/grabtext/internal/ocr"
	"github.com/rouri404/grabtext/internal/record"
)

// runGrab extracts text from an image piped on stdin, for wiring into
// screenshot tools: `screenshot-tool | grabtext grab`.
func runGrab(args []string, build BuildInfo) int {
	fs := pflag.NewFlagSet("grab", pflag.ContinueOnError)
	config.BindFlags(fs)
	formatFlag := fs.StringP("format", "f", "text", "output format (text, json, csv)")
	output := fs.StringP("output", "o", "", "write output to a file instead of stdout")
	from := fs.String("from", "", "read the image from FILE instead of stdin")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: <image producer> | grabtext grab [flags]")
		fmt.Fprintln(os.Stderr)
		fs.PrintDefaults()
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "grab takes no arguments; pipe the image on stdin or use --from")
		fs.Usage()
		return 2
	}

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

	src, srcName := io.Reader(os.Stdin), "stdin"
	if *from != "" {
		f, err := os.Open(*from)
		if err != nil {
			logger.Error("failed to open capture file", "file", *from, "error", err)
			return fail(err)
		}
		defer f.Close()
		src, srcName = f, *from
	}

	img, err := imaging.Decode(src)
	if err != nil {
		logger.Error("no usable image", "source", srcName, "error", err)
		return fail(fmt.Errorf("failed to decode image from %s: %w", srcName, err))
	}

	// The pipeline works on files, so the captured image is parked in a
	// temp file for the duration of the run.
	tmp := filepath.Join(os.TempDir(), "grabtext-"+uuid.New().String()+".png")
	if err := imaging.Save(img, tmp); err != nil {
		logger.Error("failed to stage captured image", "error", err)
		return fail(err)
	}
	defer os.Remove(tmp)

	engine, err := ocr.DefaultManager().Select(cfg.Engine)
	if err != nil {
		logger.Error("no usable ocr engine", "error", err)
		return fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder := record.NewBuilder(engine, cfg.Timeout, logger)
	rec, err := builder.Build(ctx, tmp, cfg.Language)
	if err != nil {
		logger.Error("failed to process captured image", "error", err)
		return fail(err)
	}

	return emitSingle(export.NewWriter(build.Version), rec, format, *output)
}
