// Package cli implements the grabtext command surface: process, monitor,
// grab, logs, engines.
//
// Data goes to stdout or the file named by --output; structured logs go
// to stderr and the log file. Exit codes: 0 on success, 1 on operational
// failure, 2 on invalid usage.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"

	"github.com/rouri404/grabtext/internal/config"
	"github.com/rouri404/grabtext/internal/export"
	"github.com/rouri404/grabtext/internal/logstore"
	"github.com/rouri404/grabtext/internal/ocr"
)

// BuildInfo carries the version stamps set by the linker.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// Run executes the subcommand named by args and returns the process
// exit code.
func Run(args []string, build BuildInfo) int {
	if len(args) == 0 {
		printUsage(os.Stderr)
		return 2
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "process":
		return runProcess(rest, build)
	case "monitor":
		return runMonitor(rest, build)
	case "grab":
		return runGrab(rest, build)
	case "logs":
		return runLogs(rest)
	case "engines":
		return runEngines(rest)
	case "help", "--help", "-h":
		printUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		printUsage(os.Stderr)
		return 2
	}
}

func printUsage(out *os.File) {
	fmt.Fprintln(out, "grabtext - extract text from images with OCR")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage: grabtext <command> [flags]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  process <path>   Extract text from an image file or every image in a directory")
	fmt.Fprintln(out, "  monitor <path>   Watch a directory and process new images as they arrive")
	fmt.Fprintln(out, "  grab             Read an image from stdin and extract its text")
	fmt.Fprintln(out, "  logs             Inspect and manage the operational log")
	fmt.Fprintln(out, "  engines          List OCR engines and their availability")
	fmt.Fprintln(out, "  version          Print version information")
	fmt.Fprintln(out, "  help             Show this help message")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Environment variables:")
	fmt.Fprintln(out, "  GRABTEXT_LANG=pt|en    Default recognition language")
	fmt.Fprintln(out, "  GRABTEXT_CONFIG=FILE   Config file location")
	fmt.Fprintln(out, "  GRABTEXT_LOGFILE=FILE  Log file location")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run 'grabtext <command> --help' for command flags.")
}

// parseFlags runs fs over args and converts the outcome to an exit code:
// -1 means continue, anything else should be returned as-is.
func parseFlags(fs *pflag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return -1
}

// newLogger opens the log store and builds a logger that writes to both
// the console and the store. The store level stays at info; --verbose
// only widens the console.
func newLogger(cfg *config.Config) (*slog.Logger, *logstore.Store, error) {
	store, err := logstore.Open(cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}

	consoleLevel := slog.LevelInfo
	if cfg.Verbose {
		consoleLevel = slog.LevelDebug
	}
	handler := logstore.Tee(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      consoleLevel,
			TimeFormat: "15:04:05",
		}),
		logstore.NewHandler(store, slog.LevelInfo),
	)
	return slog.New(handler), store, nil
}

// fail prints err for the user and classifies it into an exit code:
// errors caused by invalid input are 2, operational failures are 1.
func fail(err error) int {
	fmt.Fprintln(os.Stderr, "Error:", err)
	var (
		badLang   *ocr.UnsupportedLanguageError
		badEngine *ocr.UnknownEngineError
		badFormat *export.UnsupportedFormatError
	)
	if errors.As(err, &badLang) || errors.As(err, &badEngine) || errors.As(err, &badFormat) {
		return 2
	}
	return 1
}
