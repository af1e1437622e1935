package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/rouri404/grabtext/internal/config"
	"github.com/rouri404/grabtext/internal/logstore"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "2006-01-02 15:04:05"
)

// parseLogTime accepts a bare date or a full timestamp in local time.
// dayOnly reports that only a date was given, so the caller can decide
// which end of the day it stands for.
func parseLogTime(s string) (t time.Time, dayOnly bool, err error) {
	if t, err = time.ParseInLocation(timeLayout, s, time.Local); err == nil {
		return t, false, nil
	}
	if t, err = time.ParseInLocation(dateLayout, s, time.Local); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, err
}

func runLogs(args []string) int {
	fs := pflag.NewFlagSet("logs", pflag.ContinueOnError)
	fs.String("logfile", "", "log file location (default <user config dir>/grabtext/grabtext.log)")
	tail := fs.IntP("tail", "t", 50, "show the last N entries")
	since := fs.StringP("since", "S", "", "entries at or after DATE (YYYY-MM-DD or \"YYYY-MM-DD HH:MM:SS\")")
	until := fs.StringP("until", "u", "", "entries up to the end of DATE (same layouts)")
	errorsOnly := fs.Bool("errors", false, "only ERROR entries")
	filter := fs.StringP("filter", "f", "", "only entries containing TEXT")
	exportPath := fs.StringP("export", "e", "", "copy the log file verbatim to FILE")
	clear := fs.BoolP("clear", "c", false, "truncate the log file")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: grabtext logs [flags]")
		fmt.Fprintln(os.Stderr)
		fs.PrintDefaults()
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "logs takes no arguments")
		fs.Usage()
		return 2
	}

	query := logstore.Query{ErrorsOnly: *errorsOnly, Contains: *filter, Tail: *tail}
	if *since != "" {
		t, _, err := parseLogTime(*since)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --since value %q, want YYYY-MM-DD or \"YYYY-MM-DD HH:MM:SS\"\n", *since)
			return 2
		}
		query.Since = t
	}
	if *until != "" {
		t, dayOnly, err := parseLogTime(*until)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --until value %q, want YYYY-MM-DD or \"YYYY-MM-DD HH:MM:SS\"\n", *until)
			return 2
		}
		if dayOnly {
			// A bare date means the whole named day, inclusive.
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		query.Until = t
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return fail(err)
	}

	if _, err := os.Stat(cfg.LogFile); os.IsNotExist(err) {
		fmt.Println("No log file found.")
		return 0
	}

	store, err := logstore.Open(cfg.LogFile)
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	switch {
	case *clear:
		if err := store.Clear(); err != nil {
			return fail(err)
		}
		fmt.Println("Log file cleared.")
	case *exportPath != "":
		if err := store.Export(*exportPath); err != nil {
			return fail(err)
		}
		fmt.Printf("Logs exported to %s\n", *exportPath)
	default:
		entries, err := store.Entries(query)
		if err != nil {
			return fail(err)
		}
		for _, e := range entries {
			fmt.Println(e.String())
		}
	}
	return 0
}
