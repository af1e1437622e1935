package cli

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/rouri404/grabtext/internal/ocr"
)

func runEngines(args []string) int {
	fs := pflag.NewFlagSet("engines", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: grabtext engines")
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	for _, info := range ocr.DefaultManager().Info() {
		if info.Available {
			fmt.Printf("%-12s available\n", info.Name)
		} else {
			fmt.Printf("%-12s unavailable (%s)\n", info.Name, info.Detail)
		}
	}
	return 0
}
