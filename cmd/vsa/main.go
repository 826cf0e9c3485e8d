// Command vsa is the analysis driver: it loads a serialized program,
// optionally runs the abstract interpreter over it, and reports the
// warnings the core accumulated along the way.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "vsa",
		Short:         "Value Set Analysis for 32-bit x86 binaries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCommand())
	root.AddCommand(newDumpCFGCommand())
	return root
}

// levelForVerbosity maps a 0-4 --dlev/--alev slider onto a slog.Level,
// following core/util.go's habit of widening the logged level as the
// debug slider increases.
func levelForVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	default:
		return slog.LevelDebug - slog.Level(v-2)
	}
}
