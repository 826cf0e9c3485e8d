package main

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vsax86/absstate"
	"github.com/sarchlab/vsax86/config"
	"github.com/sarchlab/vsax86/interp"
	"github.com/sarchlab/vsax86/interval"
	"github.com/sarchlab/vsax86/persist"
	"github.com/sarchlab/vsax86/warning"
)

type analyzeFlags struct {
	cfgFile    string
	interpret  bool
	intraproc  bool
	function   string
	dlev, alev int
	warnsFile  string
	timeoutSec int
	cacheDB    string
	httpAddr   string
}

func newAnalyzeCommand() *cobra.Command {
	var f analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the abstract interpreter (or just dump the CFG) over a serialized program",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.cfgFile, "cfg", "", "serialized program file (required)")
	flags.BoolVar(&f.interpret, "interpret", false, "run the abstract interpreter (otherwise only dump the CFG)")
	flags.BoolVar(&f.intraproc, "intraproc", false, "disable interprocedural call handling")
	flags.StringVar(&f.function, "function", "", "start analysis at this function address (hex); default is the program's entry point")
	flags.IntVar(&f.dlev, "dlev", 0, "debug verbosity (0-4)")
	flags.IntVar(&f.alev, "alev", 0, "assert verbosity (0-4)")
	flags.StringVar(&f.warnsFile, "warns", "", "write serialized warnings to this file")
	flags.IntVar(&f.timeoutSec, "timeout", 0, "abort after N seconds (0 = no limit)")
	flags.StringVar(&f.cacheDB, "cache-db", "", "SQLite file tracking hash-cons cache sizes across runs")
	flags.StringVar(&f.httpAddr, "http", "", "serve accumulated warnings as JSON on this address (e.g. :8080)")
	cmd.MarkFlagRequired("cfg")

	return cmd
}

func runAnalyze(f analyzeFlags) error {
	slog.SetLogLoggerLevel(levelForVerbosity(f.dlev))

	prog, err := loadProgram(f.cfgFile)
	if err != nil {
		return err
	}
	entry, err := entryOrDefault(prog, f.function)
	if err != nil {
		return err
	}

	cfg := config.NewBuilder().WithIntraproc(f.intraproc).WithLevels(f.dlev, f.alev).Build()
	warnings := warning.NewSet()

	if f.httpAddr != "" {
		server := warning.NewServer(warnings)
		go func() {
			if err := server.ListenAndServe(f.httpAddr); err != nil {
				slog.Error("warning http server stopped", "error", err)
			}
		}()
	}

	var cache *persist.StatsCache
	if f.cacheDB != "" {
		cache, err = persist.OpenStatsCache(f.cacheDB)
		if err != nil {
			return err
		}
		defer cache.Close()
	}

	if !f.interpret {
		return dumpCFGFor(prog, entry)
	}

	caches := absstate.NewCaches()
	it := interp.NewBuilder().WithLoader(prog).WithConfig(cfg).WithWarnings(warnings).WithCaches(caches).Build()

	var final absstate.State
	runWithTimeout(time.Duration(f.timeoutSec)*time.Second, func() {
		final = it.Run(entry, 0x7ffff000, 1, 0x7ffff800, 0)
	})

	if cache != nil {
		hash, err := hashFile(f.cfgFile)
		if err != nil {
			return err
		}
		err = cache.Record(hash, time.Now().Unix(),
			interval.GlobalCacheSize(), len(final.RegionIDs()), caches.TreeCacheSize())
		if err != nil {
			return err
		}
	}

	if f.warnsFile != "" {
		if err := writeWarnings(f.warnsFile, it.Warnings()); err != nil {
			return err
		}
	}

	slog.Info("analysis complete", "warnings", it.Warnings().Len())
	return nil
}

// hashFile returns a hex-encoded content hash of path, used as the
// stats cache's binary_hash key so cache-size history survives the
// file being moved or renamed between runs.
func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func writeWarnings(path string, set *warning.Set) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return persist.Write(out, set.All())
}
