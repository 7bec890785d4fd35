package main

import (
	"errors"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/segheap/heap/alloc"
	"github.com/joshuapare/segheap/internal/logger"
	"github.com/joshuapare/segheap/region"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	logFile string

	// Allocator and region flags
	listCount   int
	growthBytes int
	regionLimit int
	regionKind  string
	regionFile  string
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// numbers formats integers with thousands separators.
var numbers = message.NewPrinter(language.English)

var rootCmd = &cobra.Command{
	Use:   "segheap",
	Short: "Replay allocation traces against a segregated free-list heap",
	Long: `segheap drives the segregated free-list allocator with allocation
traces, reporting space utilization and throughput, and can validate the
heap structure after every operation.`,
	Version:      "0.1.0",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Init(logger.Options{Verbose: verbose, LogFile: logFile})
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Close()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	pf.BoolVar(&jsonOut, "json", false, "Output in JSON format")
	pf.StringVar(&logFile, "log-file", "", "Write JSON logs to this file")

	pf.IntVar(&listCount, "lists", alloc.SegregatedListCount, "Number of segregated free lists")
	pf.IntVar(&growthBytes, "growth", alloc.MinGrowthBytes, "Minimum region growth step in bytes")
	pf.IntVar(&regionLimit, "limit", region.DefaultLimit, "Maximum region size in bytes")
	pf.StringVar(&regionKind, "region", "mem", "Region backing: mem or file")
	pf.StringVar(&regionFile, "file", "", "Backing file for --region file")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newAllocator builds an allocator over a fresh region selected by the
// region flags. The returned func releases the region.
func newAllocator() (*alloc.Allocator, func() error, error) {
	cfg := alloc.DefaultConfig
	cfg.ListCount = listCount
	cfg.GrowthBytes = growthBytes
	cfg.Logger = logger.L
	if listCount != alloc.DefaultConfig.ListCount || growthBytes != alloc.DefaultConfig.GrowthBytes {
		cfg.Name = "Custom"
	}

	var (
		r       region.Region
		release = func() error { return nil }
	)
	switch regionKind {
	case "mem":
		r = region.NewMem(regionLimit)
	case "file":
		if regionFile == "" {
			return nil, nil, errors.New("--region file requires --file")
		}
		f, err := region.OpenFile(regionFile, regionLimit)
		if err != nil {
			return nil, nil, err
		}
		r = f
		release = func() error {
			if err := f.Sync(); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		}
	default:
		return nil, nil, fmt.Errorf("unknown region %q (want mem or file)", regionKind)
	}

	a, err := alloc.New(r, &cfg)
	if err != nil {
		release()
		return nil, nil, err
	}
	return a, release, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		numbers.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as indented JSON
func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(b, '\n'))
	return err
}
