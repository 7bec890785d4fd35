package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/segheap/internal/logger"
	"github.com/joshuapare/segheap/trace"
)

var replayCheck bool

func init() {
	cmd := newReplayCmd()
	cmd.Flags().BoolVar(&replayCheck, "check", false, "Verify payloads and validate the heap after every operation")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <trace>...",
		Short: "Replay traces and report utilization and throughput",
		Long: `The replay command runs each trace on a fresh allocator and reports
peak payload bytes, final region size, space utilization and throughput.

Example:
  segheap replay traces/*.rep
  segheap replay --check --lists 12 short1.rep
  segheap replay --region file --file /tmp/heap.bin big.rep --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(args)
		},
	}
}

// ReplayReport is the JSON form of a replay run.
type ReplayReport struct {
	Config       string          `json:"config"`
	Region       string          `json:"region"`
	Results      []*trace.Result `json:"results"`
	TotalOps     int             `json:"total_ops"`
	MeanUtil     float64         `json:"mean_utilization"`
	TotalTime    time.Duration   `json:"total_elapsed_ns"`
	OpsPerSecond float64         `json:"ops_per_second"`
}

func runReplay(args []string) error {
	report := ReplayReport{Region: regionKind}
	for _, path := range args {
		printVerbose("Loading trace: %s\n", path)
		t, err := trace.Load(path)
		if err != nil {
			return err
		}

		res, cfgName, err := replayOne(t, trace.ReplayOptions{
			Validate:  replayCheck,
			CheckEach: replayCheck,
			Logger:    logger.L,
		})
		if err != nil {
			return err
		}
		report.Config = cfgName
		report.Results = append(report.Results, res)
		report.TotalOps += res.Ops
		report.MeanUtil += res.Utilization
		report.TotalTime += res.Elapsed
	}
	report.MeanUtil /= float64(len(report.Results))
	if secs := report.TotalTime.Seconds(); secs > 0 {
		report.OpsPerSecond = float64(report.TotalOps) / secs
	}

	if jsonOut {
		return printJSON(report)
	}
	printReplayReport(&report)
	return nil
}

// replayOne runs t on a fresh allocator and returns its result and config name.
func replayOne(t *trace.Trace, opts trace.ReplayOptions) (*trace.Result, string, error) {
	a, release, err := newAllocator()
	if err != nil {
		return nil, "", err
	}
	res, err := trace.Replay(a, t, opts)
	if rerr := release(); err == nil && rerr != nil {
		err = fmt.Errorf("release region: %w", rerr)
	}
	if err != nil {
		return nil, "", err
	}
	logger.Info("trace replayed", "trace", t.Name, "ops", res.Ops, "util", res.Utilization)
	return res, a.Config().Name, nil
}

func printReplayReport(r *ReplayReport) {
	printInfo("\nReplay (%s config, %s region):\n", r.Config, r.Region)
	printInfo("  %-20s %10s %12s %10s %7s %14s\n", "trace", "ops", "peak", "region", "util", "ops/sec")
	for _, res := range r.Results {
		printInfo("  %-20s %10d %12s %10s %6.1f%% %14.0f\n",
			res.Trace,
			res.Ops,
			humanize.IBytes(uint64(res.PeakPayload)),
			humanize.IBytes(uint64(res.RegionBytes)),
			100*res.Utilization,
			res.OpsPerSecond,
		)
		if verbose {
			st := res.Stats
			printInfo("  %-20s grows %d (%s), misses %d, splits %d, coalesce fwd %d back %d, realloc in-place %d/%d copy %d\n",
				"",
				st.GrowCalls, humanize.IBytes(uint64(st.GrowBytes)), st.FitMisses, st.SplitCount,
				st.CoalesceForward, st.CoalesceBackward,
				st.ReallocShrink, st.ReallocGrowInPlace, st.ReallocCopy,
			)
		}
	}
	printInfo("\n  Total: %d ops, mean utilization %.1f%%, %.0f ops/sec\n",
		r.TotalOps, 100*r.MeanUtil, r.OpsPerSecond)
}
