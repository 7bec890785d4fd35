package main

import (
	"errors"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/segheap/heap/alloc"
	"github.com/joshuapare/segheap/internal/logger"
	"github.com/joshuapare/segheap/trace"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <trace>",
		Short: "Replay a trace validating the heap after every operation",
		Long: `The check command replays a trace with payload verification and a full
heap validation after every operation. It stops at the first problem and
prints every violation found in the heap at that point.

Example:
  segheap check short1.rep
  segheap check short1.rep -v     # also dump the final heap`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
}

// CheckReport is the JSON form of a check run.
type CheckReport struct {
	Trace      string      `json:"trace"`
	OK         bool        `json:"ok"`
	Error      string      `json:"error,omitempty"`
	Violations []string    `json:"violations,omitempty"`
	Usage      alloc.Usage `json:"usage"`
}

func runCheck(args []string) error {
	t, err := trace.Load(args[0])
	if err != nil {
		return err
	}

	a, release, err := newAllocator()
	if err != nil {
		return err
	}
	defer release()

	report := CheckReport{Trace: t.Name, OK: true}
	_, rerr := trace.Replay(a, t, trace.ReplayOptions{
		Validate:  true,
		CheckEach: true,
		Logger:    logger.L,
	})
	if rerr != nil {
		report.OK = false
		report.Error = rerr.Error()
		for _, v := range a.Validate() {
			report.Violations = append(report.Violations, v.Error())
		}
	}
	report.Usage = a.Usage()

	if jsonOut {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		printCheckReport(&report)
		if verbose {
			_ = a.Dump(os.Stdout)
		}
	}

	if rerr != nil && !errors.Is(rerr, trace.ErrCorrupt) {
		return rerr
	}
	if !report.OK {
		return errors.New("heap check failed")
	}
	return nil
}

func printCheckReport(r *CheckReport) {
	if r.OK {
		printInfo("%s: ok\n", r.Trace)
	} else {
		printInfo("%s: FAILED: %s\n", r.Trace, r.Error)
		for _, v := range r.Violations {
			printInfo("  %s\n", v)
		}
	}
	u := r.Usage
	printInfo("  region %s, %d allocated blocks (%s), %d free blocks (%s), largest free %s\n",
		humanize.IBytes(uint64(u.RegionBytes)),
		u.AllocBlocks, humanize.IBytes(uint64(u.AllocBytes)),
		u.FreeBlocks, humanize.IBytes(uint64(u.FreeBytes)),
		humanize.IBytes(uint64(u.LargestFree)),
	)
}
