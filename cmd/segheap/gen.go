package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/segheap/trace"
)

var genOpts = trace.DefaultGenOptions

func init() {
	cmd := newGenCmd()
	f := cmd.Flags()
	f.IntVar(&genOpts.Ops, "ops", trace.DefaultGenOptions.Ops, "Number of operations")
	f.IntVar(&genOpts.IDs, "ids", trace.DefaultGenOptions.IDs, "Number of distinct block ids")
	f.IntVar(&genOpts.MaxSize, "max-size", trace.DefaultGenOptions.MaxSize, "Largest request size in bytes")
	f.IntVar(&genOpts.ReallocRate, "realloc-rate", trace.DefaultGenOptions.ReallocRate, "Percent of non-alloc steps that reallocate")
	f.Int64Var(&genOpts.Seed, "seed", trace.DefaultGenOptions.Seed, "Random seed")
	rootCmd.AddCommand(cmd)
}

func newGenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen <out>",
		Short: "Generate a random trace",
		Long: `The gen command writes a random but valid trace: every realloc and free
refers to a live id, and the trace ends with all ids freed.

Example:
  segheap gen --ops 10000 --ids 1000 --max-size 65536 --seed 7 random.rep`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(args)
		},
	}
}

func runGen(args []string) error {
	t, err := trace.Generate(genOpts)
	if err != nil {
		return err
	}
	if err := t.Save(args[0]); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"path":           args[0],
			"ops":            len(t.Ops),
			"ids":            t.NumIDs,
			"suggested_heap": t.SuggestedHeap,
			"seed":           genOpts.Seed,
		})
	}
	printInfo("Wrote %s: %d ops over %d ids, peak live payload %s\n",
		args[0], len(t.Ops), t.NumIDs, humanize.IBytes(uint64(t.SuggestedHeap)))
	return nil
}
