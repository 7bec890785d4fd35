package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/segheap/heap/alloc"
	"github.com/joshuapare/segheap/region"
	"github.com/joshuapare/segheap/trace"
)

// resetFlags restores every flag variable to its default.
func resetFlags() {
	verbose, quiet, jsonOut = false, false, false
	logFile = ""
	listCount = alloc.SegregatedListCount
	growthBytes = alloc.MinGrowthBytes
	regionLimit = region.DefaultLimit
	regionKind, regionFile = "mem", ""
	replayCheck = false
	genOpts = trace.DefaultGenOptions
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return string(<-done), fnErr
}

// genTrace writes a small random trace and returns its path.
func genTrace(t *testing.T, seed int64) string {
	t.Helper()
	resetFlags()
	quiet = true
	genOpts = trace.GenOptions{Ops: 1500, IDs: 120, MaxSize: 3000, ReallocRate: 30, Seed: seed}

	path := filepath.Join(t.TempDir(), "gen.rep")
	require.NoError(t, runGen([]string{path}))
	resetFlags()
	return path
}
