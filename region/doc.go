// Package region provides the growable byte regions a heap allocator manages.
//
// # Overview
//
// A Region is a single contiguous span of bytes that only ever grows at its
// end. It is the low-level "extend the break pointer" service: the allocator
// asks for n more bytes and receives the offset where the new span starts.
// The region never shrinks on its own; Reset drops everything at once.
//
// # Implementations
//
// Mem: slice-backed region with a hard size limit, the default for tests and
// trace replay.
//
// File: region backed by a memory-mapped file. Growth truncates the file
// larger and remaps it, so the contents survive the process and can be
// inspected after a run.
//
// # Addressing
//
// Callers hold offsets, never slices. Bytes returns the current contents and
// any slice obtained from it is invalidated by the next Grow or Reset.
//
// # Thread Safety
//
// Regions are not thread-safe. The allocator that owns a region serializes
// all access.
package region
