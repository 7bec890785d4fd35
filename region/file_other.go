//go:build !(linux || darwin || freebsd)

package region

import (
	"fmt"
	"os"
)

// File is a Region persisted to a file. Without mmap the bytes live in
// memory and Sync writes them out.
type File struct {
	f   *os.File
	mem *Mem
}

// OpenFile creates (or truncates) the file at path and returns an empty
// region. A limit <= 0 selects DefaultLimit.
func OpenFile(path string, limit int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, err
	}
	return &File{f: f, mem: NewMem(limit)}, nil
}

// Grow implements Region.
func (r *File) Grow(n int) (int, error) {
	if r.f == nil {
		return 0, ErrClosed
	}
	return r.mem.Grow(n)
}

// Bytes implements Region.
func (r *File) Bytes() []byte { return r.mem.Bytes() }

// Len implements Region.
func (r *File) Len() int { return r.mem.Len() }

// Reset implements Region.
func (r *File) Reset() error {
	if r.f == nil {
		return ErrClosed
	}
	if err := r.f.Truncate(0); err != nil {
		return fmt.Errorf("region: truncate file: %w", err)
	}
	return r.mem.Reset()
}

// Sync writes the region contents to the file.
func (r *File) Sync() error {
	if r.f == nil {
		return ErrClosed
	}
	if _, err := r.f.WriteAt(r.mem.Bytes(), 0); err != nil {
		return fmt.Errorf("region: write file: %w", err)
	}
	return r.f.Truncate(int64(r.mem.Len()))
}

// Close syncs and closes the file.
func (r *File) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.Sync()
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	r.f = nil
	return err
}
