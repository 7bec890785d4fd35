//go:build linux || darwin || freebsd

package region

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// File is a Region backed by a shared memory mapping of a file.
type File struct {
	f     *os.File
	data  []byte
	size  int
	limit int
}

// OpenFile creates (or truncates) the file at path and returns an empty
// region mapped onto it. A limit <= 0 selects DefaultLimit.
func OpenFile(path string, limit int) (*File, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, err
	}
	return &File{f: f, limit: limit}, nil
}

// Grow implements Region by extending the file and remapping it.
// The new bytes are zero-filled by the OS.
func (r *File) Grow(n int) (int, error) {
	if r.f == nil {
		return 0, ErrClosed
	}
	if n < 0 {
		return 0, ErrBadGrow
	}
	old := r.size
	if n > r.limit-old {
		return 0, fmt.Errorf("%w: len=%d grow=%d limit=%d", ErrLimit, old, n, r.limit)
	}
	if n == 0 {
		return old, nil
	}
	if err := r.remap(old + n); err != nil {
		return 0, err
	}
	return old, nil
}

// remap resizes the file to newSize and maps it again. On failure the old
// mapping is restored so the region stays usable.
func (r *File) remap(newSize int) error {
	if r.data != nil {
		if err := unix.Munmap(r.data); err != nil {
			return fmt.Errorf("region: unmap before grow: %w", err)
		}
		r.data = nil
	}

	if err := unix.Ftruncate(int(r.f.Fd()), int64(newSize)); err != nil {
		_ = r.mapSize(r.size)
		return fmt.Errorf("region: truncate file: %w", err)
	}

	if err := r.mapSize(newSize); err != nil {
		_ = unix.Ftruncate(int(r.f.Fd()), int64(r.size))
		_ = r.mapSize(r.size)
		return fmt.Errorf("region: remap after grow: %w", err)
	}
	r.size = newSize
	return nil
}

func (r *File) mapSize(size int) error {
	if size == 0 {
		r.data = nil
		return nil
	}
	data, err := unix.Mmap(
		int(r.f.Fd()),
		0,
		size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED,
	)
	if err != nil {
		return err
	}
	r.data = data
	return nil
}

// Bytes implements Region.
func (r *File) Bytes() []byte { return r.data }

// Len implements Region.
func (r *File) Len() int { return r.size }

// Reset implements Region by truncating the file to zero.
func (r *File) Reset() error {
	if r.f == nil {
		return ErrClosed
	}
	if r.data != nil {
		if err := unix.Munmap(r.data); err != nil {
			return fmt.Errorf("region: unmap before reset: %w", err)
		}
		r.data = nil
	}
	if err := unix.Ftruncate(int(r.f.Fd()), 0); err != nil {
		return fmt.Errorf("region: truncate file: %w", err)
	}
	r.size = 0
	return nil
}

// Sync flushes the mapped bytes to the file.
func (r *File) Sync() error {
	if r.f == nil {
		return ErrClosed
	}
	if r.data == nil {
		return nil
	}
	return unix.Msync(r.data, unix.MS_SYNC)
}

// Close unmaps the region and closes the file. The file keeps its contents.
func (r *File) Close() error {
	if r.f == nil {
		return nil
	}
	var err error
	if r.data != nil {
		err = unix.Munmap(r.data)
		r.data = nil
	}
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	r.f = nil
	return err
}
