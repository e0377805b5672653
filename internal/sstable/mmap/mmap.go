// Package mmap memory-maps SSTable data files above a configurable size
// threshold, per spec.md §4.7. Below the threshold callers read the file
// normally; the mapping exists purely to avoid copying large files into
// process memory on open.
package mmap

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// DefaultThreshold is the default mmap threshold (spec.md §4.7).
const DefaultThreshold = 64 * 1024 * 1024

// File is a read-only view over an on-disk SSTable component, either
// memory-mapped (large files) or read wholesale into a byte slice (small
// files). Either way callers see a single []byte and the eviction-safety
// rule spec.md §4.7 requires: decoders copy values out of the slice before
// returning, so unmapping the file after Close never invalidates returned
// data.
type File struct {
	data    []byte
	mapped  bool
	closer  *os.File
}

// Open maps or reads path depending on its size relative to threshold. A
// threshold <= 0 uses DefaultThreshold.
func Open(path string, threshold int64) (*File, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap: stat %s: %w", path, err)
	}
	size := info.Size()
	if size == 0 {
		f.Close()
		return &File{data: nil}, nil
	}
	if size < threshold {
		defer f.Close()
		data := make([]byte, size)
		if _, err := f.ReadAt(data, 0); err != nil {
			return nil, fmt.Errorf("mmap: read %s: %w", path, err)
		}
		return &File{data: data}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap: mmap %s: %w", path, err)
	}
	return &File{data: data, mapped: true, closer: f}, nil
}

// Bytes returns the full file contents. The returned slice is only valid
// until Close; callers must copy out anything that needs to outlive it.
func (f *File) Bytes() []byte { return f.data }

// Close unmaps the file, if it was mapped, and releases the underlying
// descriptor.
func (f *File) Close() error {
	if !f.mapped {
		return nil
	}
	if err := unix.Munmap(f.data); err != nil {
		return fmt.Errorf("mmap: munmap: %w", err)
	}
	return f.closer.Close()
}

// Mapped reports whether this File is backed by an mmap (true) or a
// wholesale in-memory read (false).
func (f *File) Mapped() bool { return f.mapped }
