package cache

import "sync"

// DefaultWindowSize is the default prefetch window (spec.md §4.7).
const DefaultWindowSize = 256 * 1024

// Reader is the minimal file-reading surface the prefetch buffer needs.
// Implemented by the SSTable reader's underlying data-file handle.
type Reader interface {
	ReadAt(offset int64, length int) ([]byte, error)
}

// Buffer is a single-window linear read-ahead cache. It remembers the last
// window read; a request falling inside that window is served directly,
// and a request immediately following it (sequential access) triggers an
// asynchronous load of the next window. Prefetch is best-effort: a failed
// background load is dropped silently and never fails the triggering
// request (spec.md §4.7).
type Buffer struct {
	mu         sync.Mutex
	r          Reader
	windowSize int64
	winStart   int64
	winData    []byte
	pending    bool
}

// NewBuffer creates a prefetch buffer over r with the given window size. A
// windowSize <= 0 uses DefaultWindowSize.
func NewBuffer(r Reader, windowSize int64) *Buffer {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &Buffer{r: r, windowSize: windowSize, winStart: -1}
}

// Read satisfies [offset, offset+length) from the current window if it
// fits entirely inside it, otherwise reads directly from r and, if the
// request looks sequential (starts where the current window ends), kicks
// off an asynchronous load of the next window.
func (b *Buffer) Read(offset int64, length int) ([]byte, error) {
	b.mu.Lock()
	if b.winStart >= 0 && offset >= b.winStart && offset+int64(length) <= b.winStart+int64(len(b.winData)) {
		start := offset - b.winStart
		out := make([]byte, length)
		copy(out, b.winData[start:start+int64(length)])
		b.mu.Unlock()
		return out, nil
	}
	sequential := b.winStart >= 0 && offset == b.winStart+int64(len(b.winData))
	b.mu.Unlock()

	data, err := b.r.ReadAt(offset, length)
	if err != nil {
		return nil, err
	}

	if sequential {
		b.triggerPrefetch(offset + int64(length))
	} else {
		b.loadWindow(offset)
	}
	return data, nil
}

func (b *Buffer) loadWindow(start int64) {
	data, err := b.r.ReadAt(start, int(b.windowSize))
	if err != nil {
		return // best-effort: leave the window empty
	}
	b.mu.Lock()
	b.winStart = start
	b.winData = data
	b.mu.Unlock()
}

// triggerPrefetch loads the next window in the background. A prefetch
// already in flight is skipped rather than queued; the next sequential
// read will retry once it finishes. A failed load simply leaves the
// window unchanged (spec.md §4.7: prefetch is best-effort).
func (b *Buffer) triggerPrefetch(start int64) {
	if !b.markPending() {
		return
	}
	go func() {
		defer b.clearPending()
		b.loadWindow(start)
	}()
}

func (b *Buffer) markPending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending {
		return false
	}
	b.pending = true
	return true
}

func (b *Buffer) clearPending() {
	b.mu.Lock()
	b.pending = false
	b.mu.Unlock()
}
