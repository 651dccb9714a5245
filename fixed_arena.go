// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// FixedArena is a bump allocator over a buffer reserved once at construction.
// Allocations advance an offset and are never freed individually; the only way to
// reclaim space is Reset, which invalidates everything allocated so far.
//
// The buffer never grows. A request that does not fit fails with ErrOutOfMemory
// and leaves the arena untouched.
type FixedArena struct {
	guard    GuardKind
	mu       sync.Locker // nil for GuardNone and GuardLockFree
	maxAlign uintptr
	backing  Backing
	logger   log.Logger

	res      *reservation
	cleanup  runtime.Cleanup
	mapped   bool
	base     unsafe.Pointer
	capacity uintptr

	offset   atomic.Uintptr
	peak     atomic.Uintptr
	allocs   atomic.Uint64
	failures atomic.Uint64
}

var _ Arena = (*FixedArena)(nil)

type fixedArenaOptions struct {
	maxAlign uintptr
	guard    GuardKind
	backing  Backing
	logger   log.Logger
}

// FixedArenaOption represents a configuration option for a fixed arena.
type FixedArenaOption func(*fixedArenaOptions)

// WithMaxAlign sets the alignment of the buffer base, which is also the largest
// alignment a request may ask for. It must be a power of two.
func WithMaxAlign(align int) FixedArenaOption {
	return func(o *fixedArenaOptions) {
		o.maxAlign = uintptr(align)
	}
}

// WithGuard sets the concurrency guard. The default is GuardMutex.
func WithGuard(g GuardKind) FixedArenaOption {
	return func(o *fixedArenaOptions) {
		o.guard = g
	}
}

// WithBacking sets where the buffer is reserved. The default is BackingHeap.
func WithBacking(b Backing) FixedArenaOption {
	return func(o *fixedArenaOptions) {
		o.backing = b
	}
}

// WithLogger sets the logger used for lifecycle and exhaustion events.
func WithLogger(l log.Logger) FixedArenaOption {
	return func(o *fixedArenaOptions) {
		o.logger = l
	}
}

// NewFixedArena reserves capacity bytes and returns an arena serving allocations from them.
func NewFixedArena(capacity int, opts ...FixedArenaOption) (*FixedArena, error) {
	o := fixedArenaOptions{
		maxAlign: DefaultMaxAlign,
		guard:    GuardMutex,
		backing:  BackingHeap,
		logger:   log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if capacity < 0 {
		return nil, ErrInvalidCapacity
	}
	if !isPowerOfTwo(o.maxAlign) {
		return nil, ErrInvalidAlignment
	}
	mu, err := o.guard.locker()
	if err != nil {
		return nil, errors.Wrapf(err, "guard %q", o.guard)
	}
	res, err := reserve(o.backing, uintptr(capacity), o.maxAlign)
	if err != nil {
		return nil, errors.Wrapf(err, "reserve %s arena buffer", o.backing)
	}

	a := &FixedArena{
		guard:    o.guard,
		mu:       mu,
		maxAlign: o.maxAlign,
		backing:  o.backing,
		logger:   o.logger,
		res:      res,
		base:     res.base,
		capacity: uintptr(capacity),
	}
	if o.backing == BackingMmap {
		// A mapping is invisible to the garbage collector, unmap it if the arena is
		// dropped without Release.
		a.mapped = true
		a.cleanup = runtime.AddCleanup(a, func(r *reservation) { _ = r.free() }, res)
	}
	level.Debug(a.logger).Log(
		"msg", "reserved arena buffer",
		"capacity", humanize.IBytes(uint64(capacity)),
		"max_align", o.maxAlign,
		"guard", o.guard,
		"backing", o.backing,
	)
	return a, nil
}

// NewFixedArenaFromConfig validates cfg and builds the arena it describes.
func NewFixedArenaFromConfig(cfg Config, logger log.Logger) (*FixedArena, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return NewFixedArena(int(cfg.CapacityBytes),
		WithMaxAlign(cfg.MaxAlignment),
		WithGuard(cfg.Guard),
		WithBacking(cfg.Backing),
		WithLogger(logger),
	)
}

// TryAlloc returns a pointer to size zeroed bytes whose address is a multiple of align.
// It fails with ErrOutOfMemory when the aligned request does not fit in the remaining capacity.
//
// Zero sized requests succeed without consuming capacity; the returned pointer
// must not be dereferenced. align must be a power of two no larger than the
// arena's maximum alignment, otherwise TryAlloc panics.
func (a *FixedArena) TryAlloc(size, alignment uintptr) (unsafe.Pointer, error) {
	if !isPowerOfTwo(alignment) || alignment > a.maxAlign {
		panic(fmt.Sprintf("arena: alignment %d is not a power of two up to %d", alignment, a.maxAlign))
	}

	var (
		start uintptr
		ok    bool
	)
	switch {
	case a.mu != nil:
		a.mu.Lock()
		start, ok = a.bump(size, alignment)
		a.mu.Unlock()
	case a.guard == GuardLockFree:
		start, ok = a.bumpCAS(size, alignment)
	default:
		start, ok = a.bump(size, alignment)
	}

	if !ok {
		a.failures.Inc()
		level.Debug(a.logger).Log(
			"msg", "arena exhausted",
			"size", size,
			"align", alignment,
			"used", a.offset.Load(),
			"capacity", a.capacity,
		)
		return nil, ErrOutOfMemory
	}

	ptr := unsafe.Add(a.base, start)
	if size > 0 {
		// The range is exclusively ours once committed, so it is cleared outside the guard.
		clear(unsafe.Slice((*byte)(ptr), size))
	}
	return ptr, nil
}

// Alloc satisfies the Arena interface. It returns nil instead of ErrOutOfMemory.
func (a *FixedArena) Alloc(size, alignment uintptr) unsafe.Pointer {
	ptr, err := a.TryAlloc(size, alignment)
	if err != nil {
		return nil
	}
	return ptr
}

// bump performs the allocate-decide-commit sequence. Callers hold the guard, if any.
func (a *FixedArena) bump(size, alignment uintptr) (uintptr, bool) {
	if a.base == nil {
		return 0, false
	}
	offset := a.offset.Load()
	if size == 0 {
		return a.zeroSizedOffset(offset, alignment), true
	}
	start, end, ok := nextRange(offset, size, alignment, a.capacity)
	if !ok {
		return 0, false
	}
	a.offset.Store(end)
	a.commitStats(end)
	return start, true
}

// bumpCAS is bump for GuardLockFree. The computed range is only used when the
// offset it was derived from is still current at commit time.
func (a *FixedArena) bumpCAS(size, alignment uintptr) (uintptr, bool) {
	if a.base == nil {
		return 0, false
	}
	for {
		offset := a.offset.Load()
		if size == 0 {
			return a.zeroSizedOffset(offset, alignment), true
		}
		start, end, ok := nextRange(offset, size, alignment, a.capacity)
		if !ok {
			return 0, false
		}
		if a.offset.CompareAndSwap(offset, end) {
			a.commitStats(end)
			return start, true
		}
	}
}

// zeroSizedOffset picks an in-bounds, aligned offset for an empty region.
// The base itself qualifies whenever the aligned offset is at or past the end.
func (a *FixedArena) zeroSizedOffset(offset, alignment uintptr) uintptr {
	start, ok := alignUp(offset, alignment)
	if !ok || start >= a.capacity {
		return 0
	}
	return start
}

func (a *FixedArena) commitStats(end uintptr) {
	a.allocs.Inc()
	for {
		peak := a.peak.Load()
		if end <= peak || a.peak.CompareAndSwap(peak, end) {
			return
		}
	}
}

// Dealloc is a no-op. Memory is reclaimed only by Reset or Release,
// so any pointer and size, valid or not, is accepted and ignored.
func (a *FixedArena) Dealloc(_ unsafe.Pointer, _ uintptr) {}

// Reset satisfies the Arena interface.
// It must not be called while memory returned by the arena is still in use.
func (a *FixedArena) Reset() {
	if a.mu != nil {
		a.mu.Lock()
		defer a.mu.Unlock()
	}
	a.offset.Store(0)
}

// Release satisfies the Arena interface. The buffer is dropped or unmapped and
// every later request fails with ErrOutOfMemory. Calling Release twice is a no-op.
func (a *FixedArena) Release() {
	if err := a.Close(); err != nil {
		level.Warn(a.logger).Log("msg", "failed to release arena buffer", "backing", a.backing, "err", err)
	}
}

// Close is Release reporting the error returned by the backing, if any.
func (a *FixedArena) Close() error {
	if a.mu != nil {
		a.mu.Lock()
		defer a.mu.Unlock()
	}
	if a.res == nil {
		return nil
	}
	res := a.res
	a.res = nil
	a.base = nil
	a.capacity = 0
	a.offset.Store(0)
	if a.mapped {
		a.cleanup.Stop()
	}
	return res.free()
}

// Bytes returns the n bytes starting at ptr as a slice, provided the whole range
// lies inside the arena buffer.
func (a *FixedArena) Bytes(ptr unsafe.Pointer, n int) ([]byte, error) {
	if a.base == nil || ptr == nil || n < 0 {
		return nil, ErrOutOfBounds
	}
	off := uintptr(ptr) - uintptr(a.base)
	if uintptr(ptr) < uintptr(a.base) || off > a.capacity || uintptr(n) > a.capacity-off {
		return nil, ErrOutOfBounds
	}
	return unsafe.Slice((*byte)(ptr), n), nil
}

// Len returns the current offset, padding included.
func (a *FixedArena) Len() int {
	return int(a.offset.Load())
}

// Cap returns the capacity reserved at construction, or 0 once released.
func (a *FixedArena) Cap() int {
	if a.mu != nil {
		a.mu.Lock()
		defer a.mu.Unlock()
	}
	return int(a.capacity)
}

// Peak returns the highest offset reached. It survives Reset.
func (a *FixedArena) Peak() int {
	return int(a.peak.Load())
}

// MaxAlign returns the largest alignment a request may ask for.
func (a *FixedArena) MaxAlign() int {
	return int(a.maxAlign)
}

// Guard returns the concurrency guard the arena was built with.
func (a *FixedArena) Guard() GuardKind {
	return a.guard
}

// Stats is a point in time snapshot of a FixedArena.
type Stats struct {
	Used        uint64 // current offset in bytes
	Capacity    uint64
	Peak        uint64
	Allocations uint64 // successful non-empty allocations
	Failures    uint64 // requests rejected with ErrOutOfMemory
}

// Stats returns a snapshot of the arena counters.
func (a *FixedArena) Stats() Stats {
	return Stats{
		Used:        uint64(a.Len()),
		Capacity:    uint64(a.Cap()),
		Peak:        uint64(a.Peak()),
		Allocations: a.allocs.Load(),
		Failures:    a.failures.Load(),
	}
}
