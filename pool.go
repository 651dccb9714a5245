// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"sync"
	"weak"

	"github.com/alecthomas/units"
)

const (
	defaultPoolCapacity = int(1 * units.Mebibyte)
	minPoolCapacity     = int(4 * units.Kibibyte)
	poolSizeWindow      = 50
)

// Pool provides a thread-safe pool of fixed arenas for request-scoped allocations.
// A request acquires an arena, allocates from it, and releases it at scope exit,
// which resets the arena for the next request.
//
// Released items are stored as weak pointers, so the GC can collect idle arenas
// at any time. Before handing out an item the pool tries to get a strong pointer
// to it, skipping the ones that were collected.
//
// Since arenas never grow, the pool learns how much each key needs: it records the
// usage observed at every release and sizes new arenas for that key from the average.
type Pool struct {
	pool  []weak.Pointer[PoolItem]
	sizes map[uint64]*arenaPoolItemSize
	mu    sync.Mutex

	defaultCapacity int
	opts            []FixedArenaOption
}

// arenaPoolItemSize tracks the required memory across the last poolSizeWindow releases of a key.
type arenaPoolItemSize struct {
	count      int
	totalBytes int
}

// PoolItem wraps a FixedArena for use in the pool.
type PoolItem struct {
	Arena *FixedArena
	Key   uint64

	failures uint64 // arena failures when acquired
}

// NewArenaPool creates a new Pool. Arenas for keys without history reserve
// defaultCapacity bytes, or 1MiB if defaultCapacity is not positive.
// Options are applied to every arena the pool creates; pooled arenas default to
// GuardNone as a request owns its arena exclusively.
func NewArenaPool(defaultCapacity int, opts ...FixedArenaOption) *Pool {
	if defaultCapacity <= 0 {
		defaultCapacity = defaultPoolCapacity
	}
	return &Pool{
		sizes:           make(map[uint64]*arenaPoolItemSize),
		defaultCapacity: defaultCapacity,
		opts:            append([]FixedArenaOption{WithGuard(GuardNone)}, opts...),
	}
}

// Acquire gets an arena large enough for key from the pool or creates a new one.
// The key is used to track arena sizes per use case.
func (p *Pool) Acquire(key uint64) (*PoolItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	want := p.getArenaSize(key)
	for i := len(p.pool) - 1; i >= 0; i-- {
		v := p.pool[i].Value()
		if v == nil {
			// Collected by the GC.
			p.pool = append(p.pool[:i], p.pool[i+1:]...)
			continue
		}
		if v.Arena.Cap() < want {
			continue
		}
		p.pool = append(p.pool[:i], p.pool[i+1:]...)
		v.Key = key
		v.failures = v.Arena.Stats().Failures
		return v, nil
	}

	a, err := NewFixedArena(want, p.opts...)
	if err != nil {
		return nil, err
	}
	return &PoolItem{Arena: a, Key: key}, nil
}

// Release returns an arena to the pool for reuse.
// The usage is recorded to size future arenas for this use case.
func (p *Pool) Release(item *PoolItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.release(item)
}

// ReleaseMany returns several arenas to the pool under a single lock acquisition.
func (p *Pool) ReleaseMany(items []*PoolItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, item := range items {
		p.release(item)
	}
}

func (p *Pool) release(item *PoolItem) {
	used := item.Arena.Len()
	if item.Arena.Stats().Failures > item.failures {
		// The arena was too small for this use, ask for twice its capacity next time.
		used = 2 * item.Arena.Cap()
	}
	item.Arena.Reset()

	if size, ok := p.sizes[item.Key]; ok {
		if size.count == poolSizeWindow {
			size.count = 1
			size.totalBytes = size.totalBytes / poolSizeWindow
		}
		size.count++
		size.totalBytes += used
	} else {
		p.sizes[item.Key] = &arenaPoolItemSize{
			count:      1,
			totalBytes: used,
		}
	}

	item.Key = 0
	p.pool = append(p.pool, weak.Make(item))
}

// getArenaSize returns the capacity to reserve for a given use case key.
func (p *Pool) getArenaSize(key uint64) int {
	size, ok := p.sizes[key]
	if !ok {
		return p.defaultCapacity
	}
	return max(size.totalBytes/size.count, minPoolCapacity)
}
