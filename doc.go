// SPDX-License-Identifier: Apache-2.0

// Package arena implements a fixed-capacity bump allocator.
//
// A FixedArena reserves one buffer up front and serves every request by advancing
// an offset into it. Individual allocations are never freed; the whole arena is
// reclaimed at once with Reset, or dropped with Release. A request that does not
// fit fails and leaves the arena unchanged.
//
// Two surfaces expose the same engine:
//
//   - Arena, Alloc and Dealloc report exhaustion with a nil pointer. The package
//     level Alloc and Dealloc route to a process-wide arena guarded by a spin lock.
//   - Allocator and Handle report exhaustion with ErrOutOfMemory and are passed
//     explicitly to containers such as Vec, Buffer and SliceAppend.
//
// Memory handed out by an arena is only valid while the arena is reachable and
// has not been reset or released. Values stored in it must not hold the only
// reference to Go heap memory, since the garbage collector does not scan arena buffers.
package arena
