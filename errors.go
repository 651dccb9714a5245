// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"github.com/pkg/errors"
)

var (
	// ErrOutOfMemory is returned when a request does not fit in the remaining
	// capacity of a fixed arena. It is the only runtime failure an allocation can report.
	ErrOutOfMemory = errors.New("arena: out of memory")

	// ErrInvalidCapacity is returned at construction time for a negative capacity,
	// or a zero capacity for a backing that cannot reserve an empty region.
	ErrInvalidCapacity = errors.New("arena: invalid capacity")

	// ErrInvalidAlignment is returned at construction time when the maximum
	// alignment is not a power of two.
	ErrInvalidAlignment = errors.New("arena: max alignment must be a power of two")

	// ErrGlobalInitialized is returned by InitGlobal once the process-wide arena exists.
	ErrGlobalInitialized = errors.New("arena: global arena already initialized")

	// ErrOutOfBounds is returned by FixedArena.Bytes for a range outside the buffer.
	ErrOutOfBounds = errors.New("arena: range outside arena buffer")

	errUnsupportedGuard   = errors.New("arena: unsupported guard")
	errUnsupportedBacking = errors.New("arena: unsupported backing")
)
