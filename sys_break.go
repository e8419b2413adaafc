package mallocator

import (
	"fmt"
	"unsafe"
)

// defaultBreakArenaSize is the size of the single anonymous mapping an
// Allocator reserves to emulate the process break. Anonymous pages
// are demand-zero on Unix and only cost address space, not physical
// memory, until touched, so reserving generously up front is cheap
// and lets requestBreak behave like a real sbrk: a pointer bump, no
// syscall, until the reservation itself is exhausted.
const defaultBreakArenaSize = 1 << 30 // 1 GiB

// breakArena emulates the heap-break extension service described in
// spec.md §6. A real brk(2) is a single process-wide resource, which
// fits the original C allocator's single global heap but not a Go
// type meant to be instantiated more than once per process; each
// Allocator therefore gets its own private, reserve-once arena and
// "extends the break" by bumping committed within it.
type breakArena struct {
	region    []byte  // backing anonymous mapping, nil until first touched
	base      uintptr // address of region[0]
	committed uintptr // bytes of region already handed out
	capacity  uintptr // len(region)
}

func (b *breakArena) ensureMapped(capacity uintptr) error {
	if b.region != nil {
		return nil
	}
	region, err := mapAnon(int(capacity))
	if err != nil {
		return fmt.Errorf("mallocator: reserving break arena: %w", err)
	}
	b.region = region
	b.base = uintptr(unsafe.Pointer(&region[0]))
	b.capacity = capacity
	return nil
}

// currentBreak reports the address one past the last byte handed out,
// i.e. where the next extension would begin. It is used by the
// integrity checker to bound break-region blocks (spec.md §4.4).
func (b *breakArena) currentBreak() uintptr {
	return b.base + b.committed
}

// extend grows the committed region by n bytes, rounded up by the
// caller to the page size, and returns the address the new region
// starts at. It fails once the reservation is exhausted; spec.md
// treats that identically to a real sbrk/mmap refusal.
func (b *breakArena) extend(n uintptr) (uintptr, error) {
	capacity := b.capacity
	if capacity == 0 {
		capacity = defaultBreakArenaSize
	}
	if err := b.ensureMapped(capacity); err != nil {
		return 0, err
	}
	if b.committed+n > b.capacity {
		return 0, fmt.Errorf("mallocator: break arena exhausted (%d of %d bytes used)", b.committed, b.capacity)
	}
	addr := b.base + b.committed
	b.committed += n
	return addr, nil
}

// close releases the arena's backing mapping. It is not part of the
// spec's public contract (break memory is never returned to the OS
// while blocks inside it exist); it exists so tests don't leak real
// mappings across hundreds of Allocator instances.
func (b *breakArena) close() error {
	if b.region == nil {
		return nil
	}
	err := unmapAnon(unsafe.Pointer(b.base), int(b.capacity))
	*b = breakArena{}
	return err
}
