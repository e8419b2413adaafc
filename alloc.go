package mallocator

import (
	"sync"
	"unsafe"
)

// Allocator allocates and frees memory, serializing every operation
// on a single mutex. Its zero value is ready for use; there is no
// package-level global, so a process that wants one process-wide
// allocator keeps its own `var global Allocator`, and a process that
// wants several independent heaps (as in tests) just declares several.
type Allocator struct {
	mu    sync.Mutex
	head  *block
	tail  *block
	arena breakArena
}

// Option configures an Allocator at construction time.
type Option func(*Allocator)

// WithBreakArenaSize overrides the size of the single reservation an
// Allocator emulates its break region with. It exists for tests that
// want to exercise break exhaustion without reserving a full
// defaultBreakArenaSize; production callers should leave it unset.
func WithBreakArenaSize(n int) Option {
	return func(a *Allocator) {
		a.arena.capacity = uintptr(n)
	}
}

// New returns a ready-to-use Allocator. Calling New is equivalent to
// declaring a zero-value Allocator except when options are supplied.
func New(opts ...Option) *Allocator {
	a := &Allocator{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// allocBlock is Alloc's logic below the public API and the mutex:
// best-fit search, optional split, or a fresh request.
func (a *Allocator) allocBlock(size uintptr) (*block, error) {
	if b := a.findBestFit(size); b != nil {
		if b.size >= size+minBlockSize {
			a.split(b, size)
		}
		b.magic = allocMagic
		b.free = false
		return b, nil
	}
	return a.requestSpace(size)
}

// alignedRequest aligns n to the machine alignment and reports
// ErrInvalidSize instead of overflowing, per spec.md §4.1.
func alignedRequest(n uint) (uintptr, error) {
	un := uintptr(n)
	maxAlignable := ^uintptr(0) - (alignment - 1)
	if un > maxAlignable {
		return 0, ErrInvalidSize
	}
	aligned := alignUp(un, alignment)
	if aligned > ^uintptr(0)-headerSize-footerSize {
		return 0, ErrInvalidSize
	}
	return aligned, nil
}

// bytesFor wraps b's payload in a []byte of the given user-visible
// length, with capacity equal to the block's full (possibly larger,
// due to rounding or best-fit slack) payload size.
func bytesFor(b *block, userLen uintptr) []byte {
	full := unsafe.Slice((*byte)(b.payload()), int(b.size))
	return full[:userLen:b.size]
}

// Alloc returns a slice of at least n writable, A-aligned bytes. It
// returns (nil, nil) for n == 0, and (nil, ErrInvalidSize) if n would
// overflow when combined with block metadata. A non-nil error
// otherwise means the break or mmap service refused the request.
func (a *Allocator) Alloc(n uint) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.check()
	defer a.check()

	if n == 0 {
		return nil, nil
	}

	aligned, err := alignedRequest(n)
	if err != nil {
		return nil, err
	}

	b, err := a.allocBlock(aligned)
	if err != nil {
		return nil, err
	}
	return bytesFor(b, uintptr(n)), nil
}

// Zalloc is Alloc(nmemb*size) with the payload cleared to zero. It
// returns (nil, nil) if either argument is zero, and (nil, ErrOverflow)
// if nmemb*size overflows.
func (a *Allocator) Zalloc(nmemb, size uint) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.check()
	defer a.check()

	if nmemb == 0 || size == 0 {
		return nil, nil
	}
	if nmemb > ^uint(0)/size {
		return nil, ErrOverflow
	}
	total := nmemb * size

	aligned, err := alignedRequest(total)
	if err != nil {
		return nil, err
	}

	b, err := a.allocBlock(aligned)
	if err != nil {
		return nil, err
	}

	out := bytesFor(b, uintptr(total))
	for i := range out {
		out[i] = 0
	}
	return out, nil
}

// Free deallocates memory obtained from Alloc, Zalloc or Realloc. A
// nil or empty slice is a no-op; a slice that does not originate from
// this Allocator, or one that has already been freed, is detected via
// the magic word and is also a no-op. Free never panics for misuse it
// can detect this way; it only panics (via the integrity checker) if
// the heap itself is found to be corrupt.
func (a *Allocator) Free(b []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.check()
	defer a.check()

	full := b[:cap(b)]
	if len(full) == 0 {
		return nil
	}

	blk := blockFromPayload(unsafe.Pointer(&full[0]))
	if blk.magic != allocMagic && blk.magic != freedMagic {
		return nil
	}
	if blk.free {
		return nil
	}

	return a.freeBlock(blk)
}

// Realloc resizes the allocation b refers to, preserving the first
// min(len(b's block), n) bytes. b == nil (or empty) behaves as
// Alloc(n); n == 0 behaves as Free(b) and returns (nil, nil) unless
// Free itself errors. On failure it returns (nil, err) and leaves b
// untouched and valid, per spec.md §4.1.
func (a *Allocator) Realloc(b []byte, n uint) ([]byte, error) {
	full := b[:cap(b)]
	if len(full) == 0 {
		return a.Alloc(n)
	}
	if n == 0 {
		return nil, a.Free(full)
	}

	aligned, err := alignedRequest(n)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.check()
	defer a.check()

	blk := blockFromPayload(unsafe.Pointer(&full[0]))
	if blk.magic != allocMagic && blk.magic != freedMagic {
		return nil, ErrInvalidPointer
	}
	if blk.free {
		return nil, ErrInvalidPointer
	}

	p, err := a.reallocBlock(blk, aligned)
	if err != nil {
		return nil, err
	}
	return bytesFor(blockFromPayload(p), uintptr(n)), nil
}

// Close releases the Allocator's break-region reservation. It is not
// part of spec.md's public contract — break memory is never returned
// to the OS while live blocks reference it — and exists so long-running
// test suites can tear down Allocator instances instead of leaking
// their reservations for the life of the process.
func (a *Allocator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.head = nil
	a.tail = nil
	return a.arena.close()
}
