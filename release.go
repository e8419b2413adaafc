package mallocator

import "unsafe"

// freeBlock marks a block free and, for break-region blocks, merges
// it with whichever address-adjacent neighbors are also free.
// Double-free and foreign pointers are the caller's problem to filter
// out before calling this; freeBlock assumes b is a live, allocated
// block this Allocator owns.
func (a *Allocator) freeBlock(b *block) error {
	if b.isMmap {
		return a.freeMmap(b)
	}

	b.magic = freedMagic
	b.free = true
	a.coalesce(b)
	return nil
}

// freeMmap unmaps a direct-mapped block immediately: spec.md's
// asymmetry between the two paths is intentional, large allocations
// pay their own syscall cost rather than amortizing like break-region
// blocks do.
func (a *Allocator) freeMmap(b *block) error {
	b.magic = freedMagic
	a.unlink(b)
	total := totalSize(b.size)
	return unmapAnon(unsafe.Pointer(b), int(total))
}

// coalesce merges b with its immediate predecessor, if free and
// address-adjacent, then with its (possibly now shifted) successor,
// under the same condition. It never crosses an mmap block: mmap
// blocks are never address-adjacent to their list neighbors by
// construction, so the adjacency check alone is sufficient to exclude
// them.
func (a *Allocator) coalesce(b *block) *block {
	if prev := b.prev; prev != nil && prev.free && !prev.isMmap && prev.end() == b.addr() {
		prev.size += headerSize + b.size + footerSize
		prev.writeFooter()
		a.unlink(b)
		b = prev
	}

	if next := b.next; next != nil && next.free && !next.isMmap && b.end() == next.addr() {
		b.size += headerSize + next.size + footerSize
		b.writeFooter()
		a.unlink(next)
	}

	return b
}

// reallocBlock implements the grow/shrink contract from spec.md
// §4.1/§4.3. The caller has already excluded p == nil and n == 0.
func (a *Allocator) reallocBlock(b *block, n uintptr) (unsafe.Pointer, error) {
	old := b.size
	if n <= old {
		if !b.isMmap {
			a.split(b, n)
		}
		return b.payload(), nil
	}

	if !b.isMmap {
		if next := b.next; next != nil && next.free && !next.isMmap && b.end() == next.addr() {
			combined := b.size + headerSize + next.size + footerSize
			if combined >= n {
				a.unlink(next)
				b.size = combined
				b.writeFooter()
				a.split(b, n)
				return b.payload(), nil
			}
		}
	}

	newBlock, err := a.allocBlock(n)
	if err != nil {
		return nil, err
	}

	copyLen := old
	if n < copyLen {
		copyLen = n
	}
	dst := unsafe.Slice((*byte)(newBlock.payload()), copyLen)
	src := unsafe.Slice((*byte)(b.payload()), copyLen)
	copy(dst, src)

	if err := a.freeBlock(b); err != nil {
		return nil, err
	}
	return newBlock.payload(), nil
}
