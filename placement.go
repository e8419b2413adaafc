package mallocator

import (
	"fmt"
	"unsafe"
)

// findBestFit does a linear best-fit scan of the block store: the
// smallest free block whose payload is at least size bytes, ties
// broken by earliest list position. An exact-size match short
// circuits the scan. A block whose magic is neither sentinel aborts
// the search; that can only happen if something outside this package
// clobbered the heap between the entry check and here.
func (a *Allocator) findBestFit(size uintptr) *block {
	var best *block
	for cur := a.head; cur != nil; cur = cur.next {
		if cur.magic != allocMagic && cur.magic != freedMagic {
			a.fatal("corrupted block at %#x during best-fit search", cur.addr())
		}
		if !cur.free || cur.size < size {
			continue
		}
		if best == nil || cur.size < best.size {
			best = cur
			if best.size == size {
				break
			}
		}
	}
	return best
}

// split divides a free candidate of payload size b.size into a
// head of exactly size bytes and a new free block covering the
// remainder, provided the remainder is large enough to stand on its
// own. mmap-backed blocks are never split. split leaves b's free flag
// untouched; the caller (alloc) marks it allocated once placement is
// done.
func (a *Allocator) split(b *block, size uintptr) {
	if b.isMmap {
		return
	}
	if b.size < size+minBlockSize {
		return
	}

	remainder := b.size - size - headerSize - footerSize
	newBlock := blockAt(b.addr() + headerSize + size + footerSize)
	*newBlock = block{
		size:   remainder,
		magic:  freedMagic,
		free:   true,
		isMmap: false,
	}
	newBlock.writeFooter()

	b.size = size
	b.writeFooter()
	a.insertAfter(b, newBlock)
}

// requestSpace satisfies a request the free list could not: it
// extends the break for requests below the mmap threshold, or creates
// a fresh direct mapping for requests at or above it. On success the
// new block is appended to the tail, stamped allocated, and returned.
func (a *Allocator) requestSpace(size uintptr) (*block, error) {
	if size >= mmapThreshold {
		return a.requestMmap(size)
	}
	return a.requestBreak(size)
}

// requestBreak extends the break-region arena by enough pages to hold
// header + size + footer, and initializes one block spanning the
// whole extension, handed back allocated and at full size: this call
// never splits. Rounding up to the page size, rather than to exactly
// what was asked, pays off later: once this block is freed, it
// becomes a free-list candidate large enough for split to carve
// smaller requests out of without a further break extension.
func (a *Allocator) requestBreak(size uintptr) (*block, error) {
	want := totalSize(size)
	rounded := alignUp(want, uintptr(pageSize))

	addr, err := a.arena.extend(rounded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}

	b := blockAt(addr)
	*b = block{
		size:   rounded - headerSize - footerSize,
		magic:  allocMagic,
		free:   false,
		isMmap: false,
	}
	b.writeFooter()
	a.appendTail(b)
	return b, nil
}

// requestMmap maps exactly header+size+footer bytes and initializes a
// single is_mmap block there. Unlike the break path, this path never
// over-allocates: the payload size is exactly the request.
func (a *Allocator) requestMmap(size uintptr) (*block, error) {
	total := totalSize(size)
	region, err := mapAnon(int(total))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}

	b := (*block)(unsafe.Pointer(&region[0]))
	*b = block{
		size:   size,
		magic:  allocMagic,
		free:   false,
		isMmap: true,
	}
	b.writeFooter()
	a.appendTail(b)
	return b, nil
}
