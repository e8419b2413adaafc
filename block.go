package mallocator

import "unsafe"

// alignment is the fixed machine alignment A to which every payload
// pointer and every block size is rounded. 16 matches the teacher's
// mallocAllign constant and exceeds the spec's 8-byte floor.
const alignment = 16

// mmapThreshold is the aligned-payload size at or above which a
// request is routed to the direct page-mapping path instead of the
// heap break.
const mmapThreshold = 4096

// magic words identify a block's state and double as the corruption
// canary: any other value found in the field means the heap has been
// clobbered.
type magic uint64

const (
	allocMagic magic = 0xBADC0DEDEAD1234
	freedMagic magic = 0xDEADBEEFDEADBEEF
)

// block is the header prefixed to every payload, allocated or free,
// whether it lives in the break region or in its own mmap mapping.
// It is never referenced through a Go slice/array bound; it is only
// ever reached via unsafe.Pointer arithmetic over memory obtained
// from requestBreak or mapAnon, so its field order and size are load
// bearing.
type block struct {
	size   uintptr // payload size in bytes, header/footer excluded
	magic  magic
	free   bool
	isMmap bool
	next   *block
	prev   *block
}

// footer duplicates the payload size after the payload. Coalescing is
// implemented via the prev link (see release.go), not by walking
// footers backward, so nothing in this package reads footerPtr except
// writeFooter itself; it is kept because the on-heap block layout is
// part of the allocator's data model regardless of who consumes it.
type footer struct {
	size uintptr
}

var (
	headerSize = alignUp(unsafe.Sizeof(block{}), alignment)
	footerSize = alignUp(unsafe.Sizeof(footer{}), alignment)

	// minBlockSize is the smallest payload-bearing region that can
	// stand on its own: enough for header, footer, and one alignment
	// unit of payload. A split that would leave a smaller remainder
	// must not happen.
	minBlockSize = alignUp(headerSize+footerSize+alignment, alignment)
)

// alignUp rounds n up to the next multiple of a. a must be a power of two.
func alignUp(n, a uintptr) uintptr {
	return (n + a - 1) &^ (a - 1)
}

// blockAt interprets the header of a fresh memory region starting at addr.
func blockAt(addr uintptr) *block {
	return (*block)(unsafe.Pointer(addr))
}

// addr returns b's own address, for adjacency and bounds checks.
func (b *block) addr() uintptr {
	return uintptr(unsafe.Pointer(b))
}

// payload returns a pointer to the first byte the caller may write.
func (b *block) payload() unsafe.Pointer {
	return unsafe.Pointer(b.addr() + headerSize)
}

// end returns the address one past b's footer: the address its
// break-region successor must have for the two to be adjacent.
func (b *block) end() uintptr {
	return b.addr() + headerSize + b.size + footerSize
}

// footerPtr returns a pointer to b's trailing size copy.
func (b *block) footerPtr() *footer {
	return (*footer)(unsafe.Pointer(b.addr() + headerSize + b.size))
}

// writeFooter stamps the footer to match the current size.
func (b *block) writeFooter() {
	b.footerPtr().size = b.size
}

// blockFromPayload recovers the header given a pointer previously
// returned to a caller as a payload. It does not validate magic;
// callers check that separately so double-free and foreign-pointer
// handling can share one code path.
func blockFromPayload(p unsafe.Pointer) *block {
	return (*block)(unsafe.Pointer(uintptr(p) - headerSize))
}

// totalSize is the number of bytes a block of the given payload size
// occupies end to end, including header and footer.
func totalSize(payload uintptr) uintptr {
	return headerSize + payload + footerSize
}
