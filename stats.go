package mallocator

import "fmt"

// StatsSnapshot is the result of Allocator.Stats: a point-in-time
// summary of everything the block store currently tracks. It is an
// informational surface, not a stable wire format (spec.md §6).
type StatsSnapshot struct {
	// TotalBytes is the sum of header+payload+footer over every
	// listed block, free or allocated.
	TotalBytes uintptr
	// UsedBytes is the sum of payload size over non-free blocks.
	UsedBytes uintptr
	// Blocks is the total number of listed blocks.
	Blocks int
	// MmapBlocks is how many of those blocks are direct mappings.
	MmapBlocks int
}

// String renders s in the exact line format spec.md §6 specifies.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf("Total: %d bytes\nUsed: %d bytes\nBlocks: %d (%d mmap)\n",
		s.TotalBytes, s.UsedBytes, s.Blocks, s.MmapBlocks)
}

// Stats walks the block store and reports aggregate counters: total
// bytes, used bytes, block count and mmap block count.
func (a *Allocator) Stats() StatsSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.check()
	defer a.check()

	var s StatsSnapshot
	for cur := a.head; cur != nil; cur = cur.next {
		s.TotalBytes += totalSize(cur.size)
		s.Blocks++
		if cur.isMmap {
			s.MmapBlocks++
		}
		if !cur.free {
			s.UsedBytes += cur.size
		}
	}
	return s
}
