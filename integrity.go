package mallocator

import (
	"fmt"
	"os"
)

// maxWalkSteps bounds the list walk the integrity checker performs.
// A walk that doesn't terminate within this many steps is treated as
// a cycle, per spec.md §3/§4.4.
const maxWalkSteps = 1000

// check walks the block store and asserts every invariant from
// spec.md §3/§4.4. It is invoked by every mutating public method, on
// entry and on exit (see alloc.go). Any violation is unrecoverable:
// the allocator's own metadata can no longer be trusted, so check
// reports a diagnostic to stderr and panics rather than returning an
// error a caller might ignore.
func (a *Allocator) check() {
	lo := a.arena.base
	hi := a.arena.currentBreak()

	var prev *block
	steps := 0
	for cur := a.head; cur != nil; cur = cur.next {
		steps++
		if steps > maxWalkSteps {
			a.fatal("possible cycle in block list (walked %d nodes)", maxWalkSteps)
		}

		if cur.magic != allocMagic && cur.magic != freedMagic {
			a.fatal("corrupted block at %#x: bad magic %#x", cur.addr(), uint64(cur.magic))
		}
		if cur.free != (cur.magic == freedMagic) {
			a.fatal("corrupted block at %#x: free=%v inconsistent with magic", cur.addr(), cur.free)
		}
		if !cur.isMmap {
			if lo != 0 && (cur.addr() < lo || cur.addr() >= hi) {
				a.fatal("block %#x outside break bounds [%#x, %#x)", cur.addr(), lo, hi)
			}
		}
		if cur.prev != prev {
			a.fatal("corrupted back-link at %#x", cur.addr())
		}
		if cur.next != nil && cur.next.next == cur {
			a.fatal("circular reference at %#x", cur.addr())
		}

		prev = cur
	}
	if prev != a.tail {
		a.fatal("tail pointer does not match end of list")
	}
}

// fatal reports a corruption diagnostic and aborts the process. A
// library cannot call os.Exit without taking that decision away from
// its embedder, so it panics instead; an embedding main is free to
// let that panic crash the process, which is the behavior spec.md §7
// calls for.
func (a *Allocator) fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "mallocator: fatal: %s\n", msg)
	panic(fmt.Errorf("%w: %s", errCorrupt, msg))
}
