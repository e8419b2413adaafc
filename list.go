package mallocator

// The block store: the intrusive, address-ordered doubly-linked list
// threading through every block's next/prev fields. Allocator.head and
// Allocator.tail are the only way in; nothing outside this file links
// or unlinks blocks through next/prev. Other files (the integrity
// checker, best-fit search, coalescing, realloc and Stats) only read
// them.

// appendTail links b in after the current tail (or makes b the sole
// element if the list is empty).
func (a *Allocator) appendTail(b *block) {
	b.prev = a.tail
	b.next = nil
	if a.tail != nil {
		a.tail.next = b
	} else {
		a.head = b
	}
	a.tail = b
}

// insertAfter splices b in immediately after prev, which must already
// be linked into the list.
func (a *Allocator) insertAfter(prev, b *block) {
	b.prev = prev
	b.next = prev.next
	if prev.next != nil {
		prev.next.prev = b
	} else {
		a.tail = b
	}
	prev.next = b
}

// unlink removes b from the list, fixing head/tail as needed. b's own
// next/prev are left untouched; callers that reuse b's memory (mmap
// unmap) don't care, and callers that fold b into a neighbor
// (coalesce) overwrite them anyway.
func (a *Allocator) unlink(b *block) {
	if b.prev != nil {
		b.prev.next = b.next
	} else {
		a.head = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	} else {
		a.tail = b.prev
	}
}
