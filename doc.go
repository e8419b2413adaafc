// Copyright 2024 The Mallocator Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mallocator implements a general-purpose dynamic memory
// allocator: alloc, zalloc, realloc and free on top of a heap-break
// region and the OS's anonymous-mmap service. The break region is
// emulated per Allocator: one large anonymous mapping reserved on
// first use, extended by bumping an offset inside it; the process's
// own brk is never touched.
//
// The allocator tracks every block, free or in use, on a single
// intrusive doubly-linked list kept in address order for break-region
// blocks. Small requests are served from that list by best-fit search,
// splitting a candidate block when the remainder is worth keeping;
// requests that cannot be satisfied from the list extend the
// Allocator's break region (requests below the mmap threshold) or are routed to a direct,
// individually unmappable page mapping (requests at or above it).
// Freed break-region blocks are coalesced with their address-adjacent
// free neighbors; freed mmap blocks are unmapped immediately.
//
// Every block carries a magic word identifying it as allocated or
// freed. An integrity check walks the list on entry and exit of every
// mutating operation; a walk that finds an inconsistent link, a bad
// magic word, a block outside heap bounds or a cycle panics, since an
// allocator cannot meaningfully continue after its own metadata is
// shown to be corrupt.
//
// All of this is safe for concurrent use: every exported Allocator
// method takes a single mutex for its entire duration. The zero value
// of Allocator is ready to use.
package mallocator
