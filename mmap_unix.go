// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

//go:build darwin || dragonfly || freebsd || linux || openbsd || solaris || netbsd

// Modifications (c) 2024 The Mallocator Authors.

package mallocator

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// pageSize is the granularity the break-region emulation rounds its
// extensions to. The mmap-threshold path does not round: it maps
// exactly header+payload+footer bytes.
var pageSize = unix.Getpagesize()

// mapAnon asks the OS for size bytes of private, zero-filled,
// read/write anonymous memory. The caller is responsible for rounding
// size to whatever granularity it needs; mapAnon maps exactly what
// it's asked for.
func mapAnon(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
}

// unmapAnon returns a mapping obtained from mapAnon to the OS.
func unmapAnon(addr unsafe.Pointer, size int) error {
	b := unsafe.Slice((*byte)(addr), size)
	return unix.Munmap(b)
}
