// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

// Modifications (c) 2024 The Mallocator Authors.

package mallocator

import (
	"errors"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var pageSize = os.Getpagesize()

// mapping on Windows is a two-step process: CreateFileMapping gets a
// handle backed by the system paging file, then MapViewOfFile gets an
// actual pointer into the process's address space. We keep handlesMu
// + handles around so unmapAnon can recover the handle that
// mapAnon's caller only remembers as an address.
var (
	handlesMu sync.Mutex
	handles   = map[uintptr]windows.Handle{}
)

// mapAnon asks the OS for size bytes of private, zero-filled,
// read/write anonymous memory.
func mapAnon(size int) ([]byte, error) {
	maxSizeHigh := uint32(uint64(size) >> 32)
	maxSizeLow := uint32(uint64(size) & 0xFFFFFFFF)
	h, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, maxSizeHigh, maxSizeLow, nil)
	if err != nil {
		return nil, os.NewSyscallError("CreateFileMapping", err)
	}

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(h)
		return nil, os.NewSyscallError("MapViewOfFile", err)
	}

	handlesMu.Lock()
	handles[addr] = h
	handlesMu.Unlock()

	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// unmapAnon returns a mapping obtained from mapAnon to the OS.
func unmapAnon(addr unsafe.Pointer, size int) error {
	a := uintptr(addr)
	if err := windows.UnmapViewOfFile(a); err != nil {
		return err
	}

	handlesMu.Lock()
	h, ok := handles[a]
	if ok {
		delete(handles, a)
	}
	handlesMu.Unlock()
	if !ok {
		return errors.New("mallocator: unknown mapping base address")
	}

	return os.NewSyscallError("CloseHandle", windows.CloseHandle(h))
}
