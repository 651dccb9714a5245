// SPDX-License-Identifier: Apache-2.0

//go:build windows

package arena

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func mapAnon(size int) ([]byte, func() error, error) {
	// MEM_COMMIT is demand paged, pages are backed only once touched.
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return nil, nil, err
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return data, func() error { return windows.VirtualFree(addr, 0, windows.MEM_RELEASE) }, nil
}
