//go:build windows

package mmap

import (
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Windows needs the original view address to unmap; track it per slice.
var (
	viewsMu sync.Mutex
	views   = make(map[*byte]uintptr)
)

func osMap(f *os.File, size int) ([]byte, error) {
	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	// The view holds a reference; the mapping handle can go right away.
	defer windows.CloseHandle(h)

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		return nil, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)

	viewsMu.Lock()
	views[&data[0]] = addr
	viewsMu.Unlock()

	return data, nil
}

func osUnmap(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	viewsMu.Lock()
	addr, ok := views[&data[0]]
	delete(views, &data[0])
	viewsMu.Unlock()
	if !ok {
		return nil
	}
	return windows.UnmapViewOfFile(addr)
}
