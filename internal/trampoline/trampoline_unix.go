//go:build linux || darwin

package trampoline

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// withWritableCode mprotects the page(s) spanning [addr, addr+size) to
// RWX, runs write, then restores RX. flapc's hotreload.go always mmap'd
// brand-new PROT_EXEC pages it owned outright; here the page already
// belongs to a loaded image, so it must be round-tripped through
// mprotect instead of allocated fresh — same RWX requirement, applied to
// someone else's mapping.
func withWritableCode(addr uintptr, size int, write func()) error {
	pageSize := os.Getpagesize()
	start := addr &^ uintptr(pageSize-1)
	end := (addr + uintptr(size) + uintptr(pageSize-1)) &^ uintptr(pageSize-1)
	span := int(end - start)

	page := unsafe.Slice((*byte)(unsafe.Pointer(start)), span)

	if err := unix.Mprotect(page, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("mprotect RWX: %w", err)
	}

	write()

	if err := unix.Mprotect(page, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("mprotect RX: %w", err)
	}

	return nil
}
