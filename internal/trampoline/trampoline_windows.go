//go:build windows

package trampoline

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// withWritableCode is the Windows counterpart of trampoline_unix.go's
// mprotect round-trip, using VirtualProtect instead. It runs inside the
// Agent Library after it has already been loaded into the target process
// via the remote-thread injector, so "the current process" here is the
// target, not the driver.
func withWritableCode(addr uintptr, size int, write func()) error {
	var oldProtect uint32
	if err := windows.VirtualProtect(addr, uintptr(size), windows.PAGE_EXECUTE_READWRITE, &oldProtect); err != nil {
		return fmt.Errorf("VirtualProtect RWX: %w", err)
	}

	write()

	var unused uint32
	if err := windows.VirtualProtect(addr, uintptr(size), oldProtect, &unused); err != nil {
		return fmt.Errorf("VirtualProtect restore: %w", err)
	}

	return nil
}
