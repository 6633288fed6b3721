//go:build windows

package main

/*
#include <windows.h>

extern void plonkAgentInit(void);

__attribute__((constructor))
static void plonk_agent_ctor(void) {
	plonkAgentInit();
}
*/
import "C"

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/xyproto/plonk/internal/trampoline"
)

var initOnce sync.Once

//export plonkAgentInit
func plonkAgentInit() {
	initOnce.Do(runAgent)
}

func runAgent() {
	libraryPath := os.Getenv("PLONK_LIBRARY")
	binPath := os.Getenv("PLONK_BINARY")
	symbol := os.Getenv("SYMBOL")
	newSymbol := os.Getenv("NEW_SYMBOL")
	if newSymbol == "" {
		newSymbol = symbol
	}
	verbose := os.Getenv("VERBOSE") != ""

	if libraryPath == "" || symbol == "" {
		logAgent(verbose, "missing PLONK_LIBRARY or SYMBOL, skipping redirect")
		return
	}

	if err := redirect(libraryPath, symbol, newSymbol); err != nil {
		logAgent(true, fmt.Sprintf("redirect failed in %s: %v", binPath, err))
		return
	}

	logAgent(verbose, fmt.Sprintf("redirected %s -> %s@%s in %s", symbol, newSymbol, libraryPath, binPath))
}

func redirect(libraryPath, symbol, newSymbol string) error {
	cLibPath := C.CString(libraryPath)
	defer C.free(unsafe.Pointer(cLibPath))

	handle := C.LoadLibraryA(cLibPath)
	if handle == nil {
		return fmt.Errorf("LoadLibraryA %s: %d", libraryPath, C.GetLastError())
	}

	hostHandle := C.GetModuleHandleA(nil)
	if hostHandle == nil {
		return fmt.Errorf("GetModuleHandleA(NULL) for host image: %d", C.GetLastError())
	}

	cSymbol := C.CString(symbol)
	defer C.free(unsafe.Pointer(cSymbol))
	oldAddr := C.GetProcAddress(hostHandle, cSymbol)
	if oldAddr == nil {
		return fmt.Errorf("GetProcAddress %s in host image: %d", symbol, C.GetLastError())
	}

	cNewSymbol := C.CString(newSymbol)
	defer C.free(unsafe.Pointer(cNewSymbol))
	newAddr := C.GetProcAddress(handle, cNewSymbol)
	if newAddr == nil {
		return fmt.Errorf("GetProcAddress %s in reload library: %d", newSymbol, C.GetLastError())
	}

	_, err := trampoline.Install(uintptr(unsafe.Pointer(oldAddr)), uintptr(unsafe.Pointer(newAddr)))
	return err
}

func logAgent(enabled bool, msg string) {
	if !enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "plonk-agent: %s\n", msg)
}
