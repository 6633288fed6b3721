//go:build linux || darwin

package main

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>

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

// plonkAgentInit is the cgo constructor entry point SPEC_FULL.md §4.2
// describes: fired once by the dynamic loader on load, guarded by
// sync.Once so a second load of the same shared object is a no-op.
//
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

	handle := C.dlopen(cLibPath, C.RTLD_NOW|C.RTLD_GLOBAL)
	if handle == nil {
		return fmt.Errorf("dlopen %s: %s", libraryPath, C.GoString(C.dlerror()))
	}

	hostHandle := C.dlopen(nil, C.RTLD_NOW)
	if hostHandle == nil {
		return fmt.Errorf("dlopen(NULL) for host image: %s", C.GoString(C.dlerror()))
	}

	cSymbol := C.CString(symbol)
	defer C.free(unsafe.Pointer(cSymbol))
	oldAddr := C.dlsym(hostHandle, cSymbol)
	if oldAddr == nil {
		return fmt.Errorf("dlsym %s in host image: %s", symbol, C.GoString(C.dlerror()))
	}

	cNewSymbol := C.CString(newSymbol)
	defer C.free(unsafe.Pointer(cNewSymbol))
	newAddr := C.dlsym(handle, cNewSymbol)
	if newAddr == nil {
		return fmt.Errorf("dlsym %s in reload library: %s", newSymbol, C.GoString(C.dlerror()))
	}

	_, err := trampoline.Install(uintptr(oldAddr), uintptr(newAddr))
	return err
}

func logAgent(enabled bool, msg string) {
	if !enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "plonk-agent: %s\n", msg)
}
