//go:build windows

package injector

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

// windowsInjector spawns the target suspended and injects the Agent
// Library with a remote thread running a small stub that calls
// LoadLibraryW, grounded byte-for-byte on plonk_inject_win.rs's dynasm
// sequence. This is the one platform spec.md never lets use the dynamic
// loader's own preload mechanism.
type windowsInjector struct{}

func newHostInjector() Injector {
	return windowsInjector{}
}

var (
	modKernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procVirtualAllocEx   = modKernel32.NewProc("VirtualAllocEx")
	procWriteProcessMem  = modKernel32.NewProc("WriteProcessMemory")
	procCreateRemoteThrd = modKernel32.NewProc("CreateRemoteThread")
	procGetExitCodeThrd  = modKernel32.NewProc("GetExitCodeThread")
	procGetModuleHandleA = modKernel32.NewProc("GetModuleHandleA")
	procGetProcAddress   = modKernel32.NewProc("GetProcAddress")
)

const (
	memCommit                       = 0x1000
	memReserve                      = 0x2000
	pageExecuteReadwrite            = 0x40
	infinite                        = 0xFFFFFFFF
	windowsCreateUnicodeEnvironment = 0x00000400
)

func (windowsInjector) Spawn(ctx context.Context, ic Context) (*exec.Cmd, error) {
	cmdLine := buildCommandLine(ic.BinPath, ic.Args)

	var si syscall.StartupInfo
	var pi syscall.ProcessInformation
	si.Cb = uint32(unsafe.Sizeof(si))

	cmdLineUTF16, err := syscall.UTF16PtrFromString(cmdLine)
	if err != nil {
		return nil, fmt.Errorf("encoding command line: %w", err)
	}

	envBlock := buildEnvBlock(ic)

	err = syscall.CreateProcess(
		nil, cmdLineUTF16, nil, nil, true,
		syscall.CREATE_SUSPENDED|windowsCreateUnicodeEnvironment, envBlock, nil, &si, &pi,
	)
	if err != nil {
		return nil, fmt.Errorf("spawning %s suspended: %w", ic.BinPath, err)
	}
	defer syscall.CloseHandle(pi.Process)

	if err := injectLibrary(windows.Handle(pi.Process), ic.LibraryPath); err != nil {
		syscall.TerminateProcess(pi.Process, 1)
		syscall.CloseHandle(pi.Thread)
		return nil, err
	}

	if _, err := syscall.ResumeThread(pi.Thread); err != nil {
		syscall.CloseHandle(pi.Thread)
		return nil, fmt.Errorf("resuming primary thread: %w", err)
	}
	syscall.CloseHandle(pi.Thread)

	proc, err := os.FindProcess(int(pi.ProcessId))
	if err != nil {
		return nil, fmt.Errorf("wrapping spawned process: %w", err)
	}

	cmd := exec.CommandContext(ctx, ic.BinPath, ic.Args...)
	cmd.Process = proc
	return cmd, nil
}

func buildCommandLine(binPath string, args []string) string {
	parts := append([]string{binPath}, args...)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		if strings.ContainsAny(p, " \t\"") {
			quoted[i] = `"` + strings.ReplaceAll(p, `"`, `\"`) + `"`
		} else {
			quoted[i] = p
		}
	}
	return strings.Join(quoted, " ")
}

// buildEnvBlock encodes the child's environment as the UTF-16,
// double-null-terminated block CreateProcessW expects, inheriting the
// current environment and layering on the vars the Agent Library reads per
// spec.md §4.2: PLONK_LIBRARY, PLONK_BINARY, SYMBOL, NEW_SYMBOL, and
// VERBOSE. CreateProcess must be called with CREATE_UNICODE_ENVIRONMENT
// whenever this block is passed instead of nil.
func buildEnvBlock(ic Context) *uint16 {
	vars := os.Environ()
	vars = append(vars,
		"PLONK_LIBRARY="+ic.LibraryPath,
		"PLONK_BINARY="+ic.BinPath,
		"SYMBOL="+ic.Symbol,
		"NEW_SYMBOL="+ic.NewSymbol,
	)
	if ic.Verbose {
		vars = append(vars, "VERBOSE=y")
	}

	block := encodeEnvBlock(vars)
	return &block[0]
}

// encodeEnvBlock is the pure half of buildEnvBlock: one UTF-16, NUL-terminated
// run per KEY=VALUE entry, with a final NUL closing the block.
func encodeEnvBlock(vars []string) []uint16 {
	var block []uint16
	for _, kv := range vars {
		block = append(block, utf16.Encode([]rune(kv))...)
		block = append(block, 0)
	}
	block = append(block, 0)
	return block
}

// injectLibrary assembles and runs the remote LoadLibraryW stub described
// in spec.md §4.3 step 3: the target process allocates RWX memory, receives
// the stub plus the UTF-16 library path, and runs both as a remote thread.
func injectLibrary(hProcess windows.Handle, libraryPath string) error {
	kernel32, _, _ := procGetModuleHandleA.Call(strPtr("kernel32.dll"))
	if kernel32 == 0 {
		return fmt.Errorf("resolving kernel32.dll in this process: %w", lastErr())
	}
	loadLibraryW, _, _ := procGetProcAddress.Call(kernel32, strPtr("LoadLibraryW"))
	if loadLibraryW == 0 {
		return fmt.Errorf("resolving LoadLibraryW: %w", lastErr())
	}
	getLastError, _, _ := procGetProcAddress.Call(kernel32, strPtr("GetLastError"))
	if getLastError == 0 {
		return fmt.Errorf("resolving GetLastError: %w", lastErr())
	}

	pathUTF16 := append(utf16.Encode([]rune(libraryPath)), 0)
	pathBytes := make([]byte, len(pathUTF16)*2)
	for i, u := range pathUTF16 {
		binary.LittleEndian.PutUint16(pathBytes[i*2:], u)
	}

	stub := buildStub(loadLibraryW, getLastError)
	pathOffset := (len(stub) + 7) &^ 7
	total := pathOffset + len(pathBytes)

	remote, _, _ := procVirtualAllocEx.Call(
		uintptr(hProcess), 0, uintptr(total),
		memCommit|memReserve, pageExecuteReadwrite,
	)
	if remote == 0 {
		return fmt.Errorf("allocating remote memory: %w", lastErr())
	}

	pathAddr := remote + uintptr(pathOffset)

	buf := make([]byte, total)
	copy(buf, stub)
	copy(buf[pathOffset:], pathBytes)

	var written uintptr
	ok, _, _ := procWriteProcessMem.Call(
		uintptr(hProcess), remote,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(total),
		uintptr(unsafe.Pointer(&written)),
	)
	if ok == 0 {
		return fmt.Errorf("writing remote stub: %w", lastErr())
	}

	hThread, _, _ := procCreateRemoteThrd.Call(
		uintptr(hProcess), 0, 0, remote, pathAddr, 0, 0,
	)
	if hThread == 0 {
		return fmt.Errorf("creating remote thread: %w", lastErr())
	}
	defer windows.CloseHandle(windows.Handle(hThread))

	windows.WaitForSingleObject(windows.Handle(hThread), infinite)

	// The stub leaves 0 in rax on success and GetLastError's result (never
	// zero) on failure, matching plonk_inject_win.rs: a zero exit code is
	// success, a nonzero one is failure, translated via the well-known
	// access-violation code when it matches and generically otherwise.
	var exitCode uint32
	procGetExitCodeThrd.Call(hThread, uintptr(unsafe.Pointer(&exitCode)))
	if exitCode != 0 {
		return translateExitCode(exitCode)
	}

	return nil
}

// buildStub assembles the x86-64 routine:
//
//	sub rsp, 40
//	mov rax, loadLibraryW
//	call rax          ; rcx holds the remote path pointer (thread param)
//	test rax, rax
//	mov rax, 0        ; does not affect flags, so the preceding test still
//	                  ; governs the branch below
//	jnz done
//	mov rax, getLastError
//	call rax
//	done:
//	add rsp, 40
//	ret
//
// grounded byte-for-byte on plonk_inject_win.rs's dynasm sequence: rax is
// zeroed on the success path so the remote thread's exit code is 0 on
// success and GetLastError's (always nonzero) result on failure.
func buildStub(loadLibraryW, getLastError uintptr) []byte {
	var b []byte
	emit := func(bs ...byte) { b = append(b, bs...) }
	imm64 := func(v uintptr) {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		emit(buf[:]...)
	}

	emit(0x48, 0x83, 0xec, 0x28) // sub rsp, 40
	emit(0x48, 0xb8)             // mov rax, imm64
	imm64(loadLibraryW)
	emit(0xff, 0xd0)       // call rax
	emit(0x48, 0x85, 0xc0) // test rax, rax
	emit(0x48, 0xb8)       // mov rax, imm64(0); flags untouched
	imm64(0)
	emit(0x75, 0x0c) // jnz +12 (skip GetLastError block)
	emit(0x48, 0xb8) // mov rax, imm64
	imm64(getLastError)
	emit(0xff, 0xd0)             // call rax
	emit(0x48, 0x83, 0xc4, 0x28) // add rsp, 40
	emit(0xc3)                   // ret
	return b
}

func strPtr(s string) uintptr {
	p, _ := syscall.BytePtrFromString(s)
	return uintptr(unsafe.Pointer(p))
}

func lastErr() error {
	return syscall.GetLastError()
}
