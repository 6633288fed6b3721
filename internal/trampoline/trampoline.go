// Package trampoline is the in-process instrumentation engine from
// SPEC_FULL.md §4.2 step 4 / §3's Trampoline record: given the address of
// an already-loaded function and the address of its replacement, both in
// the calling process's own address space, it rewrites the old function's
// prologue to transfer control to the new one.
//
// This is hotreload.go's mmap/PROT_EXEC code-page engine generalized from
// "allocate a fresh page and point a function table slot at it" (flapc
// patches its own freshly-generated machine code, which it owns) to "patch
// an existing, already-mapped function's prologue in place" (the agent must
// redirect a symbol it does not own the page of). The byte-emission style
// for the jump itself is grounded on flapc's mov_x86_64.go/syscall_x86_64.go
// (raw opcode bytes written by hand, no assembler dependency).
package trampoline

import (
	"fmt"
	"unsafe"
)

// Trampoline is the SPEC_FULL.md §3 record: the installed redirect from an
// old code address to a new one.
type Trampoline struct {
	OldAddr uintptr
	NewAddr uintptr
	Active  bool
}

// jmpRel32Len is the size of a near relative jump: 0xE9 + 4-byte
// displacement.
const jmpRel32Len = 5

// jmpIndirectLen is the size of the absolute fallback used when the
// displacement doesn't fit in 32 bits: FF 25 00000000 (jmp qword ptr
// [rip+0]) followed by the 8-byte absolute target.
const jmpIndirectLen = 14

// buildJump returns the machine code that, placed at from, transfers
// control unconditionally to to. It prefers the 5-byte rel32 form and only
// falls back to the 14-byte RIP-relative indirect form when the
// displacement does not fit in an int32, which is the same choice flapc's
// own codegen makes between short and long jump encodings for out-of-range
// branches.
func buildJump(from, to uintptr) []byte {
	disp := int64(to) - int64(from) - jmpRel32Len
	if disp >= -(1<<31) && disp < (1<<31) {
		d := int32(disp)
		return []byte{
			0xe9,
			byte(d), byte(d >> 8), byte(d >> 16), byte(d >> 24),
		}
	}

	code := make([]byte, jmpIndirectLen)
	code[0] = 0xff
	code[1] = 0x25
	// displacement to the 8-byte pointer immediately following this
	// instruction is 0.
	code[2], code[3], code[4], code[5] = 0, 0, 0, 0
	t := uint64(to)
	for i := 0; i < 8; i++ {
		code[6+i] = byte(t >> (8 * i))
	}
	return code
}

// Install writes an unconditional jump from oldAddr to newAddr, preserving
// calling convention and stack alignment of the target ABI by never
// executing any of the old prologue (SPEC_FULL.md §4.2 step 4). It is the
// only place stub bytes are written into someone else's function; the
// actual RWX toggling is OS-specific and lives in trampoline_unix.go /
// trampoline_windows.go.
func Install(oldAddr, newAddr uintptr) (*Trampoline, error) {
	if oldAddr == 0 || newAddr == 0 {
		return nil, fmt.Errorf("trampoline: refusing to install with a nil address (old=%#x new=%#x)", oldAddr, newAddr)
	}

	stub := buildJump(oldAddr, newAddr)

	if err := withWritableCode(oldAddr, len(stub), func() {
		dst := unsafe.Slice((*byte)(unsafe.Pointer(oldAddr)), len(stub))
		copy(dst, stub)
	}); err != nil {
		return nil, fmt.Errorf("trampoline: installing redirect at %#x: %w", oldAddr, err)
	}

	return &Trampoline{OldAddr: oldAddr, NewAddr: newAddr, Active: true}, nil
}
