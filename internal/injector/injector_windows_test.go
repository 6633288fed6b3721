//go:build windows

package injector

import (
	"bytes"
	"encoding/binary"
	"testing"
	"unicode/utf16"
)

func TestBuildStubBytes(t *testing.T) {
	const loadLibraryW = uintptr(0x1122334455667788)
	const getLastError = uintptr(0x99aabbccddeeff00)

	imm64 := func(v uintptr) []byte {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		return buf[:]
	}

	var want []byte
	want = append(want, 0x48, 0x83, 0xec, 0x28) // sub rsp, 40
	want = append(want, 0x48, 0xb8)             // mov rax, loadLibraryW
	want = append(want, imm64(loadLibraryW)...)
	want = append(want, 0xff, 0xd0)       // call rax
	want = append(want, 0x48, 0x85, 0xc0) // test rax, rax
	want = append(want, 0x48, 0xb8)       // mov rax, 0
	want = append(want, imm64(0)...)
	want = append(want, 0x75, 0x0c) // jnz +12
	want = append(want, 0x48, 0xb8) // mov rax, getLastError
	want = append(want, imm64(getLastError)...)
	want = append(want, 0xff, 0xd0)             // call rax
	want = append(want, 0x48, 0x83, 0xc4, 0x28) // add rsp, 40
	want = append(want, 0xc3)                   // ret

	got := buildStub(loadLibraryW, getLastError)
	if !bytes.Equal(got, want) {
		t.Fatalf("buildStub bytes mismatch:\n got: % x\nwant: % x", got, want)
	}
}

// TestBuildStubJumpSkipsGetLastErrorBlock pins the jnz displacement to the
// exact size of the block it skips: a regression test for the bug where rax
// was left nonzero on success, inverting the success/failure branch.
func TestBuildStubJumpSkipsGetLastErrorBlock(t *testing.T) {
	stub := buildStub(0x1111111111111111, 0x2222222222222222)

	const jnzOpcode = 0x75
	idx := bytes.IndexByte(stub, jnzOpcode)
	if idx < 0 || idx+1 >= len(stub) {
		t.Fatalf("jnz opcode not found in stub: % x", stub)
	}
	disp := int(int8(stub[idx+1]))

	// The skipped block is "mov rax, imm64; call rax": 10 + 2 bytes.
	skipped := stub[idx+2 : idx+2+disp]
	if len(skipped) != 12 {
		t.Fatalf("jnz displacement %d does not match the 12-byte GetLastError block", disp)
	}
	if skipped[0] != 0x48 || skipped[1] != 0xb8 {
		t.Fatalf("byte skipped by jnz does not start with mov rax, imm64: % x", skipped)
	}
}

func TestEncodeEnvBlockIncludesPlonkVars(t *testing.T) {
	vars := []string{
		`PLONK_LIBRARY=C:\agent.dll`,
		`PLONK_BINARY=C:\target.exe`,
		"SYMBOL=work",
		"NEW_SYMBOL=work_v2",
		"VERBOSE=y",
	}

	block := encodeEnvBlock(vars)

	if n := len(block); n < 2 || block[n-1] != 0 || block[n-2] != 0 {
		t.Fatalf("encodeEnvBlock must end with a double NUL, got tail %v", block[max(0, n-2):])
	}

	decoded := decodeEnvBlock(block)
	for _, want := range vars {
		found := false
		for _, got := range decoded {
			if got == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("encodeEnvBlock missing entry %q in block %v", want, decoded)
		}
	}
}

// decodeEnvBlock reverses encodeEnvBlock for test assertions: a run of
// UTF-16 units up to each embedded NUL is one KEY=VALUE entry, and the
// block itself ends at the empty run.
func decodeEnvBlock(block []uint16) []string {
	var entries []string
	var cur []uint16
	for _, u := range block {
		if u == 0 {
			if len(cur) == 0 {
				break
			}
			entries = append(entries, string(utf16.Decode(cur)))
			cur = nil
			continue
		}
		cur = append(cur, u)
	}
	return entries
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
