// Package symtab implements the Symbol Resolver from SPEC_FULL.md §4.1: it
// reads a native image's symbol table and maps a logical function name plus
// a package hint onto the decorated name the image actually exports.
//
// This generalizes flapc's hotreload.go ExtractFunctionCode, which opened an
// ELF file with debug/elf and walked its symbol table looking for a single
// exact name match. Here the same walk-and-match shape is kept but widened
// to three image formats (debug/elf, debug/macho, debug/pe, one reader per
// file) and three match rules (exact, macOS-underscore, demangled).
package symtab

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned when no symbol table entry matches. Per
// SPEC_FULL.md §4.1, absence is never fatal to the process — callers
// surface a diagnostic and abort only the current reload iteration.
var ErrNotFound = errors.New("symbol not found")

// Binding is the SymbolBinding record from SPEC_FULL.md §3.
type Binding struct {
	LogicalName  string
	PackageHint  string
	DecoratedOld string
	DecoratedNew string
}

// symbolKind classifies a raw symbol table entry.
type symbolKind int

const (
	kindOther symbolKind = iota
	kindFunc
)

// rawSymbol is the uniform shape every format backend reduces its native
// symbol table entries to before the shared matching loop runs.
type rawSymbol struct {
	Name string
	Kind symbolKind
}

// format identifies which binary image format a path holds.
type format int

const (
	formatELF format = iota
	formatMachO
	formatPE
)

func detectFormat(path string) (format, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var magic [4]byte
	if _, err := bufio.NewReader(f).Read(magic[:]); err != nil {
		return 0, fmt.Errorf("reading magic of %s: %w", path, err)
	}

	switch {
	case magic[0] == 0x7f && magic[1] == 'E' && magic[2] == 'L' && magic[3] == 'F':
		return formatELF, nil
	case magic[0] == 0xcf || magic[0] == 0xfe || magic[0] == 0xce || magic[0] == 0xca:
		// 64/32-bit Mach-O or fat binary, either endianness.
		return formatMachO, nil
	case magic[0] == 'M' && magic[1] == 'Z':
		return formatPE, nil
	default:
		return 0, fmt.Errorf("%s: unrecognized image format", path)
	}
}

// Resolve implements the contract of SPEC_FULL.md §4.1:
// resolve(image_path, package_hint, logical_name) -> decorated | NotFound.
func Resolve(imagePath, packageHint, logicalName string) (string, error) {
	f, err := detectFormat(imagePath)
	if err != nil {
		return "", err
	}

	var symbols []rawSymbol
	switch f {
	case formatELF:
		symbols, err = readELFSymbols(imagePath)
	case formatMachO:
		symbols, err = readMachOSymbols(imagePath)
	case formatPE:
		symbols, err = readPESymbols(imagePath)
	}
	if err != nil {
		return "", fmt.Errorf("reading symbols of %s: %w", imagePath, err)
	}

	decorated, err := match(symbols, packageHint, logicalName, f == formatMachO)
	if err != nil {
		return "", fmt.Errorf("%w in %s", err, imagePath)
	}
	return decorated, nil
}

// match is the format-agnostic core of Resolve, pulled out so the matching
// rules can be exercised in tests without needing real ELF/Mach-O/PE
// fixtures on disk.
func match(symbols []rawSymbol, packageHint, logicalName string, isMachO bool) (string, error) {
	needle := packageHint + "::" + logicalName
	if packageHint == "" {
		needle = logicalName
	}

	for _, sym := range symbols {
		if sym.Kind != kindFunc {
			continue
		}

		// Step 1: exact raw-name match short-circuits everything else.
		if sym.Name == logicalName {
			return sym.Name, nil
		}

		// Step 2: macOS leading-underscore decoration.
		if isMachO && sym.Name == "_"+logicalName {
			return logicalName, nil
		}
	}

	// Step 3: demangled substring match, only after every exact match has
	// been ruled out across the whole table (exact-before-demangled
	// tie-break from SPEC_FULL.md §4.1).
	for _, sym := range symbols {
		if sym.Kind != kindFunc {
			continue
		}

		// Mach-O prefixes every symbol with an extra "_", so "__ZN..." has
		// to lose it before Demangle can recognize the "_ZN" form.
		name := sym.Name
		if isMachO {
			name = strings.TrimPrefix(name, "_")
		}
		demangled := Demangle(name)
		if !strings.Contains(demangled, needle) {
			continue
		}

		if isMachO {
			return strings.TrimPrefix(sym.Name, "_"), nil
		}
		return sym.Name, nil
	}

	return "", fmt.Errorf("%w: %q", ErrNotFound, logicalName)
}

// ResolveBinding resolves both the old (host binary) and new (reload
// library) decorated names for one logical symbol, as the Reload Driver
// does in SPEC_FULL.md §4.4 step 3.
func ResolveBinding(binPath, libraryPath, packageHint, logicalName string) (Binding, error) {
	oldName, err := Resolve(binPath, packageHint, logicalName)
	if err != nil {
		return Binding{}, fmt.Errorf("resolving old symbol: %w", err)
	}

	newName, err := Resolve(libraryPath, packageHint, logicalName)
	if err != nil {
		return Binding{}, fmt.Errorf("resolving new symbol: %w", err)
	}

	return Binding{
		LogicalName:  logicalName,
		PackageHint:  packageHint,
		DecoratedOld: oldName,
		DecoratedNew: newName,
	}, nil
}
