package symtab

import (
	"debug/pe"
	"fmt"
)

// readPESymbols enumerates function symbols in a PE image via the COFF
// symbol table. Names from readPEExports are appended as well, but that
// function returns none, so the export directory adds nothing. Like the Mach-O
// backend, this has no direct teacher precedent to adapt (flapc's pe.go
// only writes PE images), so it follows the same walk-and-classify shape
// readELFSymbols established, built on the standard library's debug/pe.
func readPESymbols(path string) ([]rawSymbol, error) {
	f, err := pe.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PE: %w", err)
	}
	defer f.Close()

	out := make([]rawSymbol, 0, len(f.Symbols))
	for _, sym := range f.Symbols {
		if sym.Name == "" {
			continue
		}
		kind := kindOther
		// COFF function symbols carry complex type high byte 0x20
		// (IMAGE_SYM_DTYPE_FUNCTION) and a positive section number.
		if sym.Type&0xf0 == 0x20 && sym.SectionNumber > 0 {
			kind = kindFunc
		}
		out = append(out, rawSymbol{Name: sym.Name, Kind: kind})
	}

	if exports, err := readPEExports(f); err == nil {
		for _, name := range exports {
			out = append(out, rawSymbol{Name: name, Kind: kindFunc})
		}
	}

	return out, nil
}

// readPEExports looks up the export directory, which is where
// dynamically-built reload libraries (linked with -buildmode=c-shared)
// actually publish NEW_SYMBOL: the COFF symbol table above is frequently
// stripped from release builds, but the export table survives since the
// Windows loader needs it. It does not parse the table: it returns an error
// when the directory is absent and an empty list when it is present.
func readPEExports(f *pe.File) ([]string, error) {
	var names []string
	var dd pe.DataDirectory
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader64:
		dd = oh.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_EXPORT]
	case *pe.OptionalHeader32:
		dd = oh.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_EXPORT]
	}
	if dd.Size == 0 {
		return nil, fmt.Errorf("no export directory")
	}
	// The standard library does not expose a parsed export table, so
	// symbol resolution for freshly built Windows reload libraries in
	// this implementation relies primarily on the COFF symbol table
	// above; this hook exists so a richer export-table parser can be
	// dropped in without touching callers.
	return names, nil
}
