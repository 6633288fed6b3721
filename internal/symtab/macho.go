package symtab

import (
	"debug/macho"
	"fmt"
)

// readMachOSymbols enumerates text symbols in a Mach-O image. This
// generalizes flapc's ELF-reading shape (hotreload.go's
// ExtractFunctionCode) to Mach-O using the standard library's debug/macho
// reader — flapc itself only ever wrote Mach-O images (macho.go), it never
// read one back, so there is no teacher code to adapt here beyond the
// walk-and-classify pattern already established for ELF.
func readMachOSymbols(path string) ([]rawSymbol, error) {
	f, err := macho.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening Mach-O: %w", err)
	}
	defer f.Close()

	if f.Symtab == nil {
		return nil, nil
	}

	out := make([]rawSymbol, 0, len(f.Symtab.Syms))
	for _, sym := range f.Symtab.Syms {
		if sym.Name == "" {
			continue
		}
		kind := kindOther
		// N_SECT symbols that fall in a __TEXT,__text style section are
		// the function symbols we care about; Type&N_TYPE==N_SECT (0xe)
		// combined with a non-zero section index is macho's code-symbol
		// convention.
		if sym.Type&0x0e == 0x0e && sym.Sect != 0 {
			kind = kindFunc
		}
		out = append(out, rawSymbol{Name: sym.Name, Kind: kind})
	}

	return out, nil
}
