package symtab

import (
	"debug/elf"
	"fmt"
)

// readELFSymbols enumerates global and local text symbols in an ELF image,
// directly generalizing flapc's hotreload.go ExtractFunctionCode, which did
// this same elf.Open + Symbols() walk for a single hard-coded function name.
func readELFSymbols(path string) ([]rawSymbol, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ELF: %w", err)
	}
	defer f.Close()

	var out []rawSymbol

	collect := func(syms []elf.Symbol) {
		for _, sym := range syms {
			if sym.Name == "" {
				continue
			}
			kind := kindOther
			if elf.ST_TYPE(sym.Info) == elf.STT_FUNC {
				kind = kindFunc
			}
			out = append(out, rawSymbol{Name: sym.Name, Kind: kind})
		}
	}

	if syms, err := f.Symbols(); err == nil {
		collect(syms)
	}
	if syms, err := f.DynamicSymbols(); err == nil {
		collect(syms)
	}

	return out, nil
}
