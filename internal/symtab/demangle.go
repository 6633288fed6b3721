package symtab

import "strings"

// Demangle reverses legacy Rust/Itanium name mangling well enough to
// recover a stable, path-qualified form such as "pkg::greet::h0123456789abcdef"
// from a mangled symbol such as "_ZN3pkg5greet17h0123456789abcdefE".
//
// No example in the reference corpus ships a demangler (flapc and the rest
// of the pack never mangle C++/Rust names — they hand-emit raw text
// symbols), so this is a standard-library-only component; see DESIGN.md for
// why no third-party demangler from the examples could be wired here
// instead. It implements only the subset of the Itanium scheme Rust's
// legacy mangling actually uses: "_ZN" + one-or-more length-prefixed name
// components + a terminating "E", optionally followed by numeric digits
// that are dropped. Anything that doesn't match this shape is assumed to
// already be demangled (the common case for extern "C" exports) and is
// returned unchanged.
func Demangle(raw string) string {
	name := raw
	if strings.HasPrefix(name, "_ZN") {
		name = name[3:]
	} else if strings.HasPrefix(name, "ZN") {
		name = name[2:]
	} else {
		return raw
	}

	name = strings.TrimSuffix(name, "E")

	var parts []string
	for len(name) > 0 {
		digits := 0
		for digits < len(name) && name[digits] >= '0' && name[digits] <= '9' {
			digits++
		}
		if digits == 0 {
			// Malformed length prefix; bail out and return what we
			// managed to recover rather than erroring, since Demangle
			// has no error return and the matching loop in symtab.go
			// only cares whether the needle shows up as a substring.
			break
		}

		n := 0
		for i := 0; i < digits; i++ {
			n = n*10 + int(name[i]-'0')
		}
		name = name[digits:]

		if n > len(name) {
			break
		}

		parts = append(parts, name[:n])
		name = name[n:]
	}

	if len(parts) == 0 {
		return raw
	}

	return strings.Join(parts, "::")
}
