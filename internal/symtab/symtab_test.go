package symtab

import (
	"errors"
	"testing"
)

func TestMatchExactName(t *testing.T) {
	symbols := []rawSymbol{
		{Name: "greet", Kind: kindFunc},
		{Name: "unrelated", Kind: kindFunc},
	}

	got, err := match(symbols, "pkg", "greet", false)
	if err != nil {
		t.Fatalf("match returned error: %v", err)
	}
	if got != "greet" {
		t.Fatalf("got %q, want %q", got, "greet")
	}
}

// TestMatchMacOSUnderscore covers step 2 of the resolver: a macOS symbol
// table lists "_greet" and the resolver must return "greet" (underscore
// stripped) when the exact name with a leading underscore matches.
func TestMatchMacOSUnderscore(t *testing.T) {
	symbols := []rawSymbol{
		{Name: "_greet", Kind: kindFunc},
	}

	got, err := match(symbols, "pkg", "greet", true)
	if err != nil {
		t.Fatalf("match returned error: %v", err)
	}
	if got != "greet" {
		t.Fatalf("got %q, want %q", got, "greet")
	}
}

func TestMatchDemangledSubstring(t *testing.T) {
	// _ZN3pkg5greet17h0123456789abcdefE demangles to
	// "pkg::greet::h0123456789abcdef", which contains "pkg::greet".
	symbols := []rawSymbol{
		{Name: "_ZN3pkg5greet17h0123456789abcdefE", Kind: kindFunc},
	}

	got, err := match(symbols, "pkg", "greet", false)
	if err != nil {
		t.Fatalf("match returned error: %v", err)
	}
	if got != "_ZN3pkg5greet17h0123456789abcdefE" {
		t.Fatalf("got %q, want the raw mangled name back", got)
	}
}

func TestMatchDemangledSubstringMacOSStripsUnderscore(t *testing.T) {
	symbols := []rawSymbol{
		{Name: "_" + "_ZN3pkg5greet17h0123456789abcdefE", Kind: kindFunc},
	}

	got, err := match(symbols, "pkg", "greet", true)
	if err != nil {
		t.Fatalf("match returned error: %v", err)
	}
	want := "_ZN3pkg5greet17h0123456789abcdefE"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMatchExactBeforeDemangled(t *testing.T) {
	// An exact raw match must win even when a later, demangled-matching
	// symbol also appears in the table (tie-break from SPEC_FULL.md §4.1).
	symbols := []rawSymbol{
		{Name: "_ZN3pkg5greet17h0123456789abcdefE", Kind: kindFunc},
		{Name: "greet", Kind: kindFunc},
	}

	got, err := match(symbols, "pkg", "greet", false)
	if err != nil {
		t.Fatalf("match returned error: %v", err)
	}
	if got != "greet" {
		t.Fatalf("got %q, want exact match %q", got, "greet")
	}
}

func TestMatchIgnoresNonFunctionSymbols(t *testing.T) {
	symbols := []rawSymbol{
		{Name: "greet", Kind: kindOther},
	}

	_, err := match(symbols, "pkg", "greet", false)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMatchNotFound(t *testing.T) {
	symbols := []rawSymbol{
		{Name: "something_else", Kind: kindFunc},
	}

	_, err := match(symbols, "pkg", "greet", false)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDemangleRustLegacy(t *testing.T) {
	got := Demangle("_ZN3pkg5greet17h0123456789abcdefE")
	want := "pkg::greet::h0123456789abcdef"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDemanglePassesThroughUnmangledNames(t *testing.T) {
	for _, name := range []string{"greet", "main", "_pkg::greet::hABC"} {
		if got := Demangle(name); got != name {
			t.Fatalf("Demangle(%q) = %q, want unchanged", name, got)
		}
	}
}
