package workspace

import "testing"

func TestSelectBinTargetExplicitBin(t *testing.T) {
	targets := []BinTarget{
		{PackageName: "plonk", BinPath: "/t/plonk"},
		{PackageName: "plonk-agent", BinPath: "/t/plonk-agent"},
	}

	got, err := SelectBinTarget(targets, "plonk-agent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PackageName != "plonk-agent" {
		t.Fatalf("got %q, want plonk-agent", got.PackageName)
	}
}

func TestSelectBinTargetSingleImplicit(t *testing.T) {
	targets := []BinTarget{{PackageName: "only", BinPath: "/t/only"}}

	got, err := SelectBinTarget(targets, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PackageName != "only" {
		t.Fatalf("got %q, want only", got.PackageName)
	}
}

func TestSelectBinTargetAmbiguous(t *testing.T) {
	targets := []BinTarget{
		{PackageName: "a", BinPath: "/t/a"},
		{PackageName: "b", BinPath: "/t/b"},
	}

	_, err := SelectBinTarget(targets, "")
	if err == nil {
		t.Fatal("expected ambiguity error")
	}
}

func TestSelectBinTargetUnknownName(t *testing.T) {
	targets := []BinTarget{{PackageName: "a", BinPath: "/t/a"}}

	_, err := SelectBinTarget(targets, "missing")
	if err == nil {
		t.Fatal("expected error for unknown --bin name")
	}
}

func TestSelectBinTargetNoneFound(t *testing.T) {
	_, err := SelectBinTarget(nil, "")
	if err == nil {
		t.Fatal("expected error when no bin targets exist")
	}
}
