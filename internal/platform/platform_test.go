package platform

import "testing"

func TestParseArch(t *testing.T) {
	cases := map[string]Arch{
		"amd64": ArchX86_64, "x86_64": ArchX86_64, "x86-64": ArchX86_64,
		"arm64": ArchARM64, "aarch64": ArchARM64,
	}
	for in, want := range cases {
		got, err := ParseArch(in)
		if err != nil {
			t.Fatalf("ParseArch(%q): unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseArch(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseArch("sparc"); err == nil {
		t.Fatal("expected error for unsupported architecture")
	}
}

func TestParseOS(t *testing.T) {
	cases := map[string]OS{
		"linux": OSLinux, "darwin": OSDarwin, "macos": OSDarwin, "windows": OSWindows,
	}
	for in, want := range cases {
		got, err := ParseOS(in)
		if err != nil {
			t.Fatalf("ParseOS(%q): unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseOS(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseOS("plan9"); err == nil {
		t.Fatal("expected error for unsupported OS")
	}
}

func TestPlatformFormatPredicates(t *testing.T) {
	linux := Platform{Arch: ArchX86_64, OS: OSLinux}
	if !linux.IsELF() || linux.IsMachO() || linux.IsPE() {
		t.Fatalf("linux platform classified wrong: %+v", linux)
	}

	darwin := Platform{Arch: ArchARM64, OS: OSDarwin}
	if !darwin.IsMachO() || darwin.IsELF() || darwin.IsPE() {
		t.Fatalf("darwin platform classified wrong: %+v", darwin)
	}

	windows := Platform{Arch: ArchX86_64, OS: OSWindows}
	if !windows.IsPE() || windows.IsELF() || windows.IsMachO() {
		t.Fatalf("windows platform classified wrong: %+v", windows)
	}
}

func TestFullString(t *testing.T) {
	p := Platform{Arch: ArchARM64, OS: OSDarwin}
	if got, want := p.FullString(), "arm64-darwin"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
