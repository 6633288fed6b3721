// Package injector implements the Platform Injector component of
// SPEC_FULL.md §4.3: spawning the target binary with the Agent Library
// loaded into its address space before its entry point runs.
package injector

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Context carries everything an Injector needs to spawn and inject one run
// of the target binary. It is SPEC_FULL.md §3's InjectionContext record.
type Context struct {
	BinPath     string
	LibraryPath string
	Symbol      string
	NewSymbol   string
	Verbose     bool
	Args        []string
}

// Injector spawns the target binary with the Agent Library preloaded into
// it, platform by platform, mirroring plonk_inject.rs/plonk_inject_win.rs's
// split between a preload-env approach on Unix and a remote-thread approach
// on Windows.
type Injector interface {
	Spawn(ctx context.Context, ic Context) (*exec.Cmd, error)
}

// accessViolationExitCode is the well-known STATUS_ACCESS_VIOLATION remote
// thread exit code, which translateExitCode reports as "access violation"
// (SPEC_FULL.md §7(iii)).
const accessViolationExitCode = 0xc0000005

func translateExitCode(code uint32) error {
	if code == accessViolationExitCode {
		return fmt.Errorf("injection failed: access violation")
	}
	return fmt.Errorf("injection failed: remote thread exit code %#x", code)
}

// New returns the Injector for the running host platform.
func New() Injector {
	return newHostInjector()
}

func inheritStdio(cmd *exec.Cmd) {
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
}
