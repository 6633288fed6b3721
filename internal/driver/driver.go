// Package driver implements the Reload Driver of SPEC_FULL.md §4.4: the
// five-step sequence that builds the reload library, locates the host
// binary, resolves symbols in both images, and spawns the target with the
// Agent Library injected.
package driver

import (
	"context"
	"fmt"

	"github.com/xyproto/plonk/internal/build"
	"github.com/xyproto/plonk/internal/injector"
	"github.com/xyproto/plonk/internal/options"
	"github.com/xyproto/plonk/internal/symtab"
	"github.com/xyproto/plonk/internal/workspace"
)

// Driver orchestrates one reload iteration, SPEC_FULL.md §4.4's run(Options).
type Driver struct {
	Builder  build.Builder
	Loader   *workspace.Loader
	Injector injector.Injector
	AgentLib string // path to the built Agent Library, resolved once by Prepare
	Logf     func(format string, args ...any)
}

// Run executes the five-step sequence and waits for the spawned child to
// exit, propagating its error.
func (d *Driver) Run(ctx context.Context, opts options.Options) error {
	artifact, err := d.Builder.BuildLibrary(ctx, opts.Package, opts.Release, opts.Verbose)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	gb, ok := d.Builder.(interface{ TargetDir(bool) string })
	if !ok {
		return fmt.Errorf("build collaborator does not expose a target directory")
	}
	targets, err := d.Loader.BinTargets(gb.TargetDir(opts.Release), build.BinarySuffix())
	if err != nil {
		return fmt.Errorf("querying workspace metadata: %w", err)
	}
	target, err := workspace.SelectBinTarget(targets, opts.Bin)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAmbiguousBinary, err)
	}

	decoratedOld, err := symtab.Resolve(target.BinPath, opts.Package, opts.Symbol)
	if err != nil {
		return fmt.Errorf("%w: %s in %s", ErrSymbolNotFound, opts.Symbol, target.BinPath)
	}
	decoratedNew, err := symtab.Resolve(artifact.LibraryPath, opts.Package, opts.Symbol)
	if err != nil {
		return fmt.Errorf("%w: %s in %s", ErrSymbolNotFound, opts.Symbol, artifact.LibraryPath)
	}

	ic := injector.Context{
		BinPath:     target.BinPath,
		LibraryPath: artifact.LibraryPath,
		Symbol:      decoratedOld,
		NewSymbol:   decoratedNew,
		Verbose:     opts.Verbose,
		Args:        opts.Forward,
	}

	d.logf("spawning %s with %s -> %s", target.BinPath, decoratedOld, decoratedNew)

	cmd, err := d.Injector.Spawn(ctx, ic)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInjectionFailed, err)
	}

	return cmd.Wait()
}

func (d *Driver) logf(format string, args ...any) {
	if d.Logf != nil {
		d.Logf(format, args...)
	}
}
