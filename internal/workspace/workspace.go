// Package workspace is the metadata collaborator SPEC_FULL.md §1 treats as
// external: it enumerates the workspace's "bin" targets and the local
// source directories a change to which should trigger a reload, standing
// in for the reference implementation's `cargo metadata` call.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/go/packages"
)

// BinTarget is one (package_name, bin_path) pair from SPEC_FULL.md §4.4
// step 2.
type BinTarget struct {
	PackageName string
	Dir         string
	BinPath     string
}

// Loader queries a Go module's package graph with
// golang.org/x/tools/go/packages, the workspace-metadata equivalent `cargo
// metadata` provided in the reference implementation.
type Loader struct {
	// Root is the module root directory packages.Load runs from.
	Root string
}

// BinTargets enumerates every "main" package in the module and computes the
// bin_path each would be built to under targetDir, joining
// target_directory/(release|debug)/bin_name exactly as SPEC_FULL.md §4.4
// step 2 specifies.
func (l *Loader) BinTargets(targetDir string, binSuffix string) ([]BinTarget, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedModule,
		Dir:  l.Root,
	}

	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, fmt.Errorf("loading workspace packages: %w", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, fmt.Errorf("workspace contains packages with load errors")
	}

	var targets []BinTarget
	for _, pkg := range pkgs {
		if pkg.Name != "main" || len(pkg.GoFiles) == 0 {
			continue
		}

		dir := filepath.Dir(pkg.GoFiles[0])
		name := filepath.Base(dir)
		targets = append(targets, BinTarget{
			PackageName: name,
			Dir:         dir,
			BinPath:     filepath.Join(targetDir, name+binSuffix),
		})
	}

	return targets, nil
}

// SelectBinTarget implements SPEC_FULL.md §4.4 step 2's selection rule: an
// explicit --bin wins; otherwise exactly one target must exist.
func SelectBinTarget(targets []BinTarget, bin string) (BinTarget, error) {
	if bin != "" {
		for _, t := range targets {
			if t.PackageName == bin {
				return t, nil
			}
		}
		return BinTarget{}, fmt.Errorf("no bin target named %q", bin)
	}

	if len(targets) == 1 {
		return targets[0], nil
	}

	if len(targets) == 0 {
		return BinTarget{}, fmt.Errorf("no bin targets found in workspace")
	}

	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.PackageName
	}
	return BinTarget{}, fmt.Errorf("multiple binaries (%v), specify --bin", names)
}

// WatchDirs returns every local source directory the module's packages live
// in, the set the Watch Loop subscribes to (SPEC_FULL.md §4.5).
func (l *Loader) WatchDirs() ([]string, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles,
		Dir:  l.Root,
	}

	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, fmt.Errorf("loading workspace packages: %w", err)
	}

	seen := make(map[string]bool)
	var dirs []string
	for _, pkg := range pkgs {
		for _, f := range pkg.GoFiles {
			dir := filepath.Dir(f)
			if seen[dir] {
				continue
			}
			if _, err := os.Stat(dir); err != nil {
				continue
			}
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	return dirs, nil
}
