package driver

import "errors"

// Error taxonomy from SPEC_FULL.md §7, unchanged from spec.md §7:
//   (i)   build collaborator failure (fatal to the iteration)
//   (ii)  symbol not found (fatal to the iteration)
//   (iii) injection failure (fatal to the iteration; includes the Windows
//         access-violation translation)
//   (iv)  ambiguous bin target (fatal to the iteration)
//   (v)   watcher construction/subscription failure (fatal to the loop)
var (
	ErrBuildFailed     = errors.New("build collaborator failed")
	ErrSymbolNotFound  = errors.New("symbol not found")
	ErrInjectionFailed = errors.New("injection failed")
	ErrAmbiguousBinary = errors.New("multiple binaries, specify --bin")
)

// TODO: See FAQ for the recommended operator response to repeated
// injection failures on locked-down targets. Left unresolved per the
// reference implementation's own placeholder.
