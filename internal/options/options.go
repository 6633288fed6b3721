// Package options holds the configuration record threaded from the CLI
// frontend through the watch loop into each reload iteration.
package options

// Options is the Options record from SPEC_FULL.md §3. It is created once
// per invocation, treated as immutable for the duration of a single reload
// iteration, and has Watch suppressed by the watch loop before it invokes
// the reload action, so the action can never recurse back into Watch.
type Options struct {
	// Verbose enables diagnostic logging.
	Verbose bool
	// Package is the source unit name to build (default ".").
	Package string
	// Bin optionally selects a bin target when the workspace has more
	// than one.
	Bin string
	// Release selects the release optimization profile.
	Release bool
	// Symbol is the logical function name to redirect. Required for run.
	Symbol string
	// Watch enables change-triggered reload.
	Watch bool
	// Forward holds the ordered, opaque arguments passed through to the
	// spawned target, taken verbatim from everything after a literal "--".
	Forward []string
}

// WithoutWatch returns a copy of o with Watch forced off, the exact
// transformation the watch loop applies before invoking its action so a
// reload iteration triggered by a file change cannot itself start a second
// watcher.
func (o Options) WithoutWatch() Options {
	o.Watch = false
	return o
}
