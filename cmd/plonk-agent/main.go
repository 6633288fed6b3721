// Command plonk-agent is the Agent Library of SPEC_FULL.md §4.2: built
// with `-buildmode=c-shared`, it runs its init routine once on load inside
// the target process and rewrites the old function's prologue with a jump
// into the freshly built reload library.
//
// main is unused at runtime (the dynamic loader never calls it); it exists
// only because -buildmode=c-shared requires package main.
package main

func main() {}
