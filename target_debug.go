//go:build execshim_debug

package execshim

// debugMode routes records to the diagnostic stream and skips the output
// directory configuration. Selected at build time with the execshim_debug
// tag; the two modes are never switched at runtime.
const debugMode = true

func newTarget(_ *processConfig) target {
	return streamTarget{}
}
