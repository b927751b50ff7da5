// Package execshim observes the process-creation calls of a program and
// records provenance for each one. Every intercepted call shape (the exec
// family and the two posix_spawn variants) is normalized, described in a
// single-line record, and then delegated to the real C library primitive
// with the caller's original arguments, so observed behavior is unchanged.
//
// The package can be used two ways:
//
//   - Imported directly, via the Go-native entry points (Execv, Execvp,
//     PosixSpawnp, ...), by Go programs that want their own process
//     creation recorded.
//   - Injected into an arbitrary program with LD_PRELOAD, via the c-shared
//     artifact in ./shim, which exports the libc symbol names and forwards
//     into InterposeExec and InterposeSpawn.
//
// Records are written to one freshly created, uniquely named file per call
// inside the directory named by EXECSHIM_OUTPUT_DIR. Building with the
// execshim_debug tag switches every record to stderr instead and skips the
// directory configuration entirely.
package execshim

// Version identifies the shim in diagnostics and in the preload library's
// version banner.
const Version = "1.0.0"

const (
	// EnvOutputDir names the directory that receives one record file per
	// intercepted call. Required unless built with the execshim_debug tag;
	// a missing or unusable directory is fatal at initialization.
	EnvOutputDir = "EXECSHIM_OUTPUT_DIR"

	// EnvOutputTemplate optionally overrides the record file name template.
	// The template must contain a run of at least six 'X' placeholders,
	// which is replaced with a unique suffix when each file is created.
	EnvOutputTemplate = "EXECSHIM_OUTPUT_TEMPLATE"

	// DefaultOutputTemplate is the file name template used when
	// EnvOutputTemplate is not set.
	DefaultOutputTemplate = "execshim-exec.XXXXXX"
)
