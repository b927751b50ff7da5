//go:build linux

package execshim

import (
	"sync"

	"github.com/ebitengine/purego"
	"golang.org/x/xerrors"
)

// Every intercepted shape delegates to one of two real primitives: the
// array-based exec primitive and the PATH-searching spawn primitive. The
// environ and errno symbols are data the delegation step needs.
const (
	symExecvpe       = "execvpe"
	symPosixSpawnp   = "posix_spawnp"
	symEnviron       = "environ"
	symErrnoLocation = "__errno_location"
)

// libcNames are tried in order when opening the host C library. Resolving
// from an explicit libc handle, rather than the default lookup scope, keeps
// a preloaded shim from finding its own interposers and calling itself.
var libcNames = []string{"libc.so.6", "libc.so"}

// symbolLookup locates one dynamic symbol in an opened library handle.
type symbolLookup func(handle uintptr, name string) (uintptr, error)

// resolver loads the real process-creation entry points from the host's
// dynamic symbol table at most once per process. Concurrent first callers
// block until the single resolution pass finishes; afterward every field is
// read-only.
type resolver struct {
	once sync.Once
	err  error

	execvpe       uintptr // int execvpe(const char *, char *const *, char *const *)
	posixSpawnp   uintptr // int posix_spawnp(pid_t *, const char *, ..., char *const *, char *const *)
	environ       uintptr // char **environ
	errnoLocation uintptr // int *__errno_location(void)
}

// libc is the process-wide resolved state.
var libc resolver

func (r *resolver) resolve(open func() (uintptr, error), lookup symbolLookup) error {
	r.once.Do(func() {
		handle, err := open()
		if err != nil {
			r.err = err
			return
		}
		for _, sym := range []struct {
			name string
			dst  *uintptr
		}{
			{symExecvpe, &r.execvpe},
			{symPosixSpawnp, &r.posixSpawnp},
			{symEnviron, &r.environ},
			{symErrnoLocation, &r.errnoLocation},
		} {
			addr, err := lookup(handle, sym.name)
			if err != nil {
				r.err = xerrors.Errorf("dlsym: cannot find symbol %q: %w", sym.name, err)
				return
			}
			if addr == 0 {
				r.err = xerrors.Errorf("dlsym: symbol %q resolved to nil", sym.name)
				return
			}
			*sym.dst = addr
		}
	})
	return r.err
}

func openLibc() (uintptr, error) {
	var firstErr error
	for _, name := range libcNames {
		handle, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			return handle, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return 0, xerrors.Errorf("dlopen: cannot open host C library: %w", firstErr)
}
