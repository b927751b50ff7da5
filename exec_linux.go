//go:build linux

package execshim

import (
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// Execl replaces the current process image with path, passing the trailing
// strings as the new argv (args[0] becomes the program's argv[0]). Mirrors
// execl(3): the call returns only on failure, with the real primitive's
// errno, and the inherited environment is passed along.
func Execl(path string, args ...string) error {
	return execShape("execl", path, args, nil)
}

// Execlp is Execl with PATH search for file.
func Execlp(file string, args ...string) error {
	return execShape("execlp", file, args, nil)
}

// Execle is the environment-carrying variadic shape: envp replaces the
// inherited environment of the new image.
func Execle(path string, envp []string, args ...string) error {
	return execShape("execle", path, args, envp)
}

// Execv replaces the current process image with path and the given argument
// vector. Returns only on failure.
func Execv(path string, argv []string) error {
	return execShape("execv", path, argv, nil)
}

// Execvp is Execv with PATH search for file.
func Execvp(file string, argv []string) error {
	return execShape("execvp", file, argv, nil)
}

// Execve is Execv with an explicit environment vector of "KEY=VALUE"
// strings.
func Execve(path string, argv []string, envp []string) error {
	return execShape("execve", path, argv, envp)
}

// Execvpe combines PATH search and an explicit environment vector.
func Execvpe(file string, argv []string, envp []string) error {
	return execShape("execvpe", file, argv, envp)
}

// execShape normalizes one exec-family call into the canonical request. A
// nil envp selects the caller's inherited environment.
func execShape(method, file string, argv, envp []string) error {
	fileP, err := unix.BytePtrFromString(file)
	if err != nil {
		return xerrors.Errorf("%s: path contains a NUL byte: %w", method, err)
	}
	argvV, err := newVector(argv)
	if err != nil {
		return xerrors.Errorf("%s: %w", method, err)
	}
	if envp == nil {
		envp = os.Environ()
	}
	envV, err := newVector(envp)
	if err != nil {
		return xerrors.Errorf("%s: %w", method, err)
	}

	errno := interpose(method, unsafe.Pointer(fileP), argvV, envV)
	runtime.KeepAlive(fileP)
	if errno != 0 {
		return errno
	}
	return nil
}

// InterposeExec is the pointer-level exec entry point used by the preload
// artifact. file, argv and envp are the caller's original NULL-terminated C
// pointers and are delegated unmodified; a nil envp selects the host's live
// environ. Mirrors the C contract: the return value is always -1, with errno
// left set by the real primitive on the calling thread.
func InterposeExec(method string, file, argv, envp unsafe.Pointer) int32 {
	interpose(method, file, vectorFromRaw(argv), vectorFromRaw(envp))
	return -1
}

// InterposeSpawn is the pointer-level spawn entry point used by the preload
// artifact. All pointers pass through byte-for-byte; the return value is the
// real primitive's error code, zero on success.
func InterposeSpawn(method string, pid, file, fileActions, attr, argv, envp unsafe.Pointer) int32 {
	return interposeSpawn(method, pid, file, fileActions, attr, vectorFromRaw(argv), vectorFromRaw(envp))
}
