//go:build linux

package execshim

import (
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// PosixSpawn creates a new process running path, like posix_spawn(3). The
// call always returns: the new pid on success, or the primitive's error code
// as a unix.Errno on failure. fileActions and attr may be nil.
func PosixSpawn(path string, fileActions *FileActions, attr *SpawnAttr, argv, envp []string) (int, error) {
	return spawnShape("posix_spawn", path, fileActions, attr, argv, envp)
}

// PosixSpawnp is PosixSpawn with PATH search for file.
func PosixSpawnp(file string, fileActions *FileActions, attr *SpawnAttr, argv, envp []string) (int, error) {
	return spawnShape("posix_spawnp", file, fileActions, attr, argv, envp)
}

func spawnShape(method, file string, fileActions *FileActions, attr *SpawnAttr, argv, envp []string) (int, error) {
	fileP, err := unix.BytePtrFromString(file)
	if err != nil {
		return 0, xerrors.Errorf("%s: path contains a NUL byte: %w", method, err)
	}
	argvV, err := newVector(argv)
	if err != nil {
		return 0, xerrors.Errorf("%s: %w", method, err)
	}
	if envp == nil {
		envp = os.Environ()
	}
	envV, err := newVector(envp)
	if err != nil {
		return 0, xerrors.Errorf("%s: %w", method, err)
	}

	// The pid address travels as a typed pointer all the way to the call
	// expression, so the real primitive writes the child pid into this
	// variable even if the goroutine stack moves along the way.
	var pid int32
	ret := interposeSpawn(
		method,
		unsafe.Pointer(&pid),
		unsafe.Pointer(fileP),
		fileActions.raw(), attr.raw(),
		argvV, envV,
	)
	runtime.KeepAlive(fileP)
	if ret != 0 {
		return 0, unix.Errno(ret)
	}
	return int(pid), nil
}
