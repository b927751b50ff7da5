//go:build !linux

package execshim

import "unsafe"

// Init does nothing on unsupported platforms; every entry point fails with
// errUnsupportedOS instead.
func Init() {}

func Execl(path string, args ...string) error                 { return errUnsupportedOS }
func Execlp(file string, args ...string) error                { return errUnsupportedOS }
func Execle(path string, envp []string, args ...string) error { return errUnsupportedOS }
func Execv(path string, argv []string) error                  { return errUnsupportedOS }
func Execvp(file string, argv []string) error                 { return errUnsupportedOS }
func Execve(path string, argv, envp []string) error           { return errUnsupportedOS }
func Execvpe(file string, argv, envp []string) error          { return errUnsupportedOS }

func PosixSpawn(path string, fileActions *FileActions, attr *SpawnAttr, argv, envp []string) (int, error) {
	return 0, errUnsupportedOS
}

func PosixSpawnp(file string, fileActions *FileActions, attr *SpawnAttr, argv, envp []string) (int, error) {
	return 0, errUnsupportedOS
}

func InterposeExec(method string, file, argv, envp unsafe.Pointer) int32 { return -1 }

func InterposeSpawn(method string, pid, file, fileActions, attr, argv, envp unsafe.Pointer) int32 {
	return -1
}
