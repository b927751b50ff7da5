//go:build linux

// The execshim preload library. Built as a C shared object and injected
// with LD_PRELOAD, it exports interposers for the process-creation entry
// points of the C library and forwards every call into the execshim
// package, which records provenance and then delegates to the real
// primitive.
//
// Build:
//
//	go build -buildmode=c-shared -o libexecshim.so ./shim
//
// The three variadic shapes (execl, execlp, execle) cannot be exported from
// Go and are collected by the C adapters in variadic.c, which funnel into
// execshimExecList below.
package main

import "C"

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/buildtrace/execshim"
)

func main() {}

// init runs when the dynamic linker loads the shared object, standing in
// for a constructor: resolution and configuration failures surface at load
// time, before the host makes its first process-creation call.
func init() {
	// Without LD_PRELOAD in the environment the shim would not propagate
	// into processes started by the host, leaving gaps in the trace.
	if _, ok := os.LookupEnv("LD_PRELOAD"); !ok {
		fmt.Fprintln(os.Stderr, `execshim: getenv: environment variable "LD_PRELOAD" is not available`)
		os.Exit(1)
	}
	execshim.Init()
}

//export execshim_version
func execshim_version() C.int {
	fmt.Fprintf(os.Stderr, "execshim preload library (%s)\n", execshim.Version)
	return 0
}

//export execshimExecList
func execshimExecList(method, path *C.char, argv, envp **C.char) C.int {
	return C.int(execshim.InterposeExec(
		C.GoString(method),
		unsafe.Pointer(path),
		unsafe.Pointer(argv),
		unsafe.Pointer(envp),
	))
}

//export execv
func execv(path *C.char, argv **C.char) C.int {
	return C.int(execshim.InterposeExec(
		"execv",
		unsafe.Pointer(path),
		unsafe.Pointer(argv),
		nil,
	))
}

//export execvp
func execvp(file *C.char, argv **C.char) C.int {
	return C.int(execshim.InterposeExec(
		"execvp",
		unsafe.Pointer(file),
		unsafe.Pointer(argv),
		nil,
	))
}

//export execve
func execve(path *C.char, argv, envp **C.char) C.int {
	return C.int(execshim.InterposeExec(
		"execve",
		unsafe.Pointer(path),
		unsafe.Pointer(argv),
		unsafe.Pointer(envp),
	))
}

//export execvpe
func execvpe(file *C.char, argv, envp **C.char) C.int {
	return C.int(execshim.InterposeExec(
		"execvpe",
		unsafe.Pointer(file),
		unsafe.Pointer(argv),
		unsafe.Pointer(envp),
	))
}

//export posix_spawn
func posix_spawn(pid *C.int, path *C.char, fileActions, attr unsafe.Pointer, argv, envp **C.char) C.int {
	return C.int(execshim.InterposeSpawn(
		"posix_spawn",
		unsafe.Pointer(pid),
		unsafe.Pointer(path),
		fileActions,
		attr,
		unsafe.Pointer(argv),
		unsafe.Pointer(envp),
	))
}

//export posix_spawnp
func posix_spawnp(pid *C.int, file *C.char, fileActions, attr unsafe.Pointer, argv, envp **C.char) C.int {
	return C.int(execshim.InterposeSpawn(
		"posix_spawnp",
		unsafe.Pointer(pid),
		unsafe.Pointer(file),
		fileActions,
		attr,
		unsafe.Pointer(argv),
		unsafe.Pointer(envp),
	))
}
