//go:build linux

package execshim

import (
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/unix"
)

// loaderPointer reinterprets an address handed out by the dynamic loader (a
// dlsym'd data symbol, or a value a C function returned) as a pointer. Such
// addresses never refer to Go memory, so the conversion cannot be
// invalidated by the runtime moving anything.
func loaderPointer(addr uintptr) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&addr))
}

// currentEnviron reads the live value of the host's environ array, for call
// shapes that inherit the caller's environment. Read fresh per call: the
// host may have grown or replaced its environment since load.
func currentEnviron() unsafe.Pointer {
	return *(*unsafe.Pointer)(loaderPointer(libc.environ))
}

// lastErrno reads the calling thread's errno through the resolved
// __errno_location, so failures keep the real primitive's error vocabulary.
func lastErrno() unix.Errno {
	loc, _, _ := purego.SyscallN(libc.errnoLocation)
	return unix.Errno(*(*int32)(loaderPointer(loc)))
}

// delegateExec invokes the real array-based exec primitive with the original
// file, argv and envp, exactly as received. On success the process image is
// replaced and the call never returns; on failure the primitive's errno is
// returned untranslated.
//
// Arguments stay typed pointers until the call expression itself, so the
// runtime keeps every referent valid (and its address current) up to the
// moment of the call.
func delegateExec(file, argv, envp unsafe.Pointer) unix.Errno {
	// errno is thread-local; the call and the errno read must not be
	// rescheduled onto different threads.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	purego.SyscallN(libc.execvpe, uintptr(file), uintptr(argv), uintptr(envp))
	return lastErrno()
}

// delegateSpawn invokes the real spawn primitive. The file actions and
// attribute pointers pass through byte-for-byte. The return value is the
// primitive's own error code, zero on success; the spawned pid is written
// through the pid pointer, which must therefore stay a typed pointer until
// the call expression so the write lands in the caller's live variable.
func delegateSpawn(pid, file, fileActions, attr, argv, envp unsafe.Pointer) int32 {
	ret, _, _ := purego.SyscallN(libc.posixSpawnp,
		uintptr(pid), uintptr(file), uintptr(fileActions), uintptr(attr), uintptr(argv), uintptr(envp))
	return int32(ret)
}
