package execshim

import "unsafe"

// FileActions is an opaque handle to a caller-owned
// posix_spawn_file_actions_t. The shim never inspects or modifies it; it is
// handed to the real primitive byte-for-byte. A nil *FileActions stands for
// a NULL pointer.
type FileActions struct {
	ptr unsafe.Pointer
}

// FileActionsFromPointer wraps a caller-owned posix_spawn_file_actions_t.
func FileActionsFromPointer(p unsafe.Pointer) *FileActions {
	return &FileActions{ptr: p}
}

// SpawnAttr is an opaque handle to a caller-owned posix_spawnattr_t, with
// the same pass-through contract as FileActions.
type SpawnAttr struct {
	ptr unsafe.Pointer
}

// SpawnAttrFromPointer wraps a caller-owned posix_spawnattr_t.
func SpawnAttrFromPointer(p unsafe.Pointer) *SpawnAttr {
	return &SpawnAttr{ptr: p}
}

func (a *FileActions) raw() unsafe.Pointer {
	if a == nil {
		return nil
	}
	return a.ptr
}

func (a *SpawnAttr) raw() unsafe.Pointer {
	if a == nil {
		return nil
	}
	return a.ptr
}
