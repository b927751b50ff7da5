//go:build linux

package execshim

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// vector is a sentinel-terminated array of C string pointers plus its
// decoded Go view. The raw form is what gets delegated; the decoded form is
// what gets logged. A vector built from Go strings owns its backing memory,
// which must stay reachable until the delegated call has returned (or
// replaced the process image); see keepAlive.
type vector struct {
	strs []string
	// raw points at the first element of a NULL-terminated char* array, or
	// is nil for "use the caller's inherited environment".
	raw  unsafe.Pointer
	ptrs []*byte
}

// newVector builds an owned, NUL-terminated C rendering of strs. The
// terminator slot is always present, so the vector's length is recoverable
// without guessing.
func newVector(strs []string) (*vector, error) {
	ptrs := make([]*byte, len(strs)+1)
	for i, s := range strs {
		p, err := unix.BytePtrFromString(s)
		if err != nil {
			return nil, xerrors.Errorf("string %d contains a NUL byte: %w", i, err)
		}
		ptrs[i] = p
	}
	return &vector{
		strs: strs,
		raw:  unsafe.Pointer(&ptrs[0]),
		ptrs: ptrs,
	}, nil
}

// vectorFromRaw wraps a caller-owned NULL-terminated char* array, decoding a
// Go view of it for logging while retaining the original pointer for
// delegation.
func vectorFromRaw(raw unsafe.Pointer) *vector {
	v := &vector{raw: raw}
	if raw == nil {
		return v
	}
	for i := 0; ; i++ {
		p := *(**byte)(unsafe.Add(raw, i*int(unsafe.Sizeof(raw))))
		if p == nil {
			break
		}
		v.strs = append(v.strs, unix.BytePtrToString(p))
	}
	return v
}

// keepAlive pins the Go-owned backing of the vector. Call it after the raw
// pointer has been passed to the real primitive for the last time.
func (v *vector) keepAlive() {
	runtime.KeepAlive(v.ptrs)
}
