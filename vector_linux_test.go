//go:build linux

package execshim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVectorRoundTrip(t *testing.T) {
	t.Parallel()

	strs := []string{"echo", "a b", "", "argv0-differs", "trailing space "}
	v, err := newVector(strs)
	require.NoError(t, err)
	require.NotNil(t, v.raw)

	// The terminator slot is always present and always nil.
	require.Len(t, v.ptrs, len(strs)+1)
	require.Nil(t, v.ptrs[len(strs)])

	// Decoding the raw form recovers the original strings in order.
	decoded := vectorFromRaw(v.raw)
	require.Equal(t, strs, decoded.strs)
}

func TestVectorEmpty(t *testing.T) {
	t.Parallel()

	v, err := newVector(nil)
	require.NoError(t, err)
	require.NotNil(t, v.raw, "even an empty vector carries its terminator")
	require.Len(t, v.ptrs, 1)
	require.Nil(t, v.ptrs[0])

	require.Empty(t, vectorFromRaw(v.raw).strs)
}

func TestVectorRejectsInteriorNUL(t *testing.T) {
	t.Parallel()

	_, err := newVector([]string{"fine", "bad\x00arg"})
	require.Error(t, err)
}

func TestVectorFromRawNil(t *testing.T) {
	t.Parallel()

	v := vectorFromRaw(nil)
	require.Nil(t, v.raw)
	require.Empty(t, v.strs)
}
