//go:build linux

package execshim

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestResolverResolvesOnce(t *testing.T) {
	t.Parallel()

	var (
		opens   atomic.Int64
		lookups atomic.Int64
	)
	open := func() (uintptr, error) {
		opens.Add(1)
		return 1, nil
	}
	lookup := func(handle uintptr, name string) (uintptr, error) {
		lookups.Add(1)
		return 0x1000 + uintptr(lookups.Load()), nil
	}

	// N concurrent first callers must trigger exactly one resolution pass
	// and all observe the fully resolved state.
	const n = 32
	r := &resolver{}
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- r.resolve(open, lookup)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.EqualValues(t, 1, opens.Load(), "the library must be opened exactly once")
	require.EqualValues(t, 4, lookups.Load(), "each symbol must be resolved exactly once")
	require.NotZero(t, r.execvpe)
	require.NotZero(t, r.posixSpawnp)
	require.NotZero(t, r.environ)
	require.NotZero(t, r.errnoLocation)

	// A later call re-resolves nothing.
	require.NoError(t, r.resolve(open, lookup))
	require.EqualValues(t, 1, opens.Load())
	require.EqualValues(t, 4, lookups.Load())
}

func TestResolverMissingSymbol(t *testing.T) {
	t.Parallel()

	open := func() (uintptr, error) { return 1, nil }
	lookup := func(handle uintptr, name string) (uintptr, error) {
		if name == symPosixSpawnp {
			return 0, xerrors.New("undefined symbol")
		}
		return 0x1000, nil
	}

	r := &resolver{}
	err := r.resolve(open, lookup)
	require.Error(t, err)
	require.Contains(t, err.Error(), symPosixSpawnp, "the diagnostic must name the missing symbol")

	// The failure is cached; the resolver never half-initializes later.
	require.Equal(t, err, r.resolve(open, lookup))
}

func TestResolverOpenFailure(t *testing.T) {
	t.Parallel()

	open := func() (uintptr, error) { return 0, xerrors.New("no such library") }
	lookup := func(handle uintptr, name string) (uintptr, error) {
		t.Fatal("lookup must not run when the library cannot be opened")
		return 0, nil
	}

	r := &resolver{}
	require.Error(t, r.resolve(open, lookup))
}

func TestOpenLibcFindsHostLibrary(t *testing.T) {
	t.Parallel()

	handle, err := openLibc()
	require.NoError(t, err)
	require.NotZero(t, handle)
}
