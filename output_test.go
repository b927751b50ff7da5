package execshim

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniqueName(t *testing.T) {
	t.Parallel()

	name, err := uniqueName("execshim-exec.XXXXXX", 1)
	require.NoError(t, err)
	require.Equal(t, "execshim-exec.000001", name)

	name, err = uniqueName("trace.XXXXXXX.rec", 36)
	require.NoError(t, err)
	require.Equal(t, "trace.0000010.rec", name, "suffix is base-36 and keeps the template tail")

	_, err = uniqueName("short.XXXXX", 1)
	require.ErrorIs(t, err, errBadTemplate)
}

func TestUniqueNamePicksLastRun(t *testing.T) {
	t.Parallel()

	// Only the last qualifying run is replaced.
	name, err := uniqueName("XXXXXX-mid-XXXXXX", 35)
	require.NoError(t, err)
	require.Equal(t, "XXXXXX-mid-00000z", name)
}

func TestUniqueNameDistinct(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 10000)
	for i := uint64(1); i <= 10000; i++ {
		name, err := uniqueName(DefaultOutputTemplate, i)
		require.NoError(t, err)
		_, dup := seen[name]
		require.False(t, dup, "name %q produced twice", name)
		seen[name] = struct{}{}
	}
}

func TestFileTargetWriteRecord(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := &fileTarget{dir: dir, template: DefaultOutputTemplate}

	require.NoError(t, target.writeRecord([]byte("first\n")))
	require.NoError(t, target.writeRecord([]byte("second\n")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		require.True(t, strings.HasPrefix(entry.Name(), "execshim-exec."))
	}
}

func TestFileTargetSkipsExistingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := &fileTarget{dir: dir, template: DefaultOutputTemplate}

	// Occupy the first generated name, as another process sharing the
	// directory would.
	name, err := uniqueName(DefaultOutputTemplate, 1)
	require.NoError(t, err)
	taken := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(taken, []byte("taken\n"), 0o600))

	require.NoError(t, target.writeRecord([]byte("record\n")))

	data, err := os.ReadFile(taken)
	require.NoError(t, err)
	require.Equal(t, "taken\n", string(data), "an existing file is never overwritten")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestFileTargetConcurrent(t *testing.T) {
	t.Parallel()

	const (
		workers = 8
		each    = 50
	)

	dir := t.TempDir()
	target := &fileTarget{dir: dir, template: DefaultOutputTemplate}

	var wg sync.WaitGroup
	errs := make(chan error, workers*each)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				errs <- target.writeRecord([]byte("line\n"))
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, workers*each, "every call must land in its own file")
}

func TestStreamTargetNeverCloses(t *testing.T) {
	t.Parallel()

	// Two writes through the stream target must both succeed; the stream
	// stays open for the process lifetime.
	st := streamTarget{}
	require.NoError(t, st.writeRecord([]byte("one\n")))
	require.NoError(t, st.writeRecord([]byte("two\n")))
}
