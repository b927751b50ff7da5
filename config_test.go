package execshim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeEnv(env map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := loadConfig(fakeEnv(map[string]string{
		EnvOutputDir: dir,
	}))
	require.NoError(t, err)
	require.Equal(t, dir, cfg.outputDir)
	require.Equal(t, DefaultOutputTemplate, cfg.template)
}

func TestLoadConfigCustomTemplate(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig(fakeEnv(map[string]string{
		EnvOutputDir:      t.TempDir(),
		EnvOutputTemplate: "trace.XXXXXXXXXX.rec",
	}))
	require.NoError(t, err)
	require.Equal(t, "trace.XXXXXXXXXX.rec", cfg.template)
}

func TestLoadConfigMissingDir(t *testing.T) {
	t.Parallel()

	_, err := loadConfig(fakeEnv(nil))
	require.Error(t, err)
	require.Contains(t, err.Error(), EnvOutputDir, "the diagnostic must name the missing variable")
}

func TestLoadConfigUnusableDir(t *testing.T) {
	t.Parallel()

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		_, err := loadConfig(fakeEnv(map[string]string{
			EnvOutputDir: filepath.Join(t.TempDir(), "does-not-exist"),
		}))
		require.Error(t, err)
	})

	t.Run("not a directory", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "plain-file")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

		_, err := loadConfig(fakeEnv(map[string]string{
			EnvOutputDir: path,
		}))
		require.Error(t, err)
	})
}

func TestLoadConfigBadTemplate(t *testing.T) {
	t.Parallel()

	_, err := loadConfig(fakeEnv(map[string]string{
		EnvOutputDir:      t.TempDir(),
		EnvOutputTemplate: "trace.XXXXX", // one X short
	}))
	require.Error(t, err)
	require.ErrorIs(t, err, errBadTemplate)
}

func TestCheckDirEmptyIsListable(t *testing.T) {
	t.Parallel()

	// An empty directory is usable; only open/list failures are errors.
	require.NoError(t, checkDir(t.TempDir()))
}
