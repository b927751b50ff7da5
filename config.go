package execshim

import (
	"io"
	"os"

	"golang.org/x/xerrors"
)

// processConfig holds the settings read from the process environment. It is
// loaded at most once per process and never mutated afterward.
type processConfig struct {
	// outputDir receives one record file per intercepted call.
	outputDir string
	// template names record files; its placeholder run is replaced with a
	// unique suffix per file.
	template string
}

// lookupFunc mirrors os.LookupEnv so tests can substitute the environment.
type lookupFunc func(key string) (string, bool)

// loadConfig reads the output directory and the optional file name template
// from the environment. The directory is required and must be listable; a
// missing or unusable value is a configuration error, not a default.
func loadConfig(lookup lookupFunc) (*processConfig, error) {
	dir, ok := lookup(EnvOutputDir)
	if !ok || dir == "" {
		return nil, xerrors.Errorf("getenv: environment variable %q is not available", EnvOutputDir)
	}
	if err := checkDir(dir); err != nil {
		return nil, err
	}

	template := DefaultOutputTemplate
	if t, ok := lookup(EnvOutputTemplate); ok && t != "" {
		template = t
	}
	if _, _, err := templateRun(template); err != nil {
		return nil, xerrors.Errorf("environment variable %q: %w", EnvOutputTemplate, err)
	}

	return &processConfig{outputDir: dir, template: template}, nil
}

// checkDir verifies that dir exists and is listable, the way the shim will
// need it to be when it creates record files later.
func checkDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return xerrors.Errorf("opendir: cannot open directory %s: %w", dir, err)
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && err != io.EOF {
		return xerrors.Errorf("opendir: cannot list directory %s: %w", dir, err)
	}
	return nil
}
