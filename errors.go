package execshim

import (
	"runtime"

	"golang.org/x/xerrors"
)

var (
	errBadTemplate = xerrors.New("output template does not contain a placeholder run")

	errUnsupportedOS = xerrors.Errorf(`%q is an unsupported OS, only "linux" is supported`, runtime.GOOS)
)

// Suppress unused variable errors. These variables are used in files that are
// not included in all builds.
var (
	_ = errBadTemplate
	_ = errUnsupportedOS
)
