package execshim

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/xerrors"
)

// minTemplateRun is the shortest accepted placeholder run in a file name
// template, matching mkstemp's six-X convention.
const minTemplateRun = 6

// target receives one serialized record line per intercepted call.
type target interface {
	writeRecord(line []byte) error
}

// streamTarget writes every record to the process's diagnostic stream. The
// stream is shared with the host program and is never closed here.
type streamTarget struct{}

func (streamTarget) writeRecord(line []byte) error {
	_, err := os.Stderr.Write(line)
	if err != nil {
		return xerrors.Errorf("write record to stderr: %w", err)
	}
	return nil
}

// fileTarget creates one uniquely named file per record inside dir. Names
// come from a process-wide counter, so no two calls in one process can ever
// produce the same path; O_EXCL guards against other processes sharing the
// directory.
type fileTarget struct {
	dir      string
	template string
	seq      atomic.Uint64
}

func (t *fileTarget) writeRecord(line []byte) error {
	for {
		name, err := uniqueName(t.template, t.seq.Add(1))
		if err != nil {
			return err
		}
		path := filepath.Join(t.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if xerrors.Is(err, os.ErrExist) {
			// Another process holds this name; advance and retry.
			continue
		}
		if err != nil {
			return xerrors.Errorf("create record file %s: %w", path, err)
		}

		_, werr := f.Write(line)
		cerr := f.Close()
		if werr != nil {
			return xerrors.Errorf("write record file %s: %w", path, werr)
		}
		if cerr != nil {
			return xerrors.Errorf("close record file %s: %w", path, cerr)
		}
		return nil
	}
}

// uniqueName substitutes the template's placeholder run with the base-36
// rendering of n, zero-padded to the run's length.
func uniqueName(template string, n uint64) (string, error) {
	start, length, err := templateRun(template)
	if err != nil {
		return "", err
	}
	suffix := strconv.FormatUint(n, 36)
	if len(suffix) < length {
		suffix = strings.Repeat("0", length-len(suffix)) + suffix
	}
	return template[:start] + suffix + template[start+length:], nil
}

// templateRun locates the last run of at least minTemplateRun 'X' bytes in
// the template and returns its offset and length.
func templateRun(template string) (start, length int, err error) {
	end := len(template)
	for i := len(template) - 1; i >= -1; i-- {
		if i >= 0 && template[i] == 'X' {
			continue
		}
		if end-(i+1) >= minTemplateRun {
			return i + 1, end - (i + 1), nil
		}
		end = i
	}
	return 0, 0, xerrors.Errorf("%q: %w (need %d or more consecutive 'X' bytes)", template, errBadTemplate, minTemplateRun)
}
