//go:build linux

package execshim

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/unix"
)

var (
	initOnce  sync.Once
	outTarget target
)

// Init resolves the real primitives and loads the configuration. The first
// intercepted call triggers it automatically; calling it earlier (for
// example from a load-time constructor) surfaces fatal misconfiguration
// before the host's first process-creation attempt. Safe for concurrent use:
// exactly one caller performs the work, everyone else blocks until the fully
// initialized state is visible.
func Init() {
	initOnce.Do(func() {
		if err := libc.resolve(openLibc, purego.Dlsym); err != nil {
			abortf("%v", err)
		}
		if debugMode {
			outTarget = newTarget(nil)
			return
		}
		cfg, err := loadConfig(os.LookupEnv)
		if err != nil {
			abortf("%v", err)
		}
		outTarget = newTarget(cfg)
	})
}

// abortf writes a diagnostic to the process's stderr and terminates. There
// is no degraded mode: without the real primitive the shim cannot delegate,
// and without a record destination it cannot leave evidence.
func abortf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "execshim: "+format+"\n", args...)
	os.Exit(1)
}

// logRecord emits the provenance record for one intercepted call, before the
// real primitive is invoked, so evidence of the attempt exists even if the
// delegated call fails. The parent pid and working directory are queried
// fresh on every call; both can change over a process's lifetime. A write
// failure is fatal, same as a configuration error: a silently lost record is
// worse than an aborted run.
func logRecord(method string, args []string) {
	pwd, err := os.Getwd()
	if err != nil {
		abortf("getwd: %v", err)
	}
	rec := Record{
		Method:    method,
		PPID:      unix.Getppid(),
		PID:       unix.Getpid(),
		PWD:       pwd,
		Arguments: args,
	}
	if err := outTarget.writeRecord(rec.AppendWire(nil)); err != nil {
		abortf("%v", err)
	}
}

// interpose is the canonical path every exec-family shape funnels into once
// its adapter has normalized the call: log, then delegate the original
// request. It returns only when the delegated call fails.
func interpose(method string, file unsafe.Pointer, argv, envp *vector) unix.Errno {
	Init()
	logRecord(method, argv.strs)

	env := envp.raw
	if env == nil {
		env = currentEnviron()
	}
	errno := delegateExec(file, argv.raw, env)

	argv.keepAlive()
	envp.keepAlive()
	return errno
}

// interposeSpawn mirrors interpose for the spawn-family shapes. The opaque
// file-actions and attribute pointers are never inspected or modified here.
// The return value is the primitive's own error code, zero on success.
func interposeSpawn(method string, pid, file, fileActions, attr unsafe.Pointer, argv, envp *vector) int32 {
	Init()
	logRecord(method, argv.strs)

	env := envp.raw
	if env == nil {
		env = currentEnviron()
	}
	ret := delegateSpawn(pid, file, fileActions, attr, argv.raw, env)

	argv.keepAlive()
	envp.keepAlive()
	return ret
}
