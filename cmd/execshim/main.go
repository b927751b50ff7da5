package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/buildtrace/execshim"
)

// defaultLibNames are tried next to the executable and in the working
// directory when --lib is not given.
var defaultLibNames = []string{
	"libexecshim.so",
}

func main() {
	err := rootCmd().Execute()
	if err != nil {
		var exitErr *exec.ExitError
		if xerrors.As(err, &exitErr) {
			// The traced command failed; its records were already printed.
			os.Exit(exitErr.ExitCode())
		}
		log.Fatalf("failed to run command: %+v", err)
	}
}

func rootCmd() *cobra.Command {
	var (
		libPath      string
		traceDir     string
		outputFormat string
		keep         bool
	)

	cmd := &cobra.Command{
		Use:   "execshim [flags] -- command [args...]",
		Short: "execshim runs a command with the exec interposition library preloaded and prints every recorded process-creation call.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputFormat != "text" && outputFormat != "json" {
				return xerrors.Errorf(`output format must be "text" or "json", got %q`, outputFormat)
			}
			return run(cmd.Context(), libPath, traceDir, outputFormat, keep, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&libPath, "lib", "l", "", "Path to the preload library (defaults to libexecshim.so next to this executable)")
	cmd.Flags().StringVarP(&traceDir, "dir", "d", "", "Directory for record files (defaults to a fresh session directory under the system temp dir)")
	cmd.Flags().StringVarP(&outputFormat, "output", "f", "text", "Output format, text or json")
	cmd.Flags().BoolVarP(&keep, "keep", "k", false, "Keep the session directory and its record files after printing")

	return cmd
}

func findLib() (string, error) {
	self, err := os.Executable()
	if err == nil {
		for _, name := range defaultLibNames {
			path := filepath.Join(filepath.Dir(self), name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	for _, name := range defaultLibNames {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", xerrors.New("could not find the preload library, use --lib")
}

func run(ctx context.Context, libPath, traceDir, outputFormat string, keep bool, argv []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if libPath == "" {
		libPath, err = findLib()
		if err != nil {
			return err
		}
		log.Printf("using detected preload library %q", libPath)
	}
	// LD_PRELOAD must survive the traced command changing directories.
	libPath, err = filepath.Abs(libPath)
	if err != nil {
		return xerrors.Errorf("resolve library path: %w", err)
	}

	if traceDir == "" {
		traceDir = filepath.Join(os.TempDir(), "execshim-"+uuid.NewString())
		err = os.Mkdir(traceDir, 0o700)
		if err != nil {
			return xerrors.Errorf("create session directory: %w", err)
		}
		if !keep {
			defer os.RemoveAll(traceDir)
		}
	} else if traceDir, err = filepath.Abs(traceDir); err != nil {
		return xerrors.Errorf("resolve session directory: %w", err)
	}

	//nolint:gosec
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(),
		"LD_PRELOAD="+libPath,
		execshim.EnvOutputDir+"="+traceDir,
	)

	runErr := cmd.Run()

	records, collectErr := collectRecords(traceDir)
	if printErr := printRecords(records, outputFormat); printErr != nil {
		collectErr = multierror.Append(collectErr, printErr)
	}
	if collectErr != nil {
		return collectErr
	}
	if runErr != nil {
		return xerrors.Errorf("run %s: %w", argv[0], runErr)
	}
	return nil
}

// collectRecords reads every record file in the session directory, in name
// order. Unreadable or malformed files are reported but do not stop the
// collection.
func collectRecords(dir string) ([]*execshim.Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, xerrors.Errorf("read session directory: %w", err)
	}

	var (
		records []*execshim.Record
		merr    error
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			merr = multierror.Append(merr, xerrors.Errorf("read record %s: %w", path, err))
			continue
		}
		rec, err := execshim.DecodeWire(data)
		if err != nil {
			merr = multierror.Append(merr, xerrors.Errorf("decode record %s: %w", path, err))
			continue
		}
		records = append(records, rec)
	}
	return records, merr
}

func printRecords(records []*execshim.Record, outputFormat string) error {
	if outputFormat == "text" {
		for _, rec := range records {
			_, _ = fmt.Printf("[%v ppid=%v pwd=%q] %v: %v\n", rec.PID, rec.PPID, rec.PWD, rec.Method, shellquote.Join(rec.Arguments...))
		}
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	for _, rec := range records {
		err := enc.Encode(rec)
		if err != nil {
			return xerrors.Errorf("write record as JSON: %w", err)
		}
	}
	return nil
}
