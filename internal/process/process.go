// Package process runs child processes for compiler probes, compilation and
// launching built binaries.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/projcpp/projcpp/internal/log"
)

var logger = log.Named("process")

// Spec describes a single invocation. Args are passed verbatim, never through
// a shell, unless Name is itself a shell.
type Spec struct {
	Name string
	Args []string
	Dir  string
	Env  map[string]string

	// Stdin, Stdout and Stderr attach streams. Nil Stdout/Stderr are captured
	// into the Result instead.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Raw passes Args to the child untouched on Windows, where cmd.exe does
	// not understand the default argv escaping. Ignored elsewhere.
	Raw bool
}

// String renders the invocation for logs.
func (s Spec) String() string {
	return strings.TrimSpace(s.Name + " " + strings.Join(s.Args, " "))
}

// Result carries captured output and the exit status.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner runs processes.
type Runner interface {
	// Run waits for the process. A non-zero exit is returned as an error
	// alongside the populated Result.
	Run(ctx context.Context, spec Spec) (Result, error)
	// Start launches the process without waiting for it.
	Start(ctx context.Context, spec Spec) error
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

func command(ctx context.Context, spec Spec) (*exec.Cmd, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, fmt.Errorf("no command provided")
	}
	// #nosec G204 -- names come from the compiler setting or fixed shells
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), formatEnv(spec.Env)...)
	}
	cmd.Stdin = spec.Stdin
	if spec.Raw {
		applyRawCommandLine(cmd, spec)
	}
	return cmd, nil
}

// Run executes spec and waits for it.
func (ExecRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	cmd, err := command(ctx, spec)
	if err != nil {
		return Result{ExitCode: -1}, err
	}

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	if spec.Stdout != nil {
		cmd.Stdout = spec.Stdout
	}
	cmd.Stderr = &errBuf
	if spec.Stderr != nil {
		cmd.Stderr = spec.Stderr
	}

	logger.Printf("run: %s (cwd=%s)", spec, spec.Dir)
	err = cmd.Run()
	res := Result{Stdout: outBuf.String(), Stderr: errBuf.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			logger.Printf("exit %d: %s", res.ExitCode, spec)
			return res, fmt.Errorf("%s: exit status %d", spec.Name, res.ExitCode)
		}
		res.ExitCode = -1
		logger.Printf("error: %s: %v", spec, err)
		return res, fmt.Errorf("%s: %w", spec.Name, err)
	}
	return res, nil
}

// Start launches spec detached from the caller.
func (ExecRunner) Start(ctx context.Context, spec Spec) error {
	cmd, err := command(context.WithoutCancel(ctx), spec)
	if err != nil {
		return err
	}
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr

	logger.Printf("start: %s (cwd=%s)", spec, spec.Dir)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: %w", spec.Name, err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func formatEnv(env map[string]string) []string {
	formatted := make([]string, 0, len(env))
	for k, v := range env {
		formatted = append(formatted, fmt.Sprintf("%s=%s", k, v))
	}
	return formatted
}
