// Package main is the entry point for the projcpp command.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	appiCli "github.com/urfave/cli/v3"

	"github.com/projcpp/projcpp/internal/buildinfo"
	"github.com/projcpp/projcpp/internal/log"
	"github.com/projcpp/projcpp/internal/runner"
	"github.com/projcpp/projcpp/internal/ui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	buildinfo.Set(version, commit, date, builtBy)
	buildinfo.Enrich()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().Run(ctx, os.Args)
	stop()
	_ = log.Close()
	if code := exitCode(os.Stderr, err); code != 0 {
		os.Exit(code)
	}
}

func newRootCommand() *appiCli.Command {
	return &appiCli.Command{
		Name:                  "projcpp",
		Usage:                 "Create, compile and run C/C++ projects",
		Version:               buildinfo.Version(),
		EnableShellCompletion: true,
		Flags:                 globalFlags(),
		Commands: []*appiCli.Command{
			runCommand(),
			compilerCommand(),
			projectCommand(),
			createCommand(),
			configCommand(),
			versionCommand(),
		},
	}
}

// exitCode reports err on w and maps it to a process exit status. A program
// that exited non-zero passes its code through; a failed compile has already
// shown its log.
func exitCode(w io.Writer, err error) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if !errors.Is(err, runner.ErrCompileFailed) {
		_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	}
	return 1
}

// setupDebugLog points the debug log at the --debug-log flag, or at the
// debug_log setting when the flag is empty. With neither, buffered lines are
// discarded.
func setupDebugLog(stderr io.Writer, flagPath, configPath string) {
	path, source := flagPath, ""
	if path == "" {
		path, source = configPath, " from config"
	}
	if path == "" {
		_ = log.SetFile("")
		return
	}
	path = ui.ExpandHome(path)
	if err := log.SetFile(path); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error opening debug log file%s %q: %v\n", source, path, err)
	}
}
