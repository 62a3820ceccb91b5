package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	appiCli "github.com/urfave/cli/v3"

	"github.com/projcpp/projcpp/internal/buildinfo"
	"github.com/projcpp/projcpp/internal/compiler"
	"github.com/projcpp/projcpp/internal/config"
	"github.com/projcpp/projcpp/internal/platform"
	"github.com/projcpp/projcpp/internal/process"
	"github.com/projcpp/projcpp/internal/project"
	"github.com/projcpp/projcpp/internal/runner"
	"github.com/projcpp/projcpp/internal/ui"
	"github.com/projcpp/projcpp/internal/watch"
)

// fileRunner is the part of the orchestrator the run command drives.
type fileRunner interface {
	Run(ctx context.Context, file string) error
}

type (
	newRunnerFuncType      func(s *session, reg *project.Registry) fileRunner
	locateCompilerFuncType func(ctx context.Context, s *session) (compiler.Resolution, error)
	watchLoopFuncType      func(ctx context.Context, dir string, fn func(context.Context) error, onError func(error)) error
)

var (
	loadCLIConfigFunc                           = loadCLIConfig
	newSessionFunc                              = newSession
	openRegistryFunc                            = project.OpenRegistry
	hostFunc                                    = platform.Current
	newProcessRunnerFunc                        = func() process.Runner { return process.ExecRunner{} }
	newFileRunnerFunc    newRunnerFuncType      = func(s *session, reg *project.Registry) fileRunner { return s.newOrchestrator(reg) }
	locateCompilerFunc   locateCompilerFuncType = func(ctx context.Context, s *session) (compiler.Resolution, error) {
		return s.newLocator().Init(ctx)
	}
	watchLoopFunc watchLoopFuncType = func(ctx context.Context, dir string, fn func(context.Context) error, onError func(error)) error {
		return watch.New(dir).Loop(ctx, fn, onError)
	}
)

// requireArgs fails with the command's usage line when fewer than n
// positional arguments were given.
func requireArgs(cmd *appiCli.Command, n int) error {
	if cmd.Args().Len() < n {
		return fmt.Errorf("usage: %s %s", cmd.FullName(), cmd.ArgsUsage)
	}
	return nil
}

func absPath(path string) string {
	path = ui.ExpandHome(path)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func runCommand() *appiCli.Command {
	return &appiCli.Command{
		Name:      "run",
		Usage:     "Compile the directory of FILE and run the result",
		ArgsUsage: "FILE",
		Action:    handleRunAction,
		Flags: []appiCli.Flag{
			&appiCli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Recompile and rerun whenever a source file in the directory changes",
			},
			&appiCli.BoolFlag{
				Name:  "external",
				Usage: "Run in a separate terminal window for this invocation",
			},
		},
	}
}

// handleRunAction handles the run subcommand action.
func handleRunAction(ctx context.Context, cmd *appiCli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	s, err := newSessionFunc(cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("external") {
		override := config.OverridePrefix + config.KeyExternalTerminal + "=true"
		if err := s.settings.ApplyOverrides([]string{override}); err != nil {
			return err
		}
	}

	reg, err := s.openRegistry()
	if err != nil {
		logger.Printf("registry unavailable, runs will not be recorded: %v", err)
		reg = nil
	} else {
		defer func() { _ = reg.Close() }()
	}

	file := absPath(cmd.Args().First())
	r := newFileRunnerFunc(s, reg)
	err = r.Run(ctx, file)
	if !cmd.Bool("watch") {
		return err
	}
	if err != nil {
		reportRunError(s, err)
	}

	dir, ok := runner.DirOf(file)
	if !ok {
		return runner.ErrInvalidTarget
	}
	s.notifier.Notify(fmt.Sprintf("Watching %s for changes (ctrl+c to stop)", dir))
	err = watchLoopFunc(ctx, dir, func(ctx context.Context) error {
		return r.Run(ctx, file)
	}, func(err error) {
		reportRunError(s, err)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// reportRunError prints a failed run in watch mode, where the loop keeps
// going instead of exiting.
func reportRunError(s *session, err error) {
	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) {
		s.notifier.Notify(exitErr.Error())
		return
	}
	_ = exitCode(s.stderr, err)
}

func compilerCommand() *appiCli.Command {
	return &appiCli.Command{
		Name:  "compiler",
		Usage: "Find, show or forget the C++ compiler",
		Commands: []*appiCli.Command{
			{
				Name:   "locate",
				Usage:  "Discover a compiler, offering to download one when none is found",
				Action: handleCompilerLocateAction,
			},
			{
				Name:   "show",
				Usage:  "Print the configured compiler command",
				Action: handleCompilerShowAction,
			},
			{
				Name:   "reset",
				Usage:  "Forget the configured compiler so the next run searches again",
				Action: handleCompilerResetAction,
			},
		},
	}
}

func handleCompilerLocateAction(ctx context.Context, cmd *appiCli.Command) error {
	s, err := newSessionFunc(cmd)
	if err != nil {
		return err
	}
	res, err := locateCompilerFunc(ctx, s)
	if errors.Is(err, compiler.ErrDeclined) {
		return nil
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(s.stdout, res.Command)
	return nil
}

func handleCompilerShowAction(ctx context.Context, cmd *appiCli.Command) error {
	s, err := newSessionFunc(cmd)
	if err != nil {
		return err
	}
	command := s.settings.Get(config.KeyCompileCommand)
	if command == "" {
		s.notifier.Notify("No compiler configured. Run `projcpp compiler locate` or `projcpp run FILE`.")
		return nil
	}
	_, _ = fmt.Fprintln(s.stdout, command)
	if !compiler.NewValidator(s.host, s.runner).IsCommand(ctx, command) {
		s.notifier.Error(fmt.Sprintf("%s is no longer a working command; the next run will search again.", command))
	}
	return nil
}

func handleCompilerResetAction(_ context.Context, cmd *appiCli.Command) error {
	s, err := newSessionFunc(cmd)
	if err != nil {
		return err
	}
	if err := s.settings.Unset(config.KeyCompileCommand); err != nil {
		return err
	}
	s.notifier.Notify("Compiler setting cleared.")
	return nil
}

func projectCommand() *appiCli.Command {
	return &appiCli.Command{
		Name:  "project",
		Usage: "Create, find and remember projects",
		Commands: []*appiCli.Command{
			{
				Name:      "new",
				Usage:     "Create a project folder with a hello-world main.cpp",
				ArgsUsage: "NAME",
				Action:    handleProjectNewAction,
				Flags: []appiCli.Flag{
					&appiCli.StringFlag{
						Name:    "location",
						Aliases: []string{"l"},
						Usage:   "Parent directory (defaults to default_project_location)",
					},
				},
			},
			{
				Name:      "scan",
				Usage:     "List project directories under DIR",
				ArgsUsage: "DIR",
				Action:    handleProjectScanAction,
				Flags: []appiCli.Flag{
					&appiCli.BoolFlag{
						Name:  "save",
						Usage: "Remember every project found",
					},
				},
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List remembered projects",
				Action:  handleProjectListAction,
			},
			{
				Name:      "add",
				Usage:     "Remember a project directory",
				ArgsUsage: "DIR",
				Action:    handleProjectAddAction,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Forget a project directory (files are kept)",
				ArgsUsage: "DIR",
				Action:    handleProjectRemoveAction,
			},
		},
	}
}

// withRegistry opens a session and the registry, runs fn and closes both.
func withRegistry(cmd *appiCli.Command, fn func(s *session, reg *project.Registry) error) error {
	s, err := newSessionFunc(cmd)
	if err != nil {
		return err
	}
	reg, err := s.openRegistry()
	if err != nil {
		return fmt.Errorf("failed to open project registry: %w", err)
	}
	defer func() { _ = reg.Close() }()
	return fn(s, reg)
}

func handleProjectNewAction(ctx context.Context, cmd *appiCli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	return withRegistry(cmd, func(s *session, reg *project.Registry) error {
		location := cmd.String("location")
		if location == "" {
			location = s.settings.Config().DefaultProjectLocation
		}
		path, err := project.Create(cmd.Args().First(), absPath(location))
		if err != nil {
			return err
		}
		if _, err := reg.Add(ctx, path); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(s.stdout, path)
		return nil
	})
}

func handleProjectScanAction(ctx context.Context, cmd *appiCli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	return withRegistry(cmd, func(s *session, reg *project.Registry) error {
		dirs, err := project.Scan(ctx, absPath(cmd.Args().First()))
		if err != nil {
			return err
		}
		if len(dirs) == 0 {
			s.notifier.Notify("No projects found.")
			return nil
		}

		rows := make([]ui.ProjectRow, 0, len(dirs))
		for _, dir := range dirs {
			rows = append(rows, ui.ProjectRow{Path: dir})
		}
		_, _ = fmt.Fprint(s.stdout, s.lister().Render(rows))

		if !cmd.Bool("save") {
			return nil
		}
		for _, dir := range dirs {
			if _, err := reg.Add(ctx, dir); err != nil {
				return err
			}
		}
		s.notifier.Notify(fmt.Sprintf("Saved %d projects.", len(dirs)))
		return nil
	})
}

func handleProjectListAction(ctx context.Context, cmd *appiCli.Command) error {
	return withRegistry(cmd, func(s *session, reg *project.Registry) error {
		entries, err := reg.List(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			s.notifier.Notify("No projects remembered yet. Use `projcpp project add DIR`.")
			return nil
		}
		rows := make([]ui.ProjectRow, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, ui.ProjectRow{Path: e.Path, LastRunAt: e.LastRunAt})
		}
		_, _ = fmt.Fprint(s.stdout, s.lister().Render(rows))
		return nil
	})
}

func handleProjectAddAction(ctx context.Context, cmd *appiCli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	return withRegistry(cmd, func(s *session, reg *project.Registry) error {
		dir := absPath(cmd.Args().First())
		info, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
		if _, err := reg.Add(ctx, dir); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(s.stdout, dir)
		return nil
	})
}

func handleProjectRemoveAction(ctx context.Context, cmd *appiCli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	return withRegistry(cmd, func(s *session, reg *project.Registry) error {
		dir := absPath(cmd.Args().First())
		removed, err := reg.Remove(ctx, dir)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("%s is not a remembered project", dir)
		}
		s.notifier.Notify("Forgot " + dir)
		return nil
	})
}

func createCommand() *appiCli.Command {
	scaffold := func(kind project.Kind) *appiCli.Command {
		return &appiCli.Command{
			Name:      string(kind),
			Usage:     fmt.Sprintf("Create a %s header and source next to a file", kind),
			ArgsUsage: "NAME",
			Action: func(ctx context.Context, cmd *appiCli.Command) error {
				return handleCreateAction(ctx, cmd, kind)
			},
			Flags: []appiCli.Flag{
				&appiCli.StringFlag{
					Name:  "files",
					Value: string(project.FilesBoth),
					Usage: "Which files to write: both, header or source",
				},
				&appiCli.StringFlag{
					Name:  "in",
					Usage: "A file in the target directory, usually the one being edited",
				},
			},
		}
	}
	return &appiCli.Command{
		Name:     "create",
		Usage:    "Scaffold a class or struct",
		Commands: []*appiCli.Command{scaffold(project.KindClass), scaffold(project.KindStruct)},
	}
}

// handleCreateAction handles create class and create struct.
func handleCreateAction(_ context.Context, cmd *appiCli.Command, kind project.Kind) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	s, err := newSessionFunc(cmd)
	if err != nil {
		return err
	}
	active := cmd.String("in")
	if active != "" {
		active = absPath(active)
	}
	res, err := project.Scaffold(project.Request{
		Kind:       kind,
		Name:       cmd.Args().First(),
		Files:      project.Files(strings.ToLower(cmd.String("files"))),
		ActiveFile: active,
	})
	if err != nil {
		return err
	}
	for _, path := range res.Created {
		_, _ = fmt.Fprintln(s.stdout, path)
	}
	s.notifier.Notify(res.Notice)
	return nil
}

func configCommand() *appiCli.Command {
	return &appiCli.Command{
		Name:  "config",
		Usage: "Read and write settings",
		Commands: []*appiCli.Command{
			{
				Name:      "get",
				Usage:     "Print a setting",
				ArgsUsage: "KEY",
				Action:    handleConfigGetAction,
			},
			{
				Name:      "set",
				Usage:     "Write a setting to the config file",
				ArgsUsage: "KEY VALUE",
				Action:    handleConfigSetAction,
			},
			{
				Name:      "unset",
				Usage:     "Remove a setting from the config file",
				ArgsUsage: "KEY",
				Action:    handleConfigUnsetAction,
			},
			{
				Name:   "list",
				Usage:  "Print every setting with its effective value",
				Action: handleConfigListAction,
			},
			{
				Name:   "path",
				Usage:  "Print the config file location",
				Action: handleConfigPathAction,
			},
		},
	}
}

func knownKey(key string) error {
	if config.IsKnownKey(key) {
		return nil
	}
	return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(config.KnownKeys(), ", "))
}

func handleConfigGetAction(_ context.Context, cmd *appiCli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	key := cmd.Args().First()
	if err := knownKey(key); err != nil {
		return err
	}
	s, err := newSessionFunc(cmd)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(s.stdout, s.settings.Get(key))
	return nil
}

func handleConfigSetAction(_ context.Context, cmd *appiCli.Command) error {
	if err := requireArgs(cmd, 2); err != nil {
		return err
	}
	key := cmd.Args().Get(0)
	if err := knownKey(key); err != nil {
		return err
	}
	value, err := config.ParseValue(key, cmd.Args().Get(1))
	if err != nil {
		return err
	}
	s, err := newSessionFunc(cmd)
	if err != nil {
		return err
	}
	return s.settings.Set(key, value)
}

func handleConfigUnsetAction(_ context.Context, cmd *appiCli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	key := cmd.Args().First()
	if err := knownKey(key); err != nil {
		return err
	}
	s, err := newSessionFunc(cmd)
	if err != nil {
		return err
	}
	return s.settings.Unset(key)
}

func handleConfigListAction(_ context.Context, cmd *appiCli.Command) error {
	s, err := newSessionFunc(cmd)
	if err != nil {
		return err
	}
	for _, key := range config.KnownKeys() {
		_, _ = fmt.Fprintf(s.stdout, "%s = %s\n", key, s.settings.Get(key))
	}
	return nil
}

func handleConfigPathAction(_ context.Context, cmd *appiCli.Command) error {
	s, err := newSessionFunc(cmd)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(s.stdout, s.settings.Path())
	return nil
}

func versionCommand() *appiCli.Command {
	return &appiCli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(_ context.Context, cmd *appiCli.Command) error {
			stdout, _ := outputs(cmd)
			_, _ = fmt.Fprint(stdout, buildinfo.Summary())
			return nil
		},
	}
}
