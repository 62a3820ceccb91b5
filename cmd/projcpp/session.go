package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	appiCli "github.com/urfave/cli/v3"

	"github.com/projcpp/projcpp/internal/buildinfo"
	"github.com/projcpp/projcpp/internal/compiler"
	"github.com/projcpp/projcpp/internal/config"
	"github.com/projcpp/projcpp/internal/log"
	"github.com/projcpp/projcpp/internal/platform"
	"github.com/projcpp/projcpp/internal/process"
	"github.com/projcpp/projcpp/internal/project"
	"github.com/projcpp/projcpp/internal/runner"
	"github.com/projcpp/projcpp/internal/shell"
	"github.com/projcpp/projcpp/internal/theme"
	"github.com/projcpp/projcpp/internal/ui"
)

var logger = log.Named("cli")

// session bundles what every subcommand needs: settings, the host, the
// process runner, the shell dialect picked once for this invocation, and
// the output streams.
type session struct {
	settings *config.FileStore
	host     platform.Host
	runner   process.Runner
	dialect  shell.Dialect
	styles   theme.Styles
	notifier *ui.Notifier

	stdin  *os.File
	stdout io.Writer
	stderr io.Writer
}

// loadCLIConfig loads the settings file and applies --config overrides.
func loadCLIConfig(configFile string, overrides []string) (*config.FileStore, error) {
	settings, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if len(overrides) > 0 {
		if err := settings.ApplyOverrides(overrides); err != nil {
			return nil, fmt.Errorf("error applying config overrides: %w", err)
		}
	}
	return settings, nil
}

// outputs returns the root command's writers, which tests replace.
func outputs(cmd *appiCli.Command) (io.Writer, io.Writer) {
	root := cmd.Root()
	stdout, stderr := root.Writer, root.ErrWriter
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdout, stderr
}

func newSession(cmd *appiCli.Command) (*session, error) {
	stdout, stderr := outputs(cmd)

	settings, err := loadCLIConfigFunc(cmd.String("config-file"), cmd.StringSlice("config"))
	if err != nil {
		return nil, err
	}
	setupDebugLog(stderr, cmd.String("debug-log"), settings.Get(config.KeyDebugLog))

	themeName := settings.Config().Theme
	if flag := strings.TrimSpace(cmd.String("theme")); flag != "" {
		themeName = strings.ToLower(flag)
	}
	if !theme.Known(themeName) {
		return nil, fmt.Errorf("unknown theme %q (available: %s)", themeName, strings.Join(theme.Available(), ", "))
	}
	styles := theme.NewStyles(theme.Get(themeName))

	host := hostFunc()
	s := &session{
		settings: settings,
		host:     host,
		runner:   newProcessRunnerFunc(),
		dialect:  shell.Detect(settings.Get(config.KeyShell), host),
		styles:   styles,
		notifier: &ui.Notifier{Out: stderr, Styles: styles},
		stdin:    os.Stdin,
		stdout:   stdout,
		stderr:   stderr,
	}
	logger.Printf("session: config=%s shell=%s os=%s", settings.Path(), s.dialect.Name(), host.GOOS)
	return s, nil
}

func (s *session) newLocator() *compiler.Locator {
	cfg := s.settings.Config()
	return compiler.NewLocator(compiler.Options{
		Host:         s.host,
		Settings:     s.settings,
		Validator:    compiler.NewValidator(s.host, s.runner),
		Prompter:     ui.NewPrompter(s.stdin, s.stderr, s.notifier),
		Fetcher:      &compiler.HTTPFetcher{UserAgent: buildinfo.UserAgent()},
		Unpacker:     compiler.ArchiveExtractor{},
		Registrar:    compiler.NewPathRegistrar(s.host, s.runner, s.notifier.Notify),
		ToolchainURL: cfg.ToolchainURL,
		DownloadDir:  cfg.DownloadDir,
	})
}

// newOrchestrator wires a run orchestrator. reg may be nil, in which case
// runs are not recorded.
func (s *session) newOrchestrator(reg *project.Registry) *runner.Orchestrator {
	cfg := s.settings.Config()
	errStyle := s.styles.Error
	return runner.New(runner.Options{
		Host:      s.host,
		Settings:  s.settings,
		Runner:    s.runner,
		Validator: compiler.NewValidator(s.host, s.runner),
		Locator:   s.newLocator(),
		Saver:     runner.CommandSaver{Command: cfg.SaveCommand, Dialect: s.dialect, Runner: s.runner},
		Output: &runner.WriterLog{
			W:     s.stderr,
			Style: func(line string) string { return errStyle.Render(line) },
		},
		Internal: runner.InternalLauncher{
			Dialect: s.dialect,
			Runner:  s.runner,
			Stdin:   s.stdin,
			Stdout:  s.stdout,
			Stderr:  s.stderr,
		},
		External: runner.ExternalLauncher{
			Host:     s.host,
			Runner:   s.runner,
			Emulator: cfg.TerminalEmulator,
		},
		OnRun: func(ctx context.Context, dir string) {
			if reg == nil {
				return
			}
			if _, err := reg.Touch(ctx, dir); err != nil {
				logger.Printf("registry touch %s: %v", dir, err)
			}
		},
	})
}

// openRegistry opens the project registry named by the registry_path setting.
func (s *session) openRegistry() (*project.Registry, error) {
	return openRegistryFunc(s.settings.Config().RegistryPath)
}

func (s *session) lister() ui.Lister {
	return ui.Lister{Styles: s.styles, ShowIcons: s.settings.Config().ShowIcons}
}
