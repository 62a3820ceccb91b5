package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/projcpp/projcpp/internal/platform"
	"github.com/projcpp/projcpp/internal/process"
	"github.com/projcpp/projcpp/internal/shell"
)

// Launcher runs the compiled bin/<binary> of dir.
type Launcher interface {
	Launch(ctx context.Context, dir, binary string) error
}

// ExitError reports a launched program that exited non-zero.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("program exited with code %d", e.Code)
}

// InternalLauncher runs the binary in the current terminal through the
// session shell.
type InternalLauncher struct {
	Dialect shell.Dialect
	Runner  process.Runner
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

var _ Launcher = InternalLauncher{}

// Script is the shell text sent to the terminal.
func (l InternalLauncher) Script(dir, binary string) string {
	d := l.Dialect
	run := d.RunBinaryCommand("bin", binary)
	if ps, ok := d.(shell.PowerShell); ok {
		run = ps.ExitWithLastCode(run)
	}
	return d.Chain(d.ChangeDirectoryCommand(dir), run)
}

// Launch implements Launcher.
func (l InternalLauncher) Launch(ctx context.Context, dir, binary string) error {
	spec := l.Dialect.Invocation(l.Script(dir, binary))
	spec.Stdin, spec.Stdout, spec.Stderr = l.Stdin, l.Stdout, l.Stderr
	logger.Printf("launch (%s): %s", l.Dialect.Name(), spec)

	res, err := l.Runner.Run(ctx, spec)
	if err == nil {
		return nil
	}
	if res.ExitCode > 0 {
		return &ExitError{Code: res.ExitCode}
	}
	return fmt.Errorf("failed to launch %s: %w", binary, err)
}

// DefaultTerminalEmulators are tried in order when terminal_emulator is unset.
var DefaultTerminalEmulators = []string{
	"x-terminal-emulator",
	"gnome-terminal",
	"konsole",
	"xfce4-terminal",
	"xterm",
}

// ErrNoTerminal means no external terminal emulator could be found.
var ErrNoTerminal = errors.New("no terminal emulator found; set terminal_emulator")

// ExternalLauncher opens a separate terminal window that runs the binary,
// prints its exit code and waits for a key before closing.
type ExternalLauncher struct {
	Host     platform.Host
	Runner   process.Runner
	Emulator string
	LookPath func(string) (string, error)
}

var _ Launcher = ExternalLauncher{}

// Launch implements Launcher. The window is detached from ctx.
func (l ExternalLauncher) Launch(ctx context.Context, dir, binary string) error {
	spec, err := l.Spec(dir, binary)
	if err != nil {
		return err
	}
	logger.Printf("launch external: %s", spec)
	if err := l.Runner.Start(ctx, spec); err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	return nil
}

// Spec builds the process that opens the terminal window.
func (l ExternalLauncher) Spec(dir, binary string) (process.Spec, error) {
	switch {
	case l.Host.IsWindows():
		c := shell.Cmd{}
		script := c.Sequence(
			c.Chain(c.ChangeDirectoryCommand(dir), c.RunBinaryCommand("bin", binary)),
			c.ReportExitCodeCommand(),
			c.WaitForKeyCommand(),
		)
		return process.Spec{
			Name: "cmd.exe",
			Args: []string{"/C", "start", `"projcpp"`, "cmd.exe", "/V:ON", "/C", escapeCmdMeta(script)},
			Raw:  true,
		}, nil

	case l.Host.GOOS == "darwin":
		script := posixWindowScript(dir, binary) + "; exit"
		return process.Spec{
			Name: "osascript",
			Args: []string{
				"-e", `tell application "Terminal" to do script "` + appleScriptEscape(script) + `"`,
				"-e", `tell application "Terminal" to activate`,
			},
		}, nil
	}

	emulator, err := l.emulator()
	if err != nil {
		return process.Spec{}, err
	}
	script := posixWindowScript(dir, binary)
	return process.Spec{Name: emulator, Args: append(emulatorExecFlag(emulator), "sh", "-c", script)}, nil
}

func posixWindowScript(dir, binary string) string {
	p := shell.POSIX{}
	return p.Sequence(
		p.Chain(p.ChangeDirectoryCommand(dir), p.RunBinaryCommand("bin", binary)),
		p.ReportExitCodeCommand(),
		p.WaitForKeyCommand(),
	)
}

func (l ExternalLauncher) emulator() (string, error) {
	if e := strings.TrimSpace(l.Emulator); e != "" {
		return e, nil
	}
	lookPath := l.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	for _, name := range DefaultTerminalEmulators {
		if _, err := lookPath(name); err == nil {
			return name, nil
		}
	}
	return "", ErrNoTerminal
}

// emulatorExecFlag returns the flag that makes the emulator run a command
// given as separate arguments.
func emulatorExecFlag(emulator string) []string {
	switch filepath.Base(emulator) {
	case "gnome-terminal":
		return []string{"--"}
	case "xfce4-terminal":
		return []string{"-x"}
	default:
		return []string{"-e"}
	}
}

// escapeCmdMeta carets cmd.exe operators outside double quotes so they reach
// the window started by `start` instead of the launching shell.
func escapeCmdMeta(s string) string {
	var b strings.Builder
	quoted := false
	for _, r := range s {
		if r == '"' {
			quoted = !quoted
		}
		if !quoted && strings.ContainsRune("&|<>^", r) {
			b.WriteByte('^')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func appleScriptEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
