package shell

import (
	"strings"

	"github.com/projcpp/projcpp/internal/process"
)

// Cmd is the cmd.exe dialect. Scripts run with delayed expansion so the exit
// code is read after the binary finishes, not when the line is parsed.
type Cmd struct {
	Exe string
}

var _ Dialect = Cmd{}

// Name implements Dialect.
func (Cmd) Name() string { return NameCmd }

// QuoteArg wraps s in double quotes, doubling embedded ones.
func (Cmd) QuoteArg(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// JoinPath implements Dialect.
func (Cmd) JoinPath(parts ...string) string {
	return strings.Join(parts, `\`)
}

// ChangeDirectoryCommand switches drive and directory in one step.
func (c Cmd) ChangeDirectoryCommand(dir string) string {
	return "cd /d " + c.QuoteArg(dir)
}

// RunBinaryCommand implements Dialect.
func (c Cmd) RunBinaryCommand(parts ...string) string {
	return c.QuoteArg(c.JoinPath(append([]string{"."}, parts...)...))
}

// Chain implements Dialect.
func (Cmd) Chain(cmds ...string) string {
	return strings.Join(nonEmpty(cmds), " && ")
}

// Sequence implements Dialect.
func (Cmd) Sequence(cmds ...string) string {
	return strings.Join(nonEmpty(cmds), " & ")
}

// ReportExitCodeCommand implements Dialect.
func (Cmd) ReportExitCodeCommand() string {
	return "echo. & echo Process exited with code !errorlevel!"
}

// WaitForKeyCommand implements Dialect.
func (Cmd) WaitForKeyCommand() string {
	return "pause"
}

// Invocation implements Dialect.
func (c Cmd) Invocation(script string) process.Spec {
	exe := c.Exe
	if exe == "" {
		exe = "cmd.exe"
	}
	return process.Spec{
		Name: exe,
		Args: []string{"/V:ON", "/S", "/C", `"` + script + `"`},
		Raw:  true,
	}
}
