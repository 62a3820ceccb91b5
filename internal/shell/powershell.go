package shell

import (
	"encoding/base64"
	"strings"
	"unicode/utf16"

	"github.com/projcpp/projcpp/internal/process"
)

// PowerShell is the Windows PowerShell / pwsh dialect.
type PowerShell struct {
	Exe     string
	Windows bool
}

var _ Dialect = PowerShell{}

// Name implements Dialect.
func (PowerShell) Name() string { return NamePowerShell }

// QuoteArg wraps s in single quotes, doubling embedded ones.
func (PowerShell) QuoteArg(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// JoinPath implements Dialect.
func (p PowerShell) JoinPath(parts ...string) string {
	if p.Windows {
		return strings.Join(parts, `\`)
	}
	return strings.Join(parts, "/")
}

// ChangeDirectoryCommand implements Dialect.
func (p PowerShell) ChangeDirectoryCommand(dir string) string {
	return "Set-Location -LiteralPath " + p.QuoteArg(dir)
}

// RunBinaryCommand uses the call operator so a quoted path is executed.
func (p PowerShell) RunBinaryCommand(parts ...string) string {
	return "& " + p.QuoteArg(p.JoinPath(append([]string{"."}, parts...)...))
}

// ExitWithLastCode makes the session exit with cmd's native exit code
// instead of the 0/1 derived from $?.
func (PowerShell) ExitWithLastCode(cmd string) string {
	return cmd + "; exit $LASTEXITCODE"
}

// Chain nests each command behind `if ($?)`; Windows PowerShell 5 has no &&.
func (PowerShell) Chain(cmds ...string) string {
	cmds = nonEmpty(cmds)
	if len(cmds) == 0 {
		return ""
	}
	out := cmds[len(cmds)-1]
	for i := len(cmds) - 2; i >= 0; i-- {
		out = cmds[i] + "; if ($?) { " + out + " }"
	}
	return out
}

// Sequence implements Dialect.
func (PowerShell) Sequence(cmds ...string) string {
	return strings.Join(nonEmpty(cmds), "; ")
}

// ReportExitCodeCommand implements Dialect.
func (PowerShell) ReportExitCodeCommand() string {
	return `Write-Host ''; Write-Host "Process exited with code $LASTEXITCODE"`
}

// WaitForKeyCommand implements Dialect.
func (PowerShell) WaitForKeyCommand() string {
	return `Write-Host -NoNewline 'Press any key to close...'; [void][System.Console]::ReadKey($true)`
}

// Invocation passes the script as -EncodedCommand, which sidesteps argv
// quoting entirely.
func (p PowerShell) Invocation(script string) process.Spec {
	exe := p.Exe
	if exe == "" {
		exe = "powershell"
	}
	return process.Spec{
		Name: exe,
		Args: []string{"-NoProfile", "-EncodedCommand", EncodePowerShell(script)},
	}
}

// EncodePowerShell returns the base64 UTF-16LE form expected by -EncodedCommand.
func EncodePowerShell(script string) string {
	units := utf16.Encode([]rune(script))
	buf := make([]byte, 0, len(units)*2)
	for _, u := range units {
		buf = append(buf, byte(u), byte(u>>8))
	}
	return base64.StdEncoding.EncodeToString(buf)
}
