// Package shell encapsulates the quoting, path and sequencing conventions of
// the shells a built binary can be launched from.
package shell

import (
	"strings"

	"github.com/projcpp/projcpp/internal/platform"
	"github.com/projcpp/projcpp/internal/process"
)

// Dialect names.
const (
	NamePOSIX      = "posix"
	NamePowerShell = "powershell"
	NameCmd        = "cmd"
)

// WindowsPowerShellDir marks a Windows install that ships PowerShell.
const WindowsPowerShellDir = `C:\Windows\System32\WindowsPowerShell`

// Dialect builds command lines for one shell. It is chosen once per session
// and passed to every launcher.
type Dialect interface {
	Name() string
	QuoteArg(s string) string
	JoinPath(parts ...string) string
	ChangeDirectoryCommand(dir string) string
	// RunBinaryCommand runs a binary relative to the current directory.
	RunBinaryCommand(parts ...string) string
	// Chain runs each command only if the previous one succeeded.
	Chain(cmds ...string) string
	// Sequence runs every command regardless of failures.
	Sequence(cmds ...string) string
	ReportExitCodeCommand() string
	WaitForKeyCommand() string
	// Invocation wraps script so the shell executes it.
	Invocation(script string) process.Spec
}

// Detect picks the dialect from the shell setting, falling back to the host
// default: PowerShell on Windows when installed, cmd otherwise, and a POSIX
// shell everywhere else.
func Detect(setting string, host platform.Host) Dialect {
	setting = strings.TrimSpace(setting)
	lower := strings.ToLower(setting)
	switch {
	case strings.Contains(lower, "pwsh"):
		return PowerShell{Exe: setting, Windows: host.IsWindows()}
	case strings.Contains(lower, "powershell"):
		return PowerShell{Exe: setting, Windows: host.IsWindows()}
	case strings.Contains(lower, "cmd"):
		return Cmd{Exe: setting}
	case setting != "":
		return POSIX{Shell: setting}
	}

	if host.IsWindows() {
		if host.Exists(WindowsPowerShellDir) {
			return PowerShell{Exe: "powershell", Windows: true}
		}
		return Cmd{Exe: "cmd.exe"}
	}
	return POSIX{Shell: "sh"}
}

func nonEmpty(cmds []string) []string {
	out := make([]string, 0, len(cmds))
	for _, c := range cmds {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}
