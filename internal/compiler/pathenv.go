package compiler

import (
	"context"
	"fmt"
	"strings"

	"github.com/projcpp/projcpp/internal/platform"
	"github.com/projcpp/projcpp/internal/process"
)

// PathRegistrar appends a compiler's directory to the Windows user PATH. It
// acts at most once per session.
type PathRegistrar struct {
	host   platform.Host
	runner process.Runner
	notify func(string)
	added  bool
}

// NewPathRegistrar returns a registrar; notify receives the restart notice.
func NewPathRegistrar(host platform.Host, runner process.Runner, notify func(string)) *PathRegistrar {
	return &PathRegistrar{host: host, runner: runner, notify: notify}
}

// Added reports whether PATH was modified in this session.
func (p *PathRegistrar) Added() bool {
	return p.added
}

// WindowsDir returns the directory part of command with backslashes and no
// trailing separator.
func WindowsDir(command string) string {
	command = strings.ReplaceAll(StripQuotes(command), "/", `\`)
	idx := strings.LastIndex(command, `\`)
	if idx < 0 {
		return ""
	}
	return strings.TrimRight(command[:idx], `\`)
}

// OnPath reports whether dir is one of the ';'-separated PATH entries.
func OnPath(pathEnv, dir string) bool {
	want := strings.TrimRight(strings.ToLower(dir), `\`)
	for _, entry := range strings.Split(pathEnv, ";") {
		if strings.TrimRight(strings.ToLower(strings.TrimSpace(entry)), `\`) == want {
			return true
		}
	}
	return false
}

// SetxScript prepends dir to the HKCU PATH value through reg query + setx.
func SetxScript(dir string) string {
	return fmt.Sprintf(`for /f "skip=2 tokens=3*" %%a in ('reg query HKCU\Environment /v PATH') do @if [%%b]==[] ( @setx PATH "%s;%%~a" ) else ( @setx PATH "%s;%%~a %%~b" )`, dir, dir)
}

// Register adds command's directory to PATH when needed. It returns true
// when PATH was changed by this call.
func (p *PathRegistrar) Register(ctx context.Context, command string) (bool, error) {
	if !p.host.IsWindows() || p.added || !platform.HasPathSeparator(command) {
		return false, nil
	}
	dir := WindowsDir(command)
	if dir == "" || OnPath(p.host.Env("PATH"), dir) {
		return false, nil
	}

	_, err := p.runner.Run(ctx, process.Spec{
		Name: `C:\Windows\System32\cmd.exe`,
		Args: []string{"/S", "/C", `"` + SetxScript(dir) + `"`},
		Raw:  true,
	})
	if err != nil {
		return false, fmt.Errorf("failed to add %s to PATH: %w", dir, err)
	}

	p.added = true
	logger.Printf("added %s to user PATH", dir)
	if p.notify != nil {
		p.notify(MsgPathAdded)
	}
	return true, nil
}
