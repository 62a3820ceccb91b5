package shell

import (
	"strings"

	"github.com/projcpp/projcpp/internal/process"
)

// POSIX is the sh/bash/zsh dialect.
type POSIX struct {
	Shell string
}

var _ Dialect = POSIX{}

// Name implements Dialect.
func (POSIX) Name() string { return NamePOSIX }

// QuoteArg single-quotes s. Returns an empty quoted string for empty input.
func (POSIX) QuoteArg(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", "'\"'\"'") + "'"
}

// JoinPath implements Dialect.
func (POSIX) JoinPath(parts ...string) string {
	return strings.Join(parts, "/")
}

// ChangeDirectoryCommand implements Dialect.
func (p POSIX) ChangeDirectoryCommand(dir string) string {
	return "cd " + p.QuoteArg(dir)
}

// RunBinaryCommand implements Dialect.
func (p POSIX) RunBinaryCommand(parts ...string) string {
	return p.QuoteArg("./" + p.JoinPath(parts...))
}

// Chain implements Dialect.
func (POSIX) Chain(cmds ...string) string {
	return strings.Join(nonEmpty(cmds), " && ")
}

// Sequence implements Dialect.
func (POSIX) Sequence(cmds ...string) string {
	return strings.Join(nonEmpty(cmds), "; ")
}

// ReportExitCodeCommand implements Dialect.
func (POSIX) ReportExitCodeCommand() string {
	return `code=$?; echo; echo "Process exited with code $code"`
}

// WaitForKeyCommand implements Dialect.
func (POSIX) WaitForKeyCommand() string {
	return `printf 'Press Enter to close...'; read -r _`
}

// Invocation implements Dialect.
func (p POSIX) Invocation(script string) process.Spec {
	sh := p.Shell
	if sh == "" {
		sh = "sh"
	}
	return process.Spec{Name: sh, Args: []string{"-c", script}}
}
