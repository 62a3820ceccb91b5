// Package compiler finds a usable C/C++ compiler: it validates the saved
// command, probes well-known names and install locations, and falls back to
// asking the user or downloading a toolchain.
package compiler

import (
	"context"
	"strings"
	"time"

	"github.com/projcpp/projcpp/internal/log"
	"github.com/projcpp/projcpp/internal/platform"
	"github.com/projcpp/projcpp/internal/process"
)

var logger = log.Named("compiler")

const probeTimeout = 10 * time.Second

// Validator decides whether a compile command is usable.
type Validator struct {
	Host   platform.Host
	Runner process.Runner
}

// NewValidator returns a Validator for host.
func NewValidator(host platform.Host, runner process.Runner) *Validator {
	return &Validator{Host: host, Runner: runner}
}

// StripQuotes removes one level of matching surrounding quotes.
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// IsCommand reports whether s names an existing file, or a bare command the
// locate probe can resolve. Anything containing a path separator is decided
// by existence alone.
func (v *Validator) IsCommand(ctx context.Context, s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	path := StripQuotes(s)
	if v.Host.Exists(path) {
		logger.Printf("validate %q: existing path", s)
		return true
	}
	if platform.HasPathSeparator(path) {
		logger.Printf("validate %q: no such file", s)
		return false
	}
	return v.Probe(ctx, s)
}

// Probe runs `where NAME` (Windows) or `whereis NAME`. whereis exits 0 for
// unknown names and echoes only the base name, so it also has to list at
// least one location after the "base:" prefix.
func (v *Validator) Probe(ctx context.Context, name string) bool {
	name = StripQuotes(name)
	if name == "" || v.Runner == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	utility := v.Host.LocateUtility()
	res, err := v.Runner.Run(ctx, process.Spec{Name: utility, Args: []string{name}})
	if err != nil {
		logger.Printf("probe %s %s: %v", utility, name, err)
		return false
	}
	if strings.TrimSpace(res.Stderr) != "" {
		logger.Printf("probe %s %s: stderr %q", utility, name, strings.TrimSpace(res.Stderr))
		return false
	}
	if v.Host.IsWindows() {
		return true
	}

	out := strings.TrimSpace(res.Stdout)
	if prefix, rest, ok := strings.Cut(out, ":"); ok && strings.TrimSpace(prefix) == baseName(name) {
		out = rest
	}
	found := strings.TrimSpace(out) != ""
	logger.Printf("probe %s %s: found=%t", utility, name, found)
	return found
}

func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		return name[i+1:]
	}
	return name
}
