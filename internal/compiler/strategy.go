package compiler

import (
	"context"
	"path/filepath"

	"github.com/projcpp/projcpp/internal/config"
)

// Well-known CodeBlocks MinGW installs probed before asking the user.
const (
	CodeBlocksMinGW32 = `C:\Program Files (x86)\CodeBlocks\MinGW`
	CodeBlocksMinGW64 = `C:\Program Files\CodeBlocks\MinGW`
)

// Strategy is one candidate source for the compile command.
type Strategy struct {
	Name string

	// Notice is shown when the strategy wins. Empty means silent.
	Notice  string
	Resolve func(ctx context.Context) (string, bool)

	// Validates is set when Resolve already ran the command through the
	// Validator.
	Validates bool
}

// DefaultStrategies returns the ordered discovery list: saved setting, g++,
// gcc, then the 32-bit and 64-bit CodeBlocks MinGW installs.
func DefaultStrategies(settings config.Store, v *Validator) []Strategy {
	return []Strategy{
		savedSetting(settings, v),
		commandOnPath("g++", v),
		commandOnPath("gcc", v),
		installDir(CodeBlocksMinGW32, "Found 32bit CodeBlocks with MinGW!", v),
		installDir(CodeBlocksMinGW64, "Found CodeBlocks with MinGW!", v),
	}
}

func savedSetting(settings config.Store, v *Validator) Strategy {
	return Strategy{
		Name:      "saved",
		Validates: true,
		Resolve: func(ctx context.Context) (string, bool) {
			saved := settings.Get(config.KeyCompileCommand)
			if saved == "" {
				return "", false
			}
			return saved, v.IsCommand(ctx, saved)
		},
	}
}

func commandOnPath(name string, v *Validator) Strategy {
	return Strategy{
		Name:      name,
		Notice:    "Found " + name + "!",
		Validates: true,
		Resolve: func(ctx context.Context) (string, bool) {
			return name, v.Probe(ctx, name)
		},
	}
}

func installDir(dir, notice string, v *Validator) Strategy {
	return Strategy{
		Name:   dir,
		Notice: notice,
		Resolve: func(context.Context) (string, bool) {
			if !v.Host.Exists(dir) {
				return "", false
			}
			return windowsJoin(dir, "bin", "g++.exe"), true
		},
	}
}

// windowsJoin joins with backslashes regardless of the build host, since the
// install locations are Windows paths.
func windowsJoin(parts ...string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += `\` + p
	}
	return out
}

// ExtractedCompilerPath is where the downloaded MinGW archive keeps g++.
func ExtractedCompilerPath(extractDir string, windows bool) string {
	exe := "g++"
	if windows {
		exe = "g++.exe"
	}
	return filepath.Join(extractDir, "mingw64", "bin", exe)
}
