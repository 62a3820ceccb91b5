package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/projcpp/projcpp/internal/compiler"
	"github.com/projcpp/projcpp/internal/platform"
	"github.com/projcpp/projcpp/internal/process"
)

// Kind selects the compile invocation variant.
type Kind int

// Source kinds.
const (
	KindCpp Kind = iota
	KindC
)

func (k Kind) String() string {
	if k == KindC {
		return "c"
	}
	return "c++"
}

// Source file extensions compiled in each mode.
var (
	CExtensions   = []string{".c"}
	CppExtensions = []string{".cpp", ".cc", ".cxx", ".c++"}
)

// KindOf returns KindC for ".c" files and KindCpp for everything else.
func KindOf(file string) Kind {
	if filepath.Ext(file) == ".c" {
		return KindC
	}
	return KindCpp
}

// CompileResult is the outcome of one compiler invocation. An empty
// Diagnostics means success.
type CompileResult struct {
	Binary      string
	Diagnostics string
}

// DirOf returns the directory part of file, accepting both separators. It
// reports false when file has no directory component.
func DirOf(file string) (string, bool) {
	idx := strings.LastIndexAny(file, `/\`)
	if idx < 0 {
		return "", false
	}
	if idx == 0 {
		return file[:1], true
	}
	return file[:idx], true
}

// BinaryPath is where the compiled program for dir ends up.
func BinaryPath(host platform.Host, dir string) string {
	return filepath.Join(dir, "bin", host.BinaryName())
}

// Sources lists the files in dir compiled for kind, as names relative to dir.
func Sources(dir string, kind Kind) ([]string, error) {
	exts := CppExtensions
	if kind == KindC {
		exts = CExtensions
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources in %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		for _, want := range exts {
			if ext == want {
				out = append(out, e.Name())
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// CompileArgs builds the compiler argument list.
func CompileArgs(kind Kind, sources []string, output string) []string {
	var args []string
	if kind == KindC {
		args = append(args, "-x", "c")
	}
	args = append(args, sources...)
	return append(args, "-o", output)
}

// Compile builds every source in dir into bin/main. Compiler diagnostics are
// returned in the result; the error is reserved for problems preparing the
// build.
func Compile(ctx context.Context, runner process.Runner, host platform.Host, command, file, dir string) (CompileResult, error) {
	const defaultDirPerms = 0o750
	if err := os.MkdirAll(filepath.Join(dir, "bin"), defaultDirPerms); err != nil {
		return CompileResult{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	kind := KindOf(file)
	sources, err := Sources(dir, kind)
	if err != nil {
		return CompileResult{}, err
	}

	spec := process.Spec{
		Name: compiler.StripQuotes(command),
		Args: CompileArgs(kind, sources, filepath.Join("bin", host.BinaryName())),
		Dir:  dir,
	}
	logger.Printf("compile (%s) in %s: %s", kind, dir, spec)

	res := CompileResult{Binary: BinaryPath(host, dir)}
	out, err := runner.Run(ctx, spec)
	switch {
	case strings.TrimSpace(out.Stderr) != "":
		res.Diagnostics = out.Stderr
	case err != nil:
		res.Diagnostics = err.Error()
	}
	if res.Diagnostics != "" {
		logger.Printf("compile failed: %s", strings.TrimSpace(res.Diagnostics))
	}
	return res, nil
}
