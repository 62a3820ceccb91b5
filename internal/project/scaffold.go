package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
)

var (
	// ErrNoActiveFile means there is no file to place the new type next to.
	ErrNoActiveFile = errors.New("open a file inside the project first")
	// ErrExists is returned instead of overwriting a file.
	ErrExists = errors.New("file already exists")
)

// Kind is the C++ aggregate keyword.
type Kind string

// Scaffold kinds.
const (
	KindClass  Kind = "class"
	KindStruct Kind = "struct"
)

// Files selects which files Scaffold writes.
type Files string

// File selections.
const (
	FilesBoth   Files = "both"
	FilesHeader Files = "header"
	FilesSource Files = "source"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindClass, KindStruct:
		return k, nil
	default:
		return "", fmt.Errorf("unknown kind %q (want class or struct)", s)
	}
}

// ParseFiles validates a file selection. Empty means both.
func ParseFiles(s string) (Files, error) {
	switch f := Files(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilesBoth, nil
	case FilesBoth, FilesHeader, FilesSource:
		return f, nil
	default:
		return "", fmt.Errorf("unknown file selection %q (want both, header or source)", s)
	}
}

// Request describes a class or struct to scaffold.
type Request struct {
	Kind       Kind
	Name       string
	Files      Files
	ActiveFile string
}

// Result lists what Scaffold wrote.
type Result struct {
	Created []string
	Notice  string
}

// Names holds the identifiers derived from the requested type name.
type Names struct {
	File  string // snake_case file base
	Type  string // words joined by '_' with their case kept
	Guard string // include guard
}

// DeriveNames splits name into words and builds the file, type and guard
// names from them.
func DeriveNames(name string) Names {
	snake := strcase.ToSnake(strings.TrimSpace(name))
	return Names{
		File:  snake,
		Type:  keepCase(name, snake),
		Guard: strcase.ToScreamingSnake(snake) + "_H",
	}
}

// keepCase re-applies the original letter case of name onto snake.
func keepCase(name, snake string) string {
	src := []rune(name)
	var b strings.Builder
	i := 0
	for _, r := range snake {
		if r == '_' {
			b.WriteRune(r)
			continue
		}
		for i < len(src) && unicode.ToLower(src[i]) != unicode.ToLower(r) {
			i++
		}
		if i < len(src) {
			b.WriteRune(src[i])
			i++
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Header renders the declaration file.
func Header(kind Kind, n Names) string {
	return fmt.Sprintf(`#ifndef %[1]s
#define %[1]s

%[2]s %[3]s
{
public:
    %[3]s();     //constructor
    ~%[3]s();    //destructor
};

#endif
`, n.Guard, kind, n.Type)
}

// Source renders the definition file.
func Source(n Names) string {
	return fmt.Sprintf(`#include "%[1]s.h"

%[2]s::%[2]s()
{

}

%[2]s::~%[2]s()
{

}
`, n.File, n.Type)
}

// Scaffold writes the requested files next to req.ActiveFile. Nothing is
// written when any target already exists.
func Scaffold(req Request) (Result, error) {
	if strings.TrimSpace(req.ActiveFile) == "" {
		return Result{}, ErrNoActiveFile
	}
	dir := filepath.Dir(req.ActiveFile)
	if dir == "." {
		return Result{}, ErrNoActiveFile
	}
	if strings.TrimSpace(req.Name) == "" {
		return Result{}, errors.New("type name is required")
	}
	kind, err := ParseKind(string(req.Kind))
	if err != nil {
		return Result{}, err
	}
	files, err := ParseFiles(string(req.Files))
	if err != nil {
		return Result{}, err
	}

	n := DeriveNames(req.Name)
	base := filepath.Join(dir, n.File)

	type output struct {
		path    string
		content string
	}
	var outputs []output
	if files != FilesSource {
		outputs = append(outputs, output{base + ".h", Header(kind, n)})
	}
	if files != FilesHeader {
		outputs = append(outputs, output{base + ".cpp", Source(n)})
	}

	for _, o := range outputs {
		if _, err := os.Lstat(o.path); err == nil {
			return Result{}, fmt.Errorf("%w: %s", ErrExists, o.path)
		}
	}

	res := Result{Notice: fmt.Sprintf("Created %s %s!", kind, n.Type)}
	for _, o := range outputs {
		if err := writeNew(o.path, o.content); err != nil {
			return res, err
		}
		res.Created = append(res.Created, o.path)
	}
	logger.Printf("scaffold %s %s: %v", kind, n.Type, res.Created)
	return res, nil
}
