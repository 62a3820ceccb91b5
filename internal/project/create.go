package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MainFile is written into every new project.
const MainFile = "main.cpp"

// HelloWorld is the initial content of MainFile.
const HelloWorld = `#include <iostream>
using namespace std;

int main()
{
    cout << "Hello world" << endl;

    return 0;
}
`

// Create makes location/name. A fresh directory gets a hello-world
// main.cpp; an existing one is left untouched. It returns the project path.
func Create(name, location string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("project name is required")
	}
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("project name %q must not contain path separators", name)
	}
	if strings.TrimSpace(location) == "" {
		return "", errors.New("project location is required")
	}

	path := filepath.Join(location, name)
	const defaultDirPerms = 0o750

	if _, err := os.Stat(path); err == nil {
		logger.Printf("create: %s exists, leaving contents alone", path)
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to check %s: %w", path, err)
	}

	if err := os.MkdirAll(path, defaultDirPerms); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := writeNew(filepath.Join(path, MainFile), HelloWorld); err != nil {
		return "", err
	}
	logger.Printf("create: new project %s", path)
	return path, nil
}

// writeNew writes content to a file that must not exist yet.
func writeNew(path, content string) error {
	// #nosec G304 -- path is built from the project directory
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
