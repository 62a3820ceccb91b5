// Package platform answers the host questions that change how compilers are
// located and binaries are named.
package platform

import (
	"os"
	"runtime"
	"strings"
)

// Host describes the operating system projcpp runs on.
type Host struct {
	GOOS   string
	Getenv func(string) string
	Stat   func(string) (os.FileInfo, error)
}

// Current returns the running host.
func Current() Host {
	return Host{
		GOOS:   runtime.GOOS,
		Getenv: os.Getenv,
		Stat:   os.Stat,
	}
}

// IsWindows reports whether the host is native Windows.
func (h Host) IsWindows() bool {
	return h.GOOS == "windows"
}

// LocateUtility returns the command used to probe for executables on PATH.
func (h Host) LocateUtility() string {
	if h.IsWindows() {
		return "where"
	}
	return "whereis"
}

// BinaryName returns the output binary file name.
func (h Host) BinaryName() string {
	if h.IsWindows() {
		return "main.exe"
	}
	return "main"
}

// Exists reports whether path names an existing file or directory.
func (h Host) Exists(path string) bool {
	if path == "" {
		return false
	}
	stat := h.Stat
	if stat == nil {
		stat = os.Stat
	}
	_, err := stat(path)
	return err == nil
}

// Env returns the environment variable, tolerating a nil Getenv.
func (h Host) Env(key string) string {
	if h.Getenv == nil {
		return os.Getenv(key)
	}
	return h.Getenv(key)
}

// HasPathSeparator reports whether s contains a forward or back slash.
func HasPathSeparator(s string) bool {
	return strings.ContainsAny(s, `/\`)
}
