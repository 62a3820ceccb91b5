package runner

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/projcpp/projcpp/internal/process"
	"github.com/projcpp/projcpp/internal/shell"
)

// DocumentSaver flushes unsaved editor buffers to disk before compiling.
type DocumentSaver interface {
	SaveAll(ctx context.Context) error
}

// NopSaver is used when no editor is attached.
type NopSaver struct{}

// SaveAll implements DocumentSaver.
func (NopSaver) SaveAll(context.Context) error { return nil }

// CommandSaver runs the save_command setting through the session shell, for
// editors that can be told to write all buffers from the command line.
type CommandSaver struct {
	Command string
	Dialect shell.Dialect
	Runner  process.Runner
}

// SaveAll implements DocumentSaver.
func (s CommandSaver) SaveAll(ctx context.Context) error {
	if strings.TrimSpace(s.Command) == "" {
		return nil
	}
	spec := s.Dialect.Invocation(s.Command)
	logger.Printf("save all: %s", spec)
	if _, err := s.Runner.Run(ctx, spec); err != nil {
		return fmt.Errorf("save command %q: %w", s.Command, err)
	}
	return nil
}

// OutputLog is the compile log surfaced to the user on failure.
type OutputLog interface {
	Clear()
	Append(line string)
	Show()
}

// MemoryLog keeps the log in memory. Show is recorded, not rendered.
type MemoryLog struct {
	mu    sync.Mutex
	lines []string
	Shown int
}

// Clear implements OutputLog.
func (l *MemoryLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
}

// Append implements OutputLog.
func (l *MemoryLog) Append(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
}

// Show implements OutputLog.
func (l *MemoryLog) Show() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Shown++
}

// Lines returns a copy of the buffered lines.
func (l *MemoryLog) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// WriterLog buffers lines and writes them to W when shown.
type WriterLog struct {
	MemoryLog
	W io.Writer
	// Style, when set, decorates the header line.
	Style func(string) string
}

// Show implements OutputLog.
func (l *WriterLog) Show() {
	l.MemoryLog.Show()
	for i, line := range l.Lines() {
		if i == 0 && l.Style != nil {
			line = l.Style(line)
		}
		_, _ = fmt.Fprintln(l.W, strings.TrimRight(line, "\n"))
	}
}
