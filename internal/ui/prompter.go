package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/projcpp/projcpp/internal/compiler"
	"github.com/projcpp/projcpp/internal/theme"
)

// Notifier writes styled one-line notices.
type Notifier struct {
	mu     sync.Mutex
	Out    io.Writer
	Styles theme.Styles

	progressOpen bool
}

// Notify prints message on its own line.
func (n *Notifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closeProgress()
	_, _ = fmt.Fprintln(n.Out, n.Styles.Notice.Render(message))
}

// Error prints message in the error style.
func (n *Notifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closeProgress()
	_, _ = fmt.Fprintln(n.Out, n.Styles.Error.Render(message))
}

// Progress redraws a single status line until done reaches total.
func (n *Notifier) Progress(task string, done, total int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.Out, "\r%s %s", n.Styles.Muted.Render(task), compiler.FormatProgress(done, total))
	n.progressOpen = true
	if total > 0 && done >= total {
		n.closeProgress()
	}
}

func (n *Notifier) closeProgress() {
	if n.progressOpen {
		_, _ = fmt.Fprintln(n.Out)
		n.progressOpen = false
	}
}

// TTYPrompter asks questions with small bubbletea programs.
type TTYPrompter struct {
	*Notifier
	In  io.Reader
	Out io.Writer
}

var _ compiler.Prompter = (*TTYPrompter)(nil)

// Choose implements compiler.Prompter.
func (p *TTYPrompter) Choose(ctx context.Context, message string, options ...string) (string, error) {
	m := NewChoiceModel(message, options, p.Styles)
	if err := p.run(ctx, m); err != nil {
		return "", err
	}
	return m.Chosen, nil
}

// PickPath implements compiler.Prompter.
func (p *TTYPrompter) PickPath(ctx context.Context, req compiler.PathRequest) (string, error) {
	m := NewPathModel(req.Title, req.Folder, p.Styles)
	if err := p.run(ctx, m); err != nil {
		return "", err
	}
	return m.Value, nil
}

func (p *TTYPrompter) run(ctx context.Context, m tea.Model) error {
	prog := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(p.In),
		tea.WithOutput(p.Out),
	)
	if _, err := prog.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// NonInteractivePrompter prints notices and dismisses every question.
type NonInteractivePrompter struct {
	*Notifier
}

var _ compiler.Prompter = NonInteractivePrompter{}

// Choose implements compiler.Prompter.
func (p NonInteractivePrompter) Choose(_ context.Context, message string, _ ...string) (string, error) {
	p.Notify(message)
	return "", nil
}

// PickPath implements compiler.Prompter.
func (NonInteractivePrompter) PickPath(context.Context, compiler.PathRequest) (string, error) {
	return "", nil
}

// NewPrompter returns a TTYPrompter when in is a terminal and a
// NonInteractivePrompter otherwise.
func NewPrompter(in *os.File, out io.Writer, n *Notifier) compiler.Prompter {
	if in != nil && term.IsTerminal(int(in.Fd())) { //nolint:gosec // fd fits in int
		return &TTYPrompter{Notifier: n, In: in, Out: out}
	}
	return NonInteractivePrompter{Notifier: n}
}
