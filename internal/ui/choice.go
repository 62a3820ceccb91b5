// Package ui implements the terminal side of projcpp: choice and path
// prompts built on bubbletea, styled notices, and project listings.
package ui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"

	"github.com/projcpp/projcpp/internal/theme"
)

// Key names shared by the prompt models.
const (
	keyEnter    = "enter"
	keyEsc      = "esc"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyCtrlC    = "ctrl+c"
)

const boxWidth = 64

// ChoiceModel asks the user to pick one of a few buttons. Dismissing it
// leaves Chosen empty.
type ChoiceModel struct {
	Message  string
	Options  []string
	Selected int
	Chosen   string
	Done     bool

	styles theme.Styles
}

// NewChoiceModel builds a chooser with the first option focused.
func NewChoiceModel(message string, options []string, styles theme.Styles) *ChoiceModel {
	return &ChoiceModel{Message: message, Options: options, styles: styles}
}

// Init implements tea.Model.
func (m *ChoiceModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *ChoiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	s := key.String()
	if s == keyEsc || s == "q" || s == keyCtrlC {
		return m.finish("")
	}

	n := len(m.Options)
	if n == 0 {
		return m, nil
	}
	switch s {
	case keyTab, "right", "l":
		m.Selected = (m.Selected + 1) % n
	case keyShiftTab, "left", "h":
		m.Selected = (m.Selected - 1 + n) % n
	case keyEnter:
		return m.finish(m.Options[m.Selected])
	default:
		if i, err := strconv.Atoi(s); err == nil && i >= 1 && i <= n {
			return m.finish(m.Options[i-1])
		}
	}
	return m, nil
}

func (m *ChoiceModel) finish(choice string) (tea.Model, tea.Cmd) {
	m.Chosen = choice
	m.Done = true
	return m, tea.Quit
}

// View implements tea.Model.
func (m *ChoiceModel) View() string {
	if m.Done {
		return ""
	}
	buttons := make([]string, len(m.Options))
	for i, opt := range m.Options {
		label := "[" + strconv.Itoa(i+1) + "] " + opt
		if i == m.Selected {
			buttons[i] = m.styles.ActiveButton.Render(label)
		} else {
			buttons[i] = m.styles.Button.Render(label)
		}
	}

	body := m.styles.Text.Render(wrap.String(m.Message, boxWidth-4))
	help := m.styles.Muted.Render("tab/←/→ move • enter select • esc dismiss")
	content := strings.Join([]string{
		body,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, joinWithGap(buttons)...),
		"",
		help,
	}, "\n")
	return m.styles.Box.Width(boxWidth).Render(content) + "\n"
}

func joinWithGap(items []string) []string {
	out := make([]string, 0, len(items)*2)
	for i, it := range items {
		if i > 0 {
			out = append(out, "  ")
		}
		out = append(out, it)
	}
	return out
}
