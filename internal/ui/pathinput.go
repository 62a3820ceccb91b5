package ui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/projcpp/projcpp/internal/theme"
)

// PathModel reads a file or folder path and checks that it exists.
type PathModel struct {
	Title    string
	Folder   bool
	Input    textinput.Model
	ErrorMsg string
	Value    string
	Done     bool

	stat   func(string) (os.FileInfo, error)
	styles theme.Styles
}

// NewPathModel builds a focused path input.
func NewPathModel(title string, folder bool, styles theme.Styles) *PathModel {
	ti := textinput.New()
	ti.Placeholder = "/path/to/file"
	if folder {
		ti.Placeholder = "/path/to/folder"
	}
	ti.Prompt = "> "
	ti.CharLimit = 4096
	ti.Width = boxWidth - 8
	ti.TextStyle = styles.Text
	ti.Focus()

	return &PathModel{Title: title, Folder: folder, Input: ti, stat: os.Stat, styles: styles}
}

// Init implements tea.Model.
func (m *PathModel) Init() tea.Cmd { return textinput.Blink }

// Validate returns an error message for raw, or "" when it is acceptable.
func (m *PathModel) Validate(raw string) string {
	path := ExpandHome(strings.TrimSpace(raw))
	if path == "" {
		return "Path cannot be empty."
	}
	info, err := m.stat(path)
	if err != nil {
		return "Path does not exist."
	}
	if m.Folder && !info.IsDir() {
		return "Please choose a folder."
	}
	if !m.Folder && info.IsDir() {
		return "Please choose a file, not a folder."
	}
	return ""
}

// Update implements tea.Model.
func (m *PathModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case keyEsc, keyCtrlC:
			m.Value, m.Done = "", true
			return m, tea.Quit
		case keyEnter:
			if errMsg := m.Validate(m.Input.Value()); errMsg != "" {
				m.ErrorMsg = errMsg
				return m, nil
			}
			m.Value = ExpandHome(strings.TrimSpace(m.Input.Value()))
			m.Done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	m.ErrorMsg = ""
	return m, cmd
}

// View implements tea.Model.
func (m *PathModel) View() string {
	if m.Done {
		return ""
	}
	lines := []string{m.styles.Title.Render(m.Title), "", m.Input.View()}
	if m.ErrorMsg != "" {
		lines = append(lines, "", m.styles.Error.Render(m.ErrorMsg))
	}
	lines = append(lines, "", m.styles.Muted.Render("enter confirm • esc dismiss"))
	return m.styles.Box.Width(boxWidth).Render(strings.Join(lines, "\n")) + "\n"
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
