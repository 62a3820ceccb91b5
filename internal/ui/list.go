package ui

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	devicons "github.com/epilande/go-devicons"

	"github.com/projcpp/projcpp/internal/theme"
)

type iconFileInfo struct {
	name  string
	isDir bool
}

func (i iconFileInfo) Name() string { return i.name }

func (i iconFileInfo) Size() int64 { return 0 }

func (i iconFileInfo) Mode() os.FileMode {
	if i.isDir {
		return os.ModeDir | 0o755
	}
	return 0
}

func (i iconFileInfo) ModTime() time.Time { return time.Time{} }

func (i iconFileInfo) IsDir() bool { return i.isDir }

func (i iconFileInfo) Sys() any { return nil }

// IconFor returns the devicon glyph for a file or directory name.
func IconFor(name string, isDir bool) string {
	if name == "" {
		return ""
	}
	return devicons.IconForInfo(iconFileInfo{name: name, isDir: isDir}).Icon
}

// ProjectIcon picks the glyph of the project's main source, falling back to
// the folder icon.
func ProjectIcon(dir string) string {
	for _, candidate := range []string{"main.cpp", "main.c"} {
		if _, err := os.Stat(filepath.Join(dir, candidate)); err == nil {
			return IconFor(candidate, false)
		}
	}
	return IconFor(filepath.Base(dir), true)
}

// ProjectRow is one line of a project listing.
type ProjectRow struct {
	Path      string
	LastRunAt *time.Time
}

// Lister renders project listings.
type Lister struct {
	Styles    theme.Styles
	ShowIcons bool
	Icon      func(dir string) string
	Now       func() time.Time
}

// Render formats rows as aligned lines.
func (l Lister) Render(rows []ProjectRow) string {
	icon := l.Icon
	if icon == nil {
		icon = ProjectIcon
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}

	var b strings.Builder
	for _, r := range rows {
		if l.ShowIcons {
			if g := icon(r.Path); g != "" {
				b.WriteString(g + " ")
			}
		}
		b.WriteString(l.Styles.Text.Render(r.Path))
		if r.LastRunAt != nil {
			b.WriteString("  " + l.Styles.Muted.Render("ran "+humanize.RelTime(*r.LastRunAt, now(), "ago", "from now")))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
