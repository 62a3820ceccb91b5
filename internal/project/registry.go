package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is a remembered project.
type Entry struct {
	Path      string
	Name      string
	AddedAt   time.Time
	LastRunAt *time.Time
}

// Registry keeps the remembered projects in SQLite.
type Registry struct {
	db  *sql.DB
	now func() time.Time
}

// OpenRegistry opens (creating when needed) the database at dbPath.
func OpenRegistry(dbPath string) (*Registry, error) {
	if dbPath != ":memory:" {
		const defaultDirPerms = 0o750
		if err := os.MkdirAll(filepath.Dir(dbPath), defaultDirPerms); err != nil {
			return nil, fmt.Errorf("failed to create registry dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// a single connection keeps :memory: databases shared across calls
	db.SetMaxOpenConns(1)

	r := &Registry{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate registry: %w", err)
	}
	return r, nil
}

// Close closes the database.
func (r *Registry) Close() error {
	return r.db.Close()
}

func (r *Registry) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		path TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		added_at INTEGER NOT NULL,
		last_run_at INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_projects_last_run ON projects(last_run_at);
	`
	_, err := r.db.Exec(schema)
	return err
}

// Add remembers path. Adding a known path is a no-op.
func (r *Registry) Add(ctx context.Context, path string) (Entry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{Path: abs, Name: filepath.Base(abs), AddedAt: r.now()}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO projects (path, name, added_at) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO NOTHING`,
		e.Path, e.Name, e.AddedAt.UnixNano(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to add %s: %w", abs, err)
	}
	return r.Get(ctx, abs)
}

// Get returns the entry for path.
func (r *Registry) Get(ctx context.Context, path string) (Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT path, name, added_at, last_run_at FROM projects WHERE path = ?`, path)
	e, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("project %s is not registered", path)
	}
	return e, err
}

// Remove forgets path. It reports whether anything was removed.
func (r *Registry) Remove(ctx context.Context, path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE path = ?`, abs)
	if err != nil {
		return false, fmt.Errorf("failed to remove %s: %w", abs, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// List returns every entry, most recently run first, then by path.
func (r *Registry) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT path, name, added_at, last_run_at FROM projects
		 ORDER BY last_run_at IS NULL, last_run_at DESC, path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Touch records a run in dir for every registered project that contains
// it. It returns the number of projects updated.
func (r *Registry) Touch(ctx context.Context, dir string) (int, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return 0, err
	}
	entries, err := r.List(ctx)
	if err != nil {
		return 0, err
	}

	now := r.now().UnixNano()
	touched := 0
	for _, e := range entries {
		if !contains(e.Path, abs) {
			continue
		}
		if _, err := r.db.ExecContext(ctx,
			`UPDATE projects SET last_run_at = ? WHERE path = ?`, now, e.Path); err != nil {
			return touched, fmt.Errorf("failed to touch %s: %w", e.Path, err)
		}
		touched++
	}
	return touched, nil
}

func contains(project, dir string) bool {
	if project == dir {
		return true
	}
	return strings.HasPrefix(dir, strings.TrimRight(project, string(filepath.Separator))+string(filepath.Separator))
}

func scanEntry(scan func(...any) error) (Entry, error) {
	var (
		e       Entry
		addedAt int64
		lastRun sql.NullInt64
	)
	if err := scan(&e.Path, &e.Name, &addedAt, &lastRun); err != nil {
		return Entry{}, err
	}
	e.AddedAt = time.Unix(0, addedAt)
	if lastRun.Valid {
		t := time.Unix(0, lastRun.Int64)
		e.LastRunAt = &t
	}
	return e, nil
}
