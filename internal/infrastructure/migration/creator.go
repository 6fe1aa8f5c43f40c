package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const upTemplate = `-- Migration: {{.Name}}
-- Created: {{.Created}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`

const downTemplate = `-- Rollback: {{.Name}}
-- Created: {{.Created}}

`

// File is one up/down migration pair
type File struct {
	Version     uint
	Name        string
	Description string
	Created     string
	UpPath      string
	DownPath    string
}

// ErrEmptyName is returned when a migration name sanitizes to nothing
var ErrEmptyName = errors.New("migration name is empty")

// Create writes the next sequential migration pair into dir, numbered
// one past the highest existing version with six digits, matching
// golang-migrate's -seq layout.
func Create(dir, name, description string) (*File, error) {
	base := sanitizeName(name)
	if base == "" {
		return nil, ErrEmptyName
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := List(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if len(existing) > 0 {
		next = existing[len(existing)-1].Version + 1
	}

	stem := fmt.Sprintf("%06d_%s", next, base)
	f := &File{
		Version:     next,
		Name:        name,
		Description: description,
		Created:     time.Now().UTC().Format(time.RFC3339),
		UpPath:      filepath.Join(dir, stem+".up.sql"),
		DownPath:    filepath.Join(dir, stem+".down.sql"),
	}

	if err := render(f.UpPath, upTemplate, f); err != nil {
		return nil, err
	}
	if err := render(f.DownPath, downTemplate, f); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, err
	}
	return f, nil
}

// Entry is a migration version found in a source
type Entry struct {
	Version uint
	Name    string
	HasDown bool
}

// List returns the migrations in source ordered by version
func List(source fs.FS) ([]Entry, error) {
	files, err := fs.ReadDir(source, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	byVersion := make(map[uint]*Entry)
	for _, de := range files {
		if de.IsDir() {
			continue
		}
		stem, down := strings.CutSuffix(de.Name(), ".down.sql")
		if !down {
			var up bool
			if stem, up = strings.CutSuffix(de.Name(), ".up.sql"); !up {
				continue
			}
		}
		num, label, ok := strings.Cut(stem, "_")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(num, 10, 32)
		if err != nil {
			continue
		}
		e, seen := byVersion[uint(v)]
		if !seen {
			e = &Entry{Version: uint(v), Name: label}
			byVersion[uint(v)] = e
		}
		e.HasDown = e.HasDown || down
	}

	out := make([]Entry, 0, len(byVersion))
	for _, e := range byVersion {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func render(path, tmpl string, f *File) error {
	t, err := template.New(filepath.Base(path)).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()
	return t.Execute(out, f)
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			if s := b.String(); s != "" && !strings.HasSuffix(s, "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
