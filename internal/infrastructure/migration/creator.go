package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MigrationPair is the up/down SQL file pair scaffolded for one schema change.
type MigrationPair struct {
	Version  string
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration scaffolds a timestamped up/down migration pair under dir.
// The version prefix (YYYYMMDDHHMMSS) keeps files in apply order for
// golang-migrate, and the name is lowered to snake case.
func CreateMigration(dir, name, description string) (*MigrationPair, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	now := time.Now()
	pair := &MigrationPair{
		Version: now.Format("20060102150405"),
		Name:    sanitizeName(name),
	}
	if pair.Name == "" {
		return nil, fmt.Errorf("migration name %q contains no usable characters", name)
	}

	base := pair.Version + "_" + pair.Name
	pair.UpPath = filepath.Join(dir, base+".up.sql")
	pair.DownPath = filepath.Join(dir, base+".down.sql")

	if description == "" {
		description = name
	}
	created := now.Format(time.RFC3339)

	up := fmt.Sprintf(`-- %s
-- %s
-- created %s
--
-- Conventions: snake_case identifiers, TIMESTAMPTZ for allocation dates,
-- UUID primary keys supplied by the application.

`, name, description, created)

	down := fmt.Sprintf(`-- %s: rollback
-- created %s
--
-- Drop objects in reverse order of the up migration.

`, name, created)

	if err := os.WriteFile(pair.UpPath, []byte(up), 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", pair.UpPath, err)
	}
	if err := os.WriteFile(pair.DownPath, []byte(down), 0644); err != nil {
		_ = os.Remove(pair.UpPath)
		return nil, fmt.Errorf("write %s: %w", pair.DownPath, err)
	}

	return pair, nil
}

// sanitizeName lowers a human-readable migration name to a snake_case file
// name fragment. Runs of separators collapse to a single underscore and
// anything else non-alphanumeric is dropped.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ListMigrations returns the base names of the up migrations in dir, sorted
// by version. A missing directory yields an empty list.
func ListMigrations(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return nil, fmt.Errorf("scan migrations directory: %w", err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".up.sql"))
	}
	sort.Strings(names)
	return names, nil
}
