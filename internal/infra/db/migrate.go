package db

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mentor-booking/internal/pkg/errs"
)

// ApplyMigrations executes every .sql file in dir in name order. The schema files are
// written to be re-runnable, so applying them to an existing database is a no-op.
func ApplyMigrations(ctx context.Context, dbtx DBTX, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.Wrapf(err, "failed to read migrations dir %s", dir)
	}

	var applied []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return applied, errs.Wrapf(err, "failed to read migration file %s", path)
		}
		if _, err := dbtx.Exec(ctx, string(content)); err != nil {
			return applied, errs.Wrapf(err, "failed to execute migration %s", path)
		}
		slog.Info("migration applied", "file", path)
		applied = append(applied, e.Name())
	}
	return applied, nil
}

// FindMigrationsDir walks up from the working directory until it finds dir.
// Tests run from their package directory, the CLI usually from the repo root.
func FindMigrationsDir(dir string) (string, error) {
	candidates := []string{
		dir,
		filepath.Join("..", dir),
		filepath.Join("..", "..", dir),
		filepath.Join("..", "..", "..", dir),
	}
	for _, c := range candidates {
		if fi, err := os.Stat(c); err == nil && fi.IsDir() {
			return c, nil
		}
	}
	return "", errs.Newf("migrations dir %q not found", dir)
}
