// Package migrate runs versioned SQL migrations against Postgres via
// golang-migrate/migrate/v4, replacing ad-hoc AutoMigrate calls for the
// tables backing internal/index/postgres and internal/registry.
package migrate

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Run applies every migration in sourceFS (an embed.FS rooted at a
// directory of "NNNN_name.up.sql"/"down.sql" files) to dsn, returning nil if
// the schema is already at the latest version.
func Run(dsn string, sourceFS embed.FS, dir string) error {
	sub, err := fs.Sub(sourceFS, dir)
	if err != nil {
		return fmt.Errorf("open migrations dir %q: %w", dir, err)
	}

	src, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("load migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
