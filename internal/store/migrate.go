package store

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite" // sqlite:// migration driver.
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrator applies the embedded schema migrations to a database file.
type migrator struct {
	m *migrate.Migrate
}

func newMigrator(dbPath string) (*migrator, error) {
	dir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to access migrations: %w", err)
	}
	src, err := iofs.New(dir, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}
	normalized := filepath.ToSlash(dbPath)
	if filepath.IsAbs(dbPath) && normalized[0] != '/' {
		normalized = "/" + normalized
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return &migrator{m: m}, nil
}

func (mg *migrator) up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (mg *migrator) version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return v, dirty, nil
}

func (mg *migrator) close() error {
	srcErr, dbErr := mg.m.Close()
	if srcErr != nil {
		return fmt.Errorf("failed to close migration source: %w", srcErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close migration database: %w", dbErr)
	}
	return nil
}

func migrateUp(dbPath string) (version uint, err error) {
	mg, err := newMigrator(dbPath)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := mg.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := mg.up(); err != nil {
		return 0, err
	}
	v, dirty, err := mg.version()
	if err != nil {
		return 0, err
	}
	if dirty {
		return v, fmt.Errorf("database schema version %d is dirty", v)
	}
	return v, nil
}
