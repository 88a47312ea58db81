package database

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DefaultMigrationsDir is where the daemon looks for migrations by default.
const DefaultMigrationsDir = "migrations"

// Direction selects which way Migrate moves the schema.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// MigrationStatus reports the schema version after a run.
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Changed bool
}

// Migrate applies (or rolls back) every migration under dir.
func Migrate(databaseURL, dir string, direction Direction) (*MigrationStatus, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL(dir), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	switch direction {
	case Up, "":
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return nil, fmt.Errorf("unknown migration direction %q", direction)
	}
	status := &MigrationStatus{Changed: true}
	if errors.Is(err, migrate.ErrNoChange) {
		status.Changed = false
	} else if err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return nil, fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	}
	status.Version = version
	return status, nil
}

func sourceURL(dir string) string {
	if strings.Contains(dir, "://") {
		return dir
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return "file://" + filepath.ToSlash(dir)
}
