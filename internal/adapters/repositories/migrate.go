package repositories

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies all pending up migrations to the database at dbURL.
// When dir is empty the migrations embedded in the binary are used,
// otherwise they are read from dir on disk.
func Migrate(dbURL, dir string, log *zap.Logger) error {
	if strings.TrimSpace(dbURL) == "" {
		return errors.New("migrate: database url is required")
	}
	if log == nil {
		log = zap.L()
	}

	m, err := newMigrator(dbURL, dir)
	if err != nil {
		return err
	}
	defer m.Close()

	m.Log = &migrateLogger{log: log}

	log.Info("running database migrations")
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("database migration: no change needed")
			return nil
		}
		log.Error("database migration failed", zap.Error(err))
		return fmt.Errorf("migrate: up: %w", err)
	}

	version, dirty, err := m.Version()
	if err == nil {
		log.Info("database migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
	return nil
}

func newMigrator(dbURL, dir string) (*migrate.Migrate, error) {
	if dir != "" {
		m, err := migrate.New("file://"+dir, dbURL)
		if err != nil {
			return nil, fmt.Errorf("migrate: open %q: %w", dir, err)
		}
		return m, nil
	}

	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrate: open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return nil, fmt.Errorf("migrate: connect: %w", err)
	}
	return m, nil
}

type migrateLogger struct {
	log *zap.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.log.Sugar().Debugf("migration: "+strings.TrimSpace(format), v...)
}

func (l *migrateLogger) Verbose() bool { return false }
