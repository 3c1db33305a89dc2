package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/httpfs"
)

// LatestMigrationVersion is the latest migration version of the
// capability database.
//
// NOTE: This MUST be updated when a new migration is added.
const LatestMigrationVersion uint = 1

// MigrationTarget is a functional option passed to applyMigrations to
// specify a target version to migrate to.
type MigrationTarget func(mig *migrate.Migrate,
	currentDBVersion int, maxMigrationVersion uint) error

// TargetLatest migrates to the latest version available.
var TargetLatest MigrationTarget = func(mig *migrate.Migrate, _ int, _ uint) error {
	return mig.Up()
}

// ErrMigrationDowngrade is returned when a database downgrade is detected.
var ErrMigrationDowngrade = errors.New("capability database downgrade detected")

type migrateOptions struct {
	latestVersion uint
}

func defaultMigrateOptions() *migrateOptions {
	return &migrateOptions{latestVersion: LatestMigrationVersion}
}

// migrationLogger wraps slog.Logger to implement the migrate.Logger
// interface.
type migrationLogger struct {
	log *slog.Logger
}

// Printf implements the migrate.Logger interface.
func (m *migrationLogger) Printf(format string, v ...any) {
	format = strings.TrimRight(format, "\n")
	m.log.Info(fmt.Sprintf(format, v...))
}

// Verbose implements the migrate.Logger interface.
func (m *migrationLogger) Verbose() bool {
	return true
}

// applyMigrations executes the migration files embedded in fsys using
// driver, up to (or down to) the given target.
func applyMigrations(fsys fs.FS, driver database.Driver, path, dbName string,
	targetVersion MigrationTarget, opts *migrateOptions,
	log *slog.Logger) error {

	migrateFileServer, err := httpfs.New(http.FS(fsys), path)
	if err != nil {
		return err
	}

	sqlMigrate, err := migrate.NewWithInstance(
		"migrations", migrateFileServer, dbName, driver,
	)
	if err != nil {
		return err
	}

	migrationVersion, dirty, err := sqlMigrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("unable to determine current migration "+
			"version: %w", err)
	}

	if dirty {
		return fmt.Errorf("capability database is in a dirty state at "+
			"version %v, manual intervention required", migrationVersion)
	}

	if migrationVersion > opts.latestVersion {
		return fmt.Errorf("%w: database version is newer than the "+
			"latest migration version: db_version=%v, "+
			"latest_migration_version=%v", ErrMigrationDowngrade,
			migrationVersion, opts.latestVersion)
	}

	currentDBVersion, _, err := driver.Version()
	if err != nil {
		return fmt.Errorf("unable to get current db version: %w", err)
	}
	log.InfoContext(context.Background(), "attempting to apply capability "+
		"store migration(s)",
		"current_db_version", currentDBVersion,
		"latest_migration_version", opts.latestVersion,
	)

	sqlMigrate.Log = &migrationLogger{log}

	err = targetVersion(sqlMigrate, currentDBVersion, opts.latestVersion)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	currentDBVersion, _, err = driver.Version()
	if err != nil {
		return fmt.Errorf("unable to get current db version: %w", err)
	}
	log.InfoContext(context.Background(), "capability database version "+
		"after migration", "current_db_version", currentDBVersion)

	return nil
}

// backupSqliteDatabase creates a VACUUM INTO backup of srcDB before a
// migration that would change its schema.
func backupSqliteDatabase(srcDB *sql.DB, dbFullFilePath string,
	log *slog.Logger) error {

	if srcDB == nil {
		return fmt.Errorf("backup source database is nil")
	}

	timestamp := time.Now().UnixNano()
	backupFullFilePath := fmt.Sprintf("%s.%d.backup", dbFullFilePath, timestamp)

	log.InfoContext(context.Background(), "creating backup of capability "+
		"database file",
		"source", dbFullFilePath, "backup", backupFullFilePath,
	)

	stmt, err := srcDB.Prepare("VACUUM INTO ?;")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(backupFullFilePath)

	return err
}
