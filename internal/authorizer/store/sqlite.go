// Package store is the SQLite persistence layer backing
// internal/authorizer's two unordered sets and process keypair, grounded
// on internal/db/sqlite.go's config/open/migrate shape. It talks to the
// database directly through database/sql rather than through generated
// sqlc queries: the sqlc package the daemon's own store.go depends on is
// not part of this module (no sqlc-generated sources were available to
// ground it on), and the five operations this store needs are simple
// enough not to need a query generator.
package store

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlite_migrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/mattn/go-sqlite3"

	"github.com/quietlane/capwire/internal/capmsg"
)

const (
	defaultMaxConns        = 25
	defaultConnMaxLifetime = 10 * time.Minute
)

// Config holds the arguments needed to open the capability database.
type Config struct {
	// DatabaseFileName is the full file path of the database file.
	DatabaseFileName string

	// SkipMigrations, if true, makes New skip the embedded migrations,
	// so it creates no tables.
	SkipMigrations bool

	// SkipMigrationDBBackup, if true, skips the VACUUM INTO backup
	// normally taken before a schema-changing migration.
	SkipMigrationDBBackup bool
}

// SQLiteStore implements authorizer.Store over a SQLite database.
type SQLiteStore struct {
	cfg *Config
	log *slog.Logger
	db  *sql.DB
}

// New opens (creating if necessary) the capability database at
// cfg.DatabaseFileName and brings it up to the latest migration unless
// SkipMigrations is set.
func New(cfg *Config, log *slog.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(cfg.DatabaseFileName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating capability database directory: %w", err)
	}

	dsn := fmt.Sprintf(
		"file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000",
		cfg.DatabaseFileName,
	)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening capability database: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxConns)
	db.SetMaxIdleConns(defaultMaxConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	if err := configurePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring capability database: %w", err)
	}

	s := &SQLiteStore{cfg: cfg, log: log, db: db}

	if !cfg.SkipMigrations {
		if err := s.migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating capability database: %w", err)
		}
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	driver, err := sqlite_migrate.WithInstance(s.db, &sqlite_migrate.Config{})
	if err != nil {
		return fmt.Errorf("creating sqlite migration driver: %w", err)
	}

	opts := defaultMigrateOptions()

	target := func(mig *migrate.Migrate, currentDBVersion int, maxVersion uint) error {
		versionUpgradePending := currentDBVersion < int(maxVersion)
		if !versionUpgradePending {
			return nil
		}

		if !s.cfg.SkipMigrationDBBackup {
			if err := backupSqliteDatabase(
				s.db, s.cfg.DatabaseFileName, s.log,
			); err != nil {
				return err
			}
		}

		return mig.Up()
	}

	return applyMigrations(
		sqlSchemas, driver, "migrations", "sqlite", MigrationTarget(target),
		opts, s.log,
	)
}

func configurePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -65536",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("executing %q: %w", pragma, err)
		}
	}

	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AddPeer implements authorizer.Store.
func (s *SQLiteStore) AddPeer(ctx context.Context, id capmsg.PeerID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO peers (peer_id) VALUES (?)
		 ON CONFLICT (peer_id) DO NOTHING`,
		id.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("storing peer: %w", err)
	}

	return nil
}

// AddAddr implements authorizer.Store.
func (s *SQLiteStore) AddAddr(ctx context.Context, addr capmsg.ActorAddress) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO addrs (address) VALUES (?)
		 ON CONFLICT (address) DO NOTHING`,
		addr.Format(),
	)
	if err != nil {
		return fmt.Errorf("storing address: %w", err)
	}

	return nil
}

// HasPeer implements authorizer.Store.
func (s *SQLiteStore) HasPeer(ctx context.Context, id capmsg.PeerID) (bool, error) {
	var exists bool

	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM peers WHERE peer_id = ?)`,
		id.Bytes(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking peer: %w", err)
	}

	return exists, nil
}

// HasAddr implements authorizer.Store.
func (s *SQLiteStore) HasAddr(ctx context.Context, addr capmsg.ActorAddress) (bool, error) {
	var exists bool

	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM addrs WHERE address = ?)`,
		addr.Format(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking address: %w", err)
	}

	return exists, nil
}

// Keypair implements authorizer.Store. The first call mints and persists
// a fresh ed25519 keypair; subsequent calls return the same one.
func (s *SQLiteStore) Keypair(ctx context.Context) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	var pub, priv []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT public_key, private_key FROM keypair WHERE id = 1`,
	).Scan(&pub, &priv)

	switch {
	case err == nil:
		return ed25519.PublicKey(pub), ed25519.PrivateKey(priv), nil

	case errors.Is(err, sql.ErrNoRows):
		newPub, newPriv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, nil, fmt.Errorf("generating keypair: %w", err)
		}

		_, err = s.db.ExecContext(ctx,
			`INSERT INTO keypair (id, public_key, private_key)
			 VALUES (1, ?, ?)`,
			[]byte(newPub), []byte(newPriv),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("persisting keypair: %w", err)
		}

		return newPub, newPriv, nil

	default:
		return nil, nil, fmt.Errorf("fetching keypair: %w", err)
	}
}
