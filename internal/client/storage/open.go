package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophsession/internal/client/storage/migrations"
	"github.com/dmitrijs2005/gophsession/internal/filex"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// DefaultSQLitePath is used when the sqlite backend has no DSN.
const DefaultSQLitePath = "gophsession.db"

// Config selects and parameterizes a backend.
type Config struct {
	Backend string
	// DSN is a file path for sqlite, a connection string for postgres and a
	// redis:// URL for redis.
	DSN string
	// Passphrase, when set, wraps the backend in an EncryptedStore.
	Passphrase string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func migrate(ctx context.Context, db *sql.DB, fsys embed.FS, dialect, dir string) error {
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", dialect, err)
	}
	return nil
}

// MigrateSQLite brings db to the latest secure_store schema.
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, migrations.SQLite, "sqlite3", "sqlite")
}

// MigratePostgres brings db to the latest secure_store schema.
func MigratePostgres(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, migrations.Postgres, "pgx", "postgres")
}

// Open builds the Store described by cfg. The returned closer releases the
// underlying connection and must be called once the store is no longer used.
func Open(ctx context.Context, cfg Config) (Store, io.Closer, error) {
	var (
		s      Store
		closer io.Closer = nopCloser{}
	)

	switch cfg.Backend {
	case "", BackendMemory:
		s = NewMemoryStore()

	case BackendSQLite:
		path := cfg.DSN
		if path == "" {
			path = DefaultSQLitePath
		}
		if path != ":memory:" {
			abs, err := filex.EnsureParentDir(path)
			if err != nil {
				return nil, nil, err
			}
			path = abs
		}

		db, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		db.SetMaxOpenConns(1)
		if err := MigrateSQLite(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		s, closer = NewSQLiteStore(db), db

	case BackendPostgres:
		db, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := MigratePostgres(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		s, closer = NewPostgresStore(db), db

	case BackendRedis:
		opts, err := redis.ParseURL(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		s, closer = NewRedisStore(rdb, DefaultRedisPrefix), rdb

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}

	if cfg.Passphrase != "" {
		s = NewEncryptedStore(s, cfg.Passphrase)
	}
	return s, closer, nil
}
