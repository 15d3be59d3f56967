// Package storage opens the backend selected by STORE_DRIVER and hands out
// its repositories.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bookmarket/db"
	"bookmarket/internal/account"
	"bookmarket/internal/config"
	"bookmarket/internal/listing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	_ "modernc.org/sqlite"
)

const pingTimeout = 2 * time.Second

// Store bundles the repositories of one backend.
type Store struct {
	Driver   string
	Listings listing.Repository
	Accounts account.Repository

	ping  func(context.Context) error
	close func(context.Context) error
}

// Ping reports whether the backend answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}

// Open connects to the configured backend and prepares its schema: SQLite is
// always migrated, PostgreSQL only with AUTO_MIGRATE, Mongo indexes are
// always ensured.
func Open(ctx context.Context, cfg config.Config) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg)
	case config.DriverMongo:
		return openMongo(ctx, cfg)
	case config.DriverSQLite:
		return openSQLite(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openPostgres(ctx context.Context, cfg config.Config) (*Store, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database (%s): %w", config.RedactDSN(cfg.DatabaseDSN), err)
	}

	if cfg.AutoMigrate {
		sqlDB := stdlib.OpenDBFromPool(pool)
		err := db.Migrate(ctx, sqlDB, config.DriverPostgres)
		_ = sqlDB.Close()
		if err != nil {
			pool.Close()
			return nil, err
		}
	}

	slog.InfoContext(ctx, "database connection OK", "driver", config.DriverPostgres, "dsn", config.RedactDSN(cfg.DatabaseDSN))
	return &Store{
		Driver:   config.DriverPostgres,
		Listings: listing.NewPostgresRepo(pool, cfg.DBTimeout),
		Accounts: account.NewPostgresRepo(pool, cfg.DBTimeout),
		ping:     pool.Ping,
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

func openMongo(ctx context.Context, cfg config.Config) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	ping := func(ctx context.Context) error { return client.Ping(ctx, nil) }

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := ping(pingCtx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo (%s): %w", config.RedactDSN(cfg.MongoURI), err)
	}

	database := client.Database(cfg.MongoDB)
	listings := listing.NewMongoRepo(database, cfg.DBTimeout)
	accounts := account.NewMongoRepo(database, cfg.DBTimeout)
	if err := EnsureMongoIndexes(ctx, listings, accounts); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	slog.InfoContext(ctx, "database connection OK", "driver", config.DriverMongo, "db", cfg.MongoDB)
	return &Store{
		Driver:   config.DriverMongo,
		Listings: listings,
		Accounts: accounts,
		ping:     ping,
		close:    client.Disconnect,
	}, nil
}

// EnsureMongoIndexes creates the listing and account indexes.
func EnsureMongoIndexes(ctx context.Context, listings *listing.MongoRepo, accounts *account.MongoRepo) error {
	if err := listings.EnsureIndexes(ctx); err != nil {
		return err
	}
	return accounts.EnsureIndexes(ctx)
}

// OpenSQLite opens path with the pragmas the repositories rely on. SQLite
// allows a single writer, so the pool holds one connection.
func OpenSQLite(path string) (*sqlx.DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1)
	return conn, nil
}

func openSQLite(ctx context.Context, cfg config.Config) (*Store, error) {
	conn, err := OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, conn.DB, config.DriverSQLite); err != nil {
		_ = conn.Close()
		return nil, err
	}

	slog.InfoContext(ctx, "database connection OK", "driver", config.DriverSQLite, "path", cfg.SQLitePath)
	return &Store{
		Driver:   config.DriverSQLite,
		Listings: listing.NewSQLiteRepo(conn, cfg.DBTimeout),
		Accounts: account.NewSQLiteRepo(conn, cfg.DBTimeout),
		ping:     conn.PingContext,
		close:    func(context.Context) error { return conn.Close() },
	}, nil
}
