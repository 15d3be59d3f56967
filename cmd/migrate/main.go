package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"bookmarket/db"
	"bookmarket/internal/account"
	"bookmarket/internal/config"
	"bookmarket/internal/listing"
	"bookmarket/internal/platform/logging"
	"bookmarket/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.FromEnv()
	if err == nil {
		_, err = logging.Setup(cfg.LogLevel, cfg.LogFormat)
	}
	if err == nil {
		err = run(context.Background(), cfg, *command, *name, os.Stdout)
	}
	if err != nil {
		slog.Error("migrate failed", "command", *command, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, command, name string, out io.Writer) error {
	if command == "create" {
		if name == "" {
			return fmt.Errorf("name is required for 'create' command")
		}
		if cfg.StoreDriver == config.DriverMongo {
			return fmt.Errorf("mongo has no migration files")
		}
		if err := goose.Create(nil, migrationsDir(cfg.StoreDriver), name, "sql"); err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		fmt.Fprintf(out, "Migration created: %s\n", name)
		return nil
	}

	switch cfg.StoreDriver {
	case config.DriverMongo:
		return ensureMongo(ctx, cfg, command, out)
	case config.DriverSQLite:
		conn, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer conn.Close()
		return migrateSQL(ctx, conn.DB, cfg.StoreDriver, command, out)
	default:
		pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("connect to database (%s): %w", config.RedactDSN(cfg.DatabaseDSN), err)
		}
		defer pool.Close()
		sqlDB := stdlib.OpenDBFromPool(pool)
		defer sqlDB.Close()
		return migrateSQL(ctx, sqlDB, cfg.StoreDriver, command, out)
	}
}

func migrateSQL(ctx context.Context, sqlDB *sql.DB, driver, command string, out io.Writer) error {
	p, err := db.NewProvider(sqlDB, driver)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		results, err := p.Up(ctx)
		if err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		for _, r := range results {
			fmt.Fprintf(out, "applied %s (%s)\n", r.Source.Path, r.Duration)
		}
		fmt.Fprintln(out, "Migrations applied successfully")
	case "down":
		r, err := p.Down(ctx)
		if err != nil {
			return fmt.Errorf("rollback migration: %w", err)
		}
		fmt.Fprintf(out, "rolled back %s\n", r.Source.Path)
	case "status":
		statuses, err := p.Status(ctx)
		if err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		for _, s := range statuses {
			applied := "pending"
			if s.State == goose.StateApplied {
				applied = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(out, "%-40s %s\n", s.Source.Path, applied)
		}
	default:
		return fmt.Errorf("unknown command: %s. Use: up, down, status, create", command)
	}
	return nil
}

func ensureMongo(ctx context.Context, cfg config.Config, command string, out io.Writer) error {
	if command != "up" {
		return fmt.Errorf("mongo only supports 'up' (ensure indexes)")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer client.Disconnect(ctx)

	database := client.Database(cfg.MongoDB)
	err = storage.EnsureMongoIndexes(ctx,
		listing.NewMongoRepo(database, cfg.DBTimeout),
		account.NewMongoRepo(database, cfg.DBTimeout),
	)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Indexes ensured successfully")
	return nil
}
