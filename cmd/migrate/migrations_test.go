package main

import (
	"bytes"
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"bookmarket/internal/config"

	"github.com/pressly/goose/v3"
)

func repoRoot(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file lives in cmd/migrate/, so repo root is ../..
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", ".."))
}

func TestCollectMigrations_ParsesMigrationsDir(t *testing.T) {
	for _, driver := range []string{"postgres", "sqlite"} {
		dir := filepath.Join(repoRoot(t), "db", "migrations", driver)
		if _, err := goose.CollectMigrations(dir, 0, goose.MaxVersion); err != nil {
			t.Fatalf("expected %s migrations to parse, got error: %v", driver, err)
		}
	}
}

func TestRun_SQLiteUpStatusDown(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		StoreDriver: config.DriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "migrate.db"),
		DBTimeout:   time.Second,
	}

	var out bytes.Buffer
	if err := run(ctx, cfg, "up", "", &out); err != nil {
		t.Fatalf("up: %v", err)
	}
	if !strings.Contains(out.String(), "Migrations applied successfully") {
		t.Fatalf("unexpected up output: %q", out.String())
	}

	out.Reset()
	if err := run(ctx, cfg, "status", "", &out); err != nil {
		t.Fatalf("status: %v", err)
	}
	if strings.Contains(out.String(), "pending") {
		t.Fatalf("expected every migration applied, got %q", out.String())
	}

	out.Reset()
	if err := run(ctx, cfg, "down", "", &out); err != nil {
		t.Fatalf("down: %v", err)
	}
	if !strings.Contains(out.String(), "00002_create_listings.sql") {
		t.Fatalf("expected listings migration rolled back, got %q", out.String())
	}
}

func TestRun_RejectsUnknownCommand(t *testing.T) {
	cfg := config.Config{
		StoreDriver: config.DriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "migrate.db"),
	}
	if err := run(context.Background(), cfg, "redo", "", &bytes.Buffer{}); err == nil {
		t.Fatal("expected an error for an unknown command")
	}
	if err := run(context.Background(), cfg, "create", "", &bytes.Buffer{}); err == nil {
		t.Fatal("expected create without a name to fail")
	}
}
