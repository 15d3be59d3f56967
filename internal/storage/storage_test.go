package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bookmarket/internal/account"
	"bookmarket/internal/config"
	"bookmarket/internal/listing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		StoreDriver: config.DriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "market.db"),
		DBTimeout:   time.Second,
	}

	store, err := Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })

	assert.Equal(t, config.DriverSQLite, store.Driver)
	require.NoError(t, store.Ping(ctx))

	now := time.Now().UTC()
	seller := &account.Account{
		Name: "Ana", Email: "ana@example.com", Phone: "555", Location: "Lisbon",
		PasswordHash: "x", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.Accounts.Create(ctx, seller))

	l := &listing.Listing{
		Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction",
		Condition: listing.ConditionGood, Price: 12, Description: "A well kept paperback copy.",
		SellerID: seller.ID, Status: listing.StatusAvailable, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.Listings.Create(ctx, l))

	got, err := store.Listings.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
}

func TestOpen_SQLiteReopenKeepsSchema(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		StoreDriver: config.DriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "market.db"),
		DBTimeout:   time.Second,
	}

	first, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, first.Close(ctx))

	second, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer second.Close(ctx)

	n, err := second.Accounts.CountActive(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Config{StoreDriver: "redis"})
	assert.Error(t, err)
}
