package main

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"bookmarket/internal/account"
	"bookmarket/internal/config"
	"bookmarket/internal/listing"
	"bookmarket/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(ctx, config.Config{
		StoreDriver: config.DriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "seed.db"),
		DBTimeout:   time.Second,
	})
	require.NoError(t, err)
	defer store.Close(ctx)

	accounts := account.NewService(store.Accounts)
	listings := listing.NewService(store.Listings, accounts)

	n, err := seed(ctx, accounts, listings, 3, 25, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	active, err := accounts.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, active)

	st, err := listings.Stats(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 25, st.Total)
	assert.Equal(t, 25, st.Available)

	// a second run must not collide on email
	_, err = seed(ctx, accounts, listings, 3, 0, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
}

func TestSeed_NeedsAccounts(t *testing.T) {
	_, err := seed(context.Background(), nil, nil, 0, 10, rand.New(rand.NewPCG(1, 2)))
	assert.Error(t, err)
}
