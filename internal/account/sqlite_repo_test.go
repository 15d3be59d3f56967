package account

import (
	"context"
	"testing"
	"time"

	"bookmarket/db"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newSQLiteRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	conn, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn.DB, "sqlite"))
	return NewSQLiteRepo(conn, 5*time.Second)
}

func seedAccount(t *testing.T, repo Repository, name, email, location string, active bool) Account {
	t.Helper()
	a := Account{
		Name:         name,
		Email:        email,
		Phone:        "555",
		Location:     location,
		PasswordHash: "hash",
		IsActive:     active,
		CreatedAt:    epoch,
		UpdatedAt:    epoch,
	}
	require.NoError(t, repo.Create(context.Background(), &a))
	return a
}

func TestSQLiteRepo_CreateAndLookup(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	a := seedAccount(t, repo, "Ada", "ada@example.com", "London", true)
	require.NotEmpty(t, a.ID)

	byID, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.Name)
	assert.True(t, byID.IsActive)
	assert.True(t, epoch.Equal(byID.CreatedAt))

	byEmail, err := repo.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byEmail.ID)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByID(ctx, "42")
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteRepo_DuplicateEmail(t *testing.T) {
	repo := newSQLiteRepo(t)
	seedAccount(t, repo, "Ada", "ada@example.com", "London", true)

	dup := Account{Name: "Other", Email: "ADA@example.com", PasswordHash: "x", CreatedAt: epoch, UpdatedAt: epoch}
	assert.ErrorIs(t, repo.Create(context.Background(), &dup), ErrAlreadyExists)
}

func TestSQLiteRepo_GetByIDs(t *testing.T) {
	repo := newSQLiteRepo(t)
	a := seedAccount(t, repo, "Ada", "ada@example.com", "London", true)
	b := seedAccount(t, repo, "Bea", "bea@example.com", "Leeds", true)

	found, err := repo.GetByIDs(context.Background(), []string{a.ID, "bogus", b.ID, uuid.NewString()})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.GetByIDs(context.Background(), []string{"bogus"})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSQLiteRepo_Search(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	seedAccount(t, repo, "Carla", "c@example.com", "London", true)
	seedAccount(t, repo, "ada", "a@example.com", "Paris", true)
	seedAccount(t, repo, "Bea", "b@example.com", "East London", true)
	seedAccount(t, repo, "Dan", "d@example.com", "London", false)

	found, total, err := repo.Search(ctx, SearchQuery{Text: "lon", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"Bea", "Carla"}, names(found))

	found, total, err = repo.Search(ctx, SearchQuery{Text: "a", Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"Carla"}, names(found))

	n, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func names(accounts []Account) []string {
	out := make([]string, len(accounts))
	for i, a := range accounts {
		out[i] = a.Name
	}
	return out
}
