package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgColumns = `id::text, name, email, phone, location, password_hash, is_active, created_at, updated_at`

// pgUniqueViolation is the SQLSTATE of a unique index conflict.
const pgUniqueViolation = "23505"

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Location, &a.PasswordHash, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, err
}

func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *PostgresRepo) Create(ctx context.Context, a *Account) error {
	const query = `
	INSERT INTO accounts (id, name, email, phone, location, password_hash, is_active, created_at, updated_at)
	VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id::text
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query,
		a.Name, a.Email, a.Phone, a.Location, a.PasswordHash, a.IsActive, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *PostgresRepo) getOne(ctx context.Context, query string, arg any) (Account, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	a, err := scanAccount(r.db.QueryRow(timeoutCtx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Account, error) {
	if !validUUID(id) {
		return Account{}, ErrInvalidID
	}
	return r.getOne(ctx, `SELECT `+pgColumns+` FROM accounts WHERE id = $1 LIMIT 1`, id)
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (Account, error) {
	return r.getOne(ctx, `SELECT `+pgColumns+` FROM accounts WHERE lower(email) = lower($1) LIMIT 1`, email)
}

func (r *PostgresRepo) collect(ctx context.Context, query string, args ...any) ([]Account, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()
	out := []Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetByIDs(ctx context.Context, ids []string) ([]Account, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validUUID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []Account{}, nil
	}
	return r.collect(ctx, `SELECT `+pgColumns+` FROM accounts WHERE id = ANY($1::uuid[])`, valid)
}

func (r *PostgresRepo) Search(ctx context.Context, q SearchQuery) ([]Account, int, error) {
	const where = `is_active AND (strpos(lower(name), $1) > 0 OR strpos(lower(location), $1) > 0)`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var total int
	if err := r.db.QueryRow(timeoutCtx, `SELECT COUNT(*) FROM accounts WHERE `+where, q.Text).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}
	found, err := r.collect(ctx, `
	SELECT `+pgColumns+`
	FROM accounts
	WHERE `+where+`
	ORDER BY lower(name) ASC, id ASC
	LIMIT $2 OFFSET $3`, q.Text, q.Limit, q.Offset())
	if err != nil {
		return nil, 0, err
	}
	return found, total, nil
}

func (r *PostgresRepo) CountActive(ctx context.Context) (int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var n int
	if err := r.db.QueryRow(timeoutCtx, `SELECT COUNT(*) FROM accounts WHERE is_active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}
