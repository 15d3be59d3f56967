package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqliteColumns = `id, name, email, phone, location, password_hash, is_active, created_at, updated_at`

type sqliteAccount struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	Phone        string `db:"phone"`
	Location     string `db:"location"`
	PasswordHash string `db:"password_hash"`
	IsActive     bool   `db:"is_active"`
	CreatedAt    int64  `db:"created_at"`
	UpdatedAt    int64  `db:"updated_at"`
}

func (row sqliteAccount) toAccount() Account {
	return Account{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		Phone:        row.Phone,
		Location:     row.Location,
		PasswordHash: row.PasswordHash,
		IsActive:     row.IsActive,
		CreatedAt:    time.Unix(0, row.CreatedAt).UTC(),
		UpdatedAt:    time.Unix(0, row.UpdatedAt).UTC(),
	}
}

type SQLiteRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewSQLiteRepo(db *sqlx.DB, timeout time.Duration) *SQLiteRepo {
	return &SQLiteRepo{db: db, timeout: timeout}
}

func (r *SQLiteRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func (r *SQLiteRepo) Create(ctx context.Context, a *Account) error {
	id := uuid.NewString()
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(timeoutCtx, `
	INSERT INTO accounts (`+sqliteColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, a.Name, a.Email, a.Phone, a.Location, a.PasswordHash, a.IsActive,
		a.CreatedAt.UnixNano(), a.UpdatedAt.UnixNano(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	a.ID = id
	return nil
}

func (r *SQLiteRepo) get(ctx context.Context, query string, args ...any) (Account, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var row sqliteAccount
	if err := r.db.GetContext(timeoutCtx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return row.toAccount(), nil
}

func (r *SQLiteRepo) selectAccounts(ctx context.Context, query string, args ...any) ([]Account, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var rows []sqliteAccount
	if err := r.db.SelectContext(timeoutCtx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	out := make([]Account, len(rows))
	for i, row := range rows {
		out[i] = row.toAccount()
	}
	return out, nil
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id string) (Account, error) {
	if !validUUID(id) {
		return Account{}, ErrInvalidID
	}
	return r.get(ctx, `SELECT `+sqliteColumns+` FROM accounts WHERE id = ?`, id)
}

func (r *SQLiteRepo) GetByEmail(ctx context.Context, email string) (Account, error) {
	return r.get(ctx, `SELECT `+sqliteColumns+` FROM accounts WHERE LOWER(email) = LOWER(?)`, email)
}

func (r *SQLiteRepo) GetByIDs(ctx context.Context, ids []string) ([]Account, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validUUID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []Account{}, nil
	}
	query, args, err := sqlx.In(`SELECT `+sqliteColumns+` FROM accounts WHERE id IN (?)`, valid)
	if err != nil {
		return nil, err
	}
	return r.selectAccounts(ctx, r.db.Rebind(query), args...)
}

// Search folds case with LOWER, which only covers ASCII in SQLite.
func (r *SQLiteRepo) Search(ctx context.Context, q SearchQuery) ([]Account, int, error) {
	const where = `is_active = 1 AND (instr(LOWER(name), ?) > 0 OR instr(LOWER(location), ?) > 0)`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var total int
	if err := r.db.GetContext(timeoutCtx, &total, `SELECT COUNT(*) FROM accounts WHERE `+where, q.Text, q.Text); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}
	found, err := r.selectAccounts(ctx, `
	SELECT `+sqliteColumns+`
	FROM accounts
	WHERE `+where+`
	ORDER BY LOWER(name) ASC, id ASC
	LIMIT ? OFFSET ?`, q.Text, q.Text, q.Limit, q.Offset())
	if err != nil {
		return nil, 0, err
	}
	return found, total, nil
}

func (r *SQLiteRepo) CountActive(ctx context.Context) (int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var n int
	if err := r.db.GetContext(timeoutCtx, &n, `SELECT COUNT(*) FROM accounts WHERE is_active = 1`); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}
