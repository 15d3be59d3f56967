package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const sqliteColumns = `id, title, author, genre, condition, price, description, image_url,
	seller_id, status, views, featured, created_at, updated_at`

// sqliteListing is the row shape; timestamps are unix nanoseconds.
type sqliteListing struct {
	ID          string  `db:"id"`
	Title       string  `db:"title"`
	Author      string  `db:"author"`
	Genre       string  `db:"genre"`
	Condition   string  `db:"condition"`
	Price       float64 `db:"price"`
	Description string  `db:"description"`
	ImageURL    string  `db:"image_url"`
	SellerID    string  `db:"seller_id"`
	Status      string  `db:"status"`
	Views       int64   `db:"views"`
	Featured    bool    `db:"featured"`
	CreatedAt   int64   `db:"created_at"`
	UpdatedAt   int64   `db:"updated_at"`
}

func (row sqliteListing) toListing() Listing {
	return Listing{
		ID:          row.ID,
		Title:       row.Title,
		Author:      row.Author,
		Genre:       row.Genre,
		Condition:   Condition(row.Condition),
		Price:       row.Price,
		Description: row.Description,
		ImageURL:    row.ImageURL,
		SellerID:    row.SellerID,
		Status:      Status(row.Status),
		Views:       row.Views,
		Featured:    row.Featured,
		CreatedAt:   time.Unix(0, row.CreatedAt).UTC(),
		UpdatedAt:   time.Unix(0, row.UpdatedAt).UTC(),
	}
}

func toListings(rows []sqliteListing) []Listing {
	out := make([]Listing, len(rows))
	for i, row := range rows {
		out[i] = row.toListing()
	}
	return out
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

func (r *SQLiteRepo) Create(ctx context.Context, l *Listing) error {
	if !validUUID(l.SellerID) {
		return ErrInvalidID
	}
	id := uuid.NewString()
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(timeoutCtx, `
	INSERT INTO listings (`+sqliteColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		id, l.Title, l.Author, l.Genre, string(l.Condition), l.Price, l.Description, l.ImageURL,
		l.SellerID, string(l.Status), l.Featured, l.CreatedAt.UnixNano(), l.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	l.ID = id
	l.Views = 0
	return nil
}

func (r *SQLiteRepo) get(ctx context.Context, query string, args ...any) (Listing, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var row sqliteListing
	if err := r.db.GetContext(timeoutCtx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Listing{}, ErrNotFound
		}
		return Listing{}, err
	}
	return row.toListing(), nil
}

func (r *SQLiteRepo) selectListings(ctx context.Context, query string, args ...any) ([]Listing, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var rows []sqliteListing
	if err := r.db.SelectContext(timeoutCtx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	return toListings(rows), nil
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id string) (Listing, error) {
	if !validUUID(id) {
		return Listing{}, ErrInvalidID
	}
	return r.get(ctx, `SELECT `+sqliteColumns+` FROM listings WHERE id = ?`, id)
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func (r *SQLiteRepo) Find(ctx context.Context, f Filter) ([]Listing, error) {
	where := []string{"status = 'available'"}
	args := []any{}
	if f.Genre != nil {
		where = append(where, "genre = ?")
		args = append(args, *f.Genre)
	}
	if f.Condition != nil {
		where = append(where, "condition = ?")
		args = append(args, string(*f.Condition))
	}
	if f.MinPrice != nil {
		where = append(where, "price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		where = append(where, "price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.Search != "" {
		tokens := f.SearchTokens()
		if len(tokens) == 0 {
			return []Listing{}, nil
		}
		// LOWER only folds ASCII, so non-ASCII tokens are left to ranking.
		if isASCII(strings.Join(tokens, "")) {
			var ors []string
			for _, t := range tokens {
				ors = append(ors, "(LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(description) LIKE ?)")
				pattern := "%" + t + "%"
				args = append(args, pattern, pattern, pattern)
			}
			where = append(where, "("+strings.Join(ors, " OR ")+")")
		}
	}
	return r.selectListings(ctx, `SELECT `+sqliteColumns+` FROM listings WHERE `+strings.Join(where, " AND "), args...)
}

func (r *SQLiteRepo) ListBySeller(ctx context.Context, sellerID string) ([]Listing, error) {
	if !validUUID(sellerID) {
		return nil, ErrInvalidID
	}
	return r.selectListings(ctx, `
	SELECT `+sqliteColumns+`
	FROM listings
	WHERE seller_id = ?
	ORDER BY created_at DESC, id ASC`, sellerID)
}

func (r *SQLiteRepo) Update(ctx context.Context, id string, p Patch) (Listing, error) {
	if !validUUID(id) {
		return Listing{}, ErrInvalidID
	}
	fields := []string{}
	args := []any{}
	for _, fv := range p.Fields() {
		fields = append(fields, columnOf[fv.Name]+" = ?")
		args = append(args, fv.Value)
	}
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}
	fields = append(fields, "updated_at = ?")
	args = append(args, time.Now().UTC().UnixNano(), id)
	l, err := r.get(ctx, `UPDATE listings SET `+strings.Join(fields, ", ")+` WHERE id = ? RETURNING `+sqliteColumns, args...)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Listing{}, fmt.Errorf("update listing: %w", err)
	}
	return l, err
}

func (r *SQLiteRepo) IncrementViews(ctx context.Context, id string) (Listing, error) {
	if !validUUID(id) {
		return Listing{}, ErrInvalidID
	}
	l, err := r.get(ctx, `UPDATE listings SET views = views + 1 WHERE id = ? RETURNING `+sqliteColumns, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Listing{}, fmt.Errorf("increment views: %w", err)
	}
	return l, err
}

func (r *SQLiteRepo) Delete(ctx context.Context, id string) error {
	if !validUUID(id) {
		return ErrInvalidID
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	res, err := r.db.ExecContext(timeoutCtx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type sqliteGroup struct {
	Key   string `db:"k"`
	Count int    `db:"n"`
}

func (r *SQLiteRepo) CountByStatus(ctx context.Context, sellerID string) (StatusCounts, error) {
	if !validUUID(sellerID) {
		return StatusCounts{}, ErrInvalidID
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var groups []sqliteGroup
	err := r.db.SelectContext(timeoutCtx, &groups,
		`SELECT status AS k, COUNT(*) AS n FROM listings WHERE seller_id = ? GROUP BY status`, sellerID)
	if err != nil {
		return StatusCounts{}, fmt.Errorf("count listings: %w", err)
	}
	var counts StatusCounts
	for _, g := range groups {
		counts.Add(Status(g.Key), g.Count)
	}
	return counts, nil
}

func (r *SQLiteRepo) Stats(ctx context.Context, topGenres int) (Stats, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var totals struct {
		Total     int `db:"total"`
		Available int `db:"available"`
	}
	err := r.db.GetContext(timeoutCtx, &totals, `
	SELECT COUNT(*) AS total, COALESCE(SUM(CASE WHEN status = 'available' THEN 1 ELSE 0 END), 0) AS available
	FROM listings`)
	if err != nil {
		return Stats{}, fmt.Errorf("count listings: %w", err)
	}
	var groups []sqliteGroup
	err = r.db.SelectContext(timeoutCtx, &groups, `
	SELECT genre AS k, COUNT(*) AS n
	FROM listings
	WHERE status = 'available'
	GROUP BY genre
	ORDER BY n DESC, genre ASC
	LIMIT ?`, topGenres)
	if err != nil {
		return Stats{}, fmt.Errorf("top genres: %w", err)
	}
	st := Stats{Total: totals.Total, Available: totals.Available, TopGenres: make([]GenreCount, len(groups))}
	for i, g := range groups {
		st.TopGenres[i] = GenreCount{Name: g.Key, Count: g.Count}
	}
	return st, nil
}
