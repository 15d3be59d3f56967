package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgColumns = `id::text, title, author, genre, condition, price::float8, description, image_url,
	seller_id::text, status, views, featured, created_at, updated_at`

// columnOf maps patch field names to SQL columns.
var columnOf = map[string]string{
	"title":       "title",
	"author":      "author",
	"genre":       "genre",
	"condition":   "condition",
	"price":       "price",
	"description": "description",
	"imageUrl":    "image_url",
	"status":      "status",
}

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

func scanListing(row pgx.Row) (Listing, error) {
	var l Listing
	var condition, status string
	err := row.Scan(
		&l.ID, &l.Title, &l.Author, &l.Genre, &condition, &l.Price, &l.Description, &l.ImageURL,
		&l.SellerID, &status, &l.Views, &l.Featured, &l.CreatedAt, &l.UpdatedAt,
	)
	l.Condition = Condition(condition)
	l.Status = Status(status)
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
	return l, err
}

func collectListings(rows pgx.Rows) ([]Listing, error) {
	defer rows.Close()
	out := []Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *PostgresRepo) Create(ctx context.Context, l *Listing) error {
	if !validUUID(l.SellerID) {
		return ErrInvalidID
	}
	query := `
	INSERT INTO listings (id, title, author, genre, condition, price, description, image_url,
	                      seller_id, status, views, featured, created_at, updated_at)
	VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11, $12)
	RETURNING ` + pgColumns
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	stored, err := scanListing(r.db.QueryRow(timeoutCtx, query,
		l.Title, l.Author, l.Genre, string(l.Condition), l.Price, l.Description, l.ImageURL,
		l.SellerID, string(l.Status), l.Featured, l.CreatedAt, l.UpdatedAt,
	))
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	*l = stored
	return nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Listing, error) {
	if !validUUID(id) {
		return Listing{}, ErrInvalidID
	}
	query := `SELECT ` + pgColumns + ` FROM listings WHERE id = $1 LIMIT 1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	l, err := scanListing(r.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrNotFound
		}
		return Listing{}, err
	}
	return l, nil
}

func (r *PostgresRepo) Find(ctx context.Context, f Filter) ([]Listing, error) {
	clauses := []string{"status = 'available'"}
	args := []any{}
	argn := 1

	if f.Genre != nil {
		clauses = append(clauses, fmt.Sprintf("genre = $%d", argn))
		args = append(args, *f.Genre)
		argn++
	}
	if f.Condition != nil {
		clauses = append(clauses, fmt.Sprintf("condition = $%d", argn))
		args = append(args, string(*f.Condition))
		argn++
	}
	if f.MinPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price >= $%d", argn))
		args = append(args, *f.MinPrice)
		argn++
	}
	if f.MaxPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price <= $%d", argn))
		args = append(args, *f.MaxPrice)
		argn++
	}
	if f.Search != "" {
		tokens := f.SearchTokens()
		if len(tokens) == 0 {
			return []Listing{}, nil
		}
		var ors []string
		for _, t := range tokens {
			ors = append(ors, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d OR description ILIKE $%d)", argn, argn, argn))
			args = append(args, "%"+t+"%")
			argn++
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}

	query := `SELECT ` + pgColumns + ` FROM listings WHERE ` + strings.Join(clauses, " AND ")
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	return collectListings(rows)
}

func (r *PostgresRepo) ListBySeller(ctx context.Context, sellerID string) ([]Listing, error) {
	if !validUUID(sellerID) {
		return nil, ErrInvalidID
	}
	query := `SELECT ` + pgColumns + ` FROM listings WHERE seller_id = $1 ORDER BY created_at DESC, id::text ASC`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("query seller listings: %w", err)
	}
	return collectListings(rows)
}

func (r *PostgresRepo) Update(ctx context.Context, id string, p Patch) (Listing, error) {
	if !validUUID(id) {
		return Listing{}, ErrInvalidID
	}
	fields := []string{}
	args := []any{}
	argn := 1
	for _, fv := range p.Fields() {
		fields = append(fields, fmt.Sprintf("%s = $%d", columnOf[fv.Name], argn))
		args = append(args, fv.Value)
		argn++
	}
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}
	fields = append(fields, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE listings SET %s WHERE id = $%d RETURNING %s`, strings.Join(fields, ", "), argn, pgColumns)
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	l, err := scanListing(r.db.QueryRow(timeoutCtx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrNotFound
		}
		return Listing{}, fmt.Errorf("update listing: %w", err)
	}
	return l, nil
}

func (r *PostgresRepo) IncrementViews(ctx context.Context, id string) (Listing, error) {
	if !validUUID(id) {
		return Listing{}, ErrInvalidID
	}
	query := `UPDATE listings SET views = views + 1 WHERE id = $1 RETURNING ` + pgColumns
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	l, err := scanListing(r.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrNotFound
		}
		return Listing{}, fmt.Errorf("increment views: %w", err)
	}
	return l, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	if !validUUID(id) {
		return ErrInvalidID
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) CountByStatus(ctx context.Context, sellerID string) (StatusCounts, error) {
	if !validUUID(sellerID) {
		return StatusCounts{}, ErrInvalidID
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, `SELECT status, COUNT(*) FROM listings WHERE seller_id = $1 GROUP BY status`, sellerID)
	if err != nil {
		return StatusCounts{}, fmt.Errorf("count listings: %w", err)
	}
	defer rows.Close()
	var counts StatusCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return StatusCounts{}, err
		}
		counts.Add(Status(status), n)
	}
	return counts, rows.Err()
}

func (r *PostgresRepo) Stats(ctx context.Context, topGenres int) (Stats, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var st Stats
	err := r.db.QueryRow(timeoutCtx, `
	SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'available') FROM listings
	`).Scan(&st.Total, &st.Available)
	if err != nil {
		return Stats{}, fmt.Errorf("count listings: %w", err)
	}

	rows, err := r.db.Query(timeoutCtx, `
	SELECT genre, COUNT(*) AS n
	FROM listings
	WHERE status = 'available'
	GROUP BY genre
	ORDER BY n DESC, genre ASC
	LIMIT $1
	`, topGenres)
	if err != nil {
		return Stats{}, fmt.Errorf("top genres: %w", err)
	}
	defer rows.Close()
	st.TopGenres = []GenreCount{}
	for rows.Next() {
		var g GenreCount
		if err := rows.Scan(&g.Name, &g.Count); err != nil {
			return Stats{}, err
		}
		st.TopGenres = append(st.TopGenres, g)
	}
	return st, rows.Err()
}
