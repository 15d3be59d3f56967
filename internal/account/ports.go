package account

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=account

// Repository defines the contract for account storage. Emails are stored
// lower-cased and are unique.
type Repository interface {
	// Create assigns the ID. A taken email yields ErrAlreadyExists.
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id string) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	// GetByIDs returns the accounts found among ids. Malformed ids are
	// skipped.
	GetByIDs(ctx context.Context, ids []string) ([]Account, error)
	// Search returns one page of matches ordered by name, and the total
	// number of matches.
	Search(ctx context.Context, q SearchQuery) ([]Account, int, error)
	CountActive(ctx context.Context) (int, error)
}
