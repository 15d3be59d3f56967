package listing

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=listing

// Repository defines the contract for listing storage. Identifiers that are
// not in the backend's format yield ErrInvalidID; unknown ones ErrNotFound.
type Repository interface {
	// Create assigns the ID and stores l.
	Create(ctx context.Context, l *Listing) error
	GetByID(ctx context.Context, id string) (Listing, error)
	// Find returns the available listings matching f. The text pre-filter on
	// f.Search may return a superset of what ranking keeps.
	Find(ctx context.Context, f Filter) ([]Listing, error)
	ListBySeller(ctx context.Context, sellerID string) ([]Listing, error)
	Update(ctx context.Context, id string, p Patch) (Listing, error)
	// IncrementViews atomically adds one view and returns the updated listing.
	IncrementViews(ctx context.Context, id string) (Listing, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, sellerID string) (StatusCounts, error)
	Stats(ctx context.Context, topGenres int) (Stats, error)
}

// SellerDirectory resolves contact details for seller ids. Unknown ids are
// absent from the result.
type SellerDirectory interface {
	Sellers(ctx context.Context, ids []string) (map[string]Seller, error)
}
