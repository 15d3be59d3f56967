package profile

import (
	"context"
	"time"

	"bookmarket/internal/account"
	"bookmarket/internal/listing"
)

// TopGenres is how many genres the platform stats report.
const TopGenres = 5

// Profile is the public view of a seller.
type Profile struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Location    string               `json:"location"`
	MemberSince time.Time            `json:"memberSince"`
	TotalBooks  int                  `json:"totalBooks"`
	Stats       listing.StatusCounts `json:"stats"`
}

// PlatformStats summarises the marketplace.
type PlatformStats struct {
	TotalUsers     int                  `json:"totalUsers"`
	TotalBooks     int                  `json:"totalBooks"`
	AvailableBooks int                  `json:"availableBooks"`
	SoldBooks      int                  `json:"soldBooks"`
	TopGenres      []listing.GenreCount `json:"topGenres"`
}

type Accounts interface {
	GetActive(ctx context.Context, id string) (account.Account, error)
	CountActive(ctx context.Context) (int, error)
}

type Listings interface {
	CountByStatus(ctx context.Context, sellerID string) (listing.StatusCounts, error)
	Stats(ctx context.Context, topGenres int) (listing.Stats, error)
}
