package profile

import (
	"context"
	"fmt"
)

type Service struct {
	accounts Accounts
	listings Listings
}

func NewService(accounts Accounts, listings Listings) *Service {
	return &Service{accounts: accounts, listings: listings}
}

// Get returns the profile of an active seller.
func (s *Service) Get(ctx context.Context, id string) (Profile, error) {
	a, err := s.accounts.GetActive(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	counts, err := s.listings.CountByStatus(ctx, a.ID)
	if err != nil {
		return Profile{}, fmt.Errorf("count seller listings: %w", err)
	}
	return Profile{
		ID:          a.ID,
		Name:        a.Name,
		Location:    a.Location,
		MemberSince: a.CreatedAt,
		TotalBooks:  counts.Total(),
		Stats:       counts,
	}, nil
}

// Platform returns marketplace-wide statistics. Sold books are every
// listing that is not available, reserved ones included.
func (s *Service) Platform(ctx context.Context) (PlatformStats, error) {
	users, err := s.accounts.CountActive(ctx)
	if err != nil {
		return PlatformStats{}, fmt.Errorf("count users: %w", err)
	}
	st, err := s.listings.Stats(ctx, TopGenres)
	if err != nil {
		return PlatformStats{}, fmt.Errorf("listing stats: %w", err)
	}
	return PlatformStats{
		TotalUsers:     users,
		TotalBooks:     st.Total,
		AvailableBooks: st.Available,
		SoldBooks:      st.Total - st.Available,
		TopGenres:      st.TopGenres,
	}, nil
}
