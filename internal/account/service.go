package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookmarket/internal/listing"
	"bookmarket/internal/platform/crypto"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Registration is a validated sign-up request.
type Registration struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Location string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an active account with a hashed password.
func (s *Service) Register(ctx context.Context, reg Registration) (Account, error) {
	email := normalizeEmail(reg.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return Account{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return Account{}, err
	}

	hash, err := crypto.HashPassword(reg.Password)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	a := &Account{
		Name:         strings.TrimSpace(reg.Name),
		Email:        email,
		Phone:        strings.TrimSpace(reg.Phone),
		Location:     strings.TrimSpace(reg.Location),
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Account{}, err
	}
	return *a, nil
}

// Authenticate checks an email and password pair against an active account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Account, error) {
	a, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, err
	}
	if !a.IsActive || !crypto.VerifyPassword(a.PasswordHash, password) {
		return Account{}, ErrInvalidCredentials
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Account, error) {
	return s.repo.GetByID(ctx, id)
}

// GetActive returns an account only when it is active.
func (s *Service) GetActive(ctx context.Context, id string) (Account, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if !a.IsActive {
		return Account{}, ErrNotFound
	}
	return a, nil
}

// Sellers resolves contact details for listing summaries.
func (s *Service) Sellers(ctx context.Context, ids []string) (map[string]listing.Seller, error) {
	accounts, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]listing.Seller, len(accounts))
	for _, a := range accounts {
		out[a.ID] = listing.Seller{
			ID:       a.ID,
			Name:     a.Name,
			Email:    a.Email,
			Phone:    a.Phone,
			Location: a.Location,
		}
	}
	return out, nil
}

// Search finds active accounts by name or location.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]Public, Pagination, error) {
	q.Text = strings.ToLower(strings.TrimSpace(q.Text))
	found, total, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("search accounts: %w", err)
	}
	out := make([]Public, len(found))
	for i, a := range found {
		out[i] = a.Public()
	}
	return out, newPagination(q, total), nil
}

func (s *Service) CountActive(ctx context.Context) (int, error) {
	return s.repo.CountActive(ctx)
}
