package auth

import (
	"context"
	"fmt"
	"time"

	"bookmarket/internal/account"
	"bookmarket/internal/platform/crypto"
)

// Session is what a client receives after signing in.
type Session struct {
	AccessToken string         `json:"accessToken"`
	ExpiresIn   int            `json:"expiresIn"`
	Account     account.Public `json:"account"`
}

type Service struct {
	secret   string
	ttl      time.Duration
	accounts *account.Service
}

func NewService(secret string, ttl time.Duration, accounts *account.Service) *Service {
	return &Service{secret: secret, ttl: ttl, accounts: accounts}
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, reg account.Registration) (Session, error) {
	a, err := s.accounts.Register(ctx, reg)
	if err != nil {
		return Session{}, err
	}
	return s.issue(a)
}

// Login returns account.ErrInvalidCredentials for any bad pair.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	a, err := s.accounts.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	return s.issue(a)
}

// Me returns the signed-in account while it is still active.
func (s *Service) Me(ctx context.Context, accountID string) (account.Public, error) {
	a, err := s.accounts.GetActive(ctx, accountID)
	if err != nil {
		return account.Public{}, err
	}
	return a.Public(), nil
}

func (s *Service) issue(a account.Account) (Session, error) {
	token, _, err := crypto.GenerateToken(s.secret, a.ID, s.ttl)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{
		AccessToken: token,
		ExpiresIn:   int(s.ttl.Seconds()),
		Account:     a.Public(),
	}, nil
}
