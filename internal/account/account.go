package account

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("account not found")
	ErrAlreadyExists = errors.New("account already exists")
	// ErrInvalidID is returned when an identifier is not in the store's format.
	ErrInvalidID = errors.New("invalid account id")
	// ErrInvalidCredentials covers unknown emails, wrong passwords and
	// inactive accounts alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Account is a registered user. Every account can sell.
type Account struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	Location     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public is the part of an account shown to other users.
type Public struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a Account) Public() Public {
	return Public{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Location:  a.Location,
		CreatedAt: a.CreatedAt,
	}
}

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
	MinSearchLength    = 2
)

// SearchQuery selects one page of active accounts whose name or location
// contains Text, ignoring case.
type SearchQuery struct {
	Text  string
	Page  int
	Limit int
}

func (q SearchQuery) Offset() int { return (q.Page - 1) * q.Limit }

// Pagination is the metadata of a search page.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalUsers  int  `json:"totalUsers"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

func newPagination(q SearchQuery, total int) Pagination {
	pages := 0
	if q.Limit > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}
	return Pagination{
		CurrentPage: q.Page,
		TotalPages:  pages,
		TotalUsers:  total,
		HasNext:     q.Page < pages,
		HasPrev:     q.Page > 1,
	}
}
