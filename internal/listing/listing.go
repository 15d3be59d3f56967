package listing

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a listing is not found.
	ErrNotFound = errors.New("listing not found")
	// ErrForbidden is returned when the caller does not own the listing.
	ErrForbidden = errors.New("not the owner of this listing")
	// ErrInvalidID is returned when an identifier is not in the store's format.
	ErrInvalidID = errors.New("invalid listing id")
)

// DefaultImageURL is stored when a listing is created without an image.
const DefaultImageURL = "https://images.pexels.com/photos/159711/books-bookstore-book-reading-159711.jpeg"

// Genres is the fixed set of categories a listing can belong to.
var Genres = []string{
	"Fiction", "Non-Fiction", "Mystery", "Romance", "Science Fiction",
	"Fantasy", "Biography", "History", "Self-Help", "Textbook",
	"Children", "Young Adult", "Poetry", "Philosophy", "Religion",
}

func IsGenre(s string) bool {
	for _, g := range Genres {
		if g == s {
			return true
		}
	}
	return false
}

// Condition describes the physical state of a book.
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like-new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionPoor    Condition = "poor"
)

// Conditions is ordered from best to worst.
var Conditions = []Condition{ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor}

// Rank returns the position of c in Conditions (0 is best), or -1.
func (c Condition) Rank() int {
	for i, v := range Conditions {
		if v == c {
			return i
		}
	}
	return -1
}

func (c Condition) Valid() bool { return c.Rank() >= 0 }

// Status is the transactional state of a listing.
type Status string

const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
	StatusReserved  Status = "reserved"
)

var Statuses = []Status{StatusAvailable, StatusSold, StatusReserved}

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusSold, StatusReserved:
		return true
	}
	return false
}

// Listing is one book offered for sale.
type Listing struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Genre       string    `json:"genre"`
	Condition   Condition `json:"condition"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	SellerID    string    `json:"sellerId"`
	Status      Status    `json:"status"`
	Views       int64     `json:"views"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Seller is the contact information shown next to a listing.
type Seller struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	Location string
}

// Summary is a listing as presented to buyers.
type Summary struct {
	Listing
	SellerName     string   `json:"sellerName"`
	SellerEmail    string   `json:"sellerEmail"`
	SellerPhone    string   `json:"sellerPhone"`
	SellerLocation string   `json:"sellerLocation"`
	Score          *float64 `json:"score,omitempty"`
}

// StatusCounts holds the number of listings per status.
type StatusCounts struct {
	Available int `json:"available"`
	Sold      int `json:"sold"`
	Reserved  int `json:"reserved"`
}

func (c StatusCounts) Total() int { return c.Available + c.Sold + c.Reserved }

// Add increments the counter for s by n. Unknown statuses are ignored.
func (c *StatusCounts) Add(s Status, n int) {
	switch s {
	case StatusAvailable:
		c.Available += n
	case StatusSold:
		c.Sold += n
	case StatusReserved:
		c.Reserved += n
	}
}

// GenreCount is the number of available listings in a genre.
type GenreCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats aggregates listings across the whole marketplace.
type Stats struct {
	Total     int
	Available int
	TopGenres []GenreCount
}
