package listing

import (
	"sort"
	"strings"
)

type SortKey string

const (
	SortCreatedAt SortKey = "createdAt"
	SortPrice     SortKey = "price"
	SortTitle     SortKey = "title"
	SortViews     SortKey = "views"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortCreatedAt, SortPrice, SortTitle, SortViews:
		return true
	}
	return false
}

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

func (o SortOrder) Valid() bool { return o == Asc || o == Desc }

// Sort is the requested ordering of a result set.
type Sort struct {
	Key   SortKey
	Order SortOrder
	// ByScore puts relevance descending ahead of Key.
	ByScore bool
}

// DefaultSort is newest first.
var DefaultSort = Sort{Key: SortCreatedAt, Order: Desc}

// compare returns <0, 0 or >0 ordering a before b by key alone, ascending.
func (k SortKey) compare(a, b Listing) int {
	switch k {
	case SortPrice:
		return cmpFloat(a.Price, b.Price)
	case SortTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortViews:
		return cmpFloat(float64(a.Views), float64(b.Views))
	default:
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
		return 0
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Less is a strict total order: score (when requested), then the sort key in
// the requested direction, then id ascending whatever the direction.
func (s Sort) Less(a, b Scored) bool {
	if s.ByScore && a.Score != b.Score {
		return a.Score > b.Score
	}
	if c := s.Key.compare(a.Listing, b.Listing); c != 0 {
		if s.Order == Asc {
			return c < 0
		}
		return c > 0
	}
	return a.Listing.ID < b.Listing.ID
}

// Order sorts items in place.
func Order(items []Scored, s Sort) {
	sort.SliceStable(items, func(i, j int) bool { return s.Less(items[i], items[j]) })
}
