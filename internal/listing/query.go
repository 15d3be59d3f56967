package listing

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Query is a validated listing search.
type Query struct {
	Filter Filter
	Sort   Sort
	Page   PageRequest
}

// DefaultQuery returns the first page of all available listings, newest first.
func DefaultQuery() Query {
	return Query{Sort: DefaultSort, Page: PageRequest{Page: DefaultPage, Limit: DefaultLimit}}
}

// ParseQuery validates URL query parameters. Every offending parameter is
// reported. Empty values and "all" for genre and condition mean no filter.
func ParseQuery(v url.Values) (Query, error) {
	q := DefaultQuery()
	var violations []Violation
	fail := func(field, msg string) {
		violations = append(violations, Violation{Field: field, Message: msg})
	}

	if s := strings.TrimSpace(v.Get("page")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			fail("page", "Page must be a positive integer")
		} else {
			q.Page.Page = n
		}
	}
	if s := strings.TrimSpace(v.Get("limit")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxLimit {
			fail("limit", fmt.Sprintf("Limit must be between 1 and %d", MaxLimit))
		} else {
			q.Page.Limit = n
		}
	}
	if s := strings.TrimSpace(v.Get("genre")); s != "" && s != "all" {
		q.Filter.Genre = &s
	}
	if s := strings.TrimSpace(v.Get("condition")); s != "" && s != "all" {
		c := Condition(s)
		if !c.Valid() {
			fail("condition", "Invalid condition")
		} else {
			q.Filter.Condition = &c
		}
	}
	q.Filter.MinPrice = parseBound(v, "minPrice", fail)
	q.Filter.MaxPrice = parseBound(v, "maxPrice", fail)
	q.Filter.Search = strings.TrimSpace(v.Get("search"))

	if s := strings.TrimSpace(v.Get("sortBy")); s != "" {
		k := SortKey(s)
		if !k.Valid() {
			fail("sortBy", "Sort field must be one of createdAt, price, title, views")
		} else {
			q.Sort.Key = k
		}
	}
	if s := strings.TrimSpace(v.Get("sortOrder")); s != "" {
		o := SortOrder(strings.ToLower(s))
		if !o.Valid() {
			fail("sortOrder", "Sort order must be asc or desc")
		} else {
			q.Sort.Order = o
		}
	}
	q.Sort.ByScore = q.Filter.Search != ""

	if len(violations) > 0 {
		return Query{}, &ValidationError{Violations: violations}
	}
	return q, nil
}

func parseBound(v url.Values, field string, fail func(string, string)) *float64 {
	s := strings.TrimSpace(v.Get(field))
	if s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		fail(field, field+" must be a non-negative number")
		return nil
	}
	return &n
}

// Run applies ranking, ordering and pagination to the listings a repository
// returned for q.Filter.
func Run(listings []Listing, q Query) ([]Scored, Pagination) {
	matched := make([]Listing, 0, len(listings))
	if !q.Filter.Empty() {
		for _, l := range listings {
			if q.Filter.Matches(l) {
				matched = append(matched, l)
			}
		}
	}
	ranked := Rank(matched, q.Filter.Search)
	Order(ranked, q.Sort)
	return Paginate(ranked, q.Page)
}
