package listing

// Filter narrows a listing query. Nil fields do not constrain the result.
// Only available listings are ever matched.
type Filter struct {
	Genre     *string
	Condition *Condition
	MinPrice  *float64
	MaxPrice  *float64
	// Search is the raw search text. Repositories may use it for a coarse
	// pre-filter; ranking decides the final match set.
	Search string
}

// Empty reports whether the price bounds exclude every listing.
func (f Filter) Empty() bool {
	return f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice
}

// Matches is the in-process form of the predicate every repository applies.
// It ignores Search.
func (f Filter) Matches(l Listing) bool {
	if l.Status != StatusAvailable {
		return false
	}
	if f.Genre != nil && l.Genre != *f.Genre {
		return false
	}
	if f.Condition != nil && l.Condition != *f.Condition {
		return false
	}
	if f.MinPrice != nil && l.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.Price > *f.MaxPrice {
		return false
	}
	return true
}

// SearchTokens returns the tokens a repository may use for its coarse text
// pre-filter. It is nil when there is no search.
func (f Filter) SearchTokens() []string {
	return Tokenize(f.Search)
}
