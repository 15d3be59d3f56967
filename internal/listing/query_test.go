package listing

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func book(id string, price float64, opts ...func(*Listing)) Listing {
	l := Listing{
		ID:          id,
		Title:       "Book " + id,
		Author:      "Author",
		Genre:       "Fiction",
		Condition:   ConditionGood,
		Price:       price,
		Description: "A perfectly ordinary used book.",
		Status:      StatusAvailable,
		CreatedAt:   epoch,
	}
	for _, o := range opts {
		o(&l)
	}
	return l
}

func ids(items []Scored) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Listing.ID
	}
	return out
}

func TestParseQuery_Defaults(t *testing.T) {
	q, err := ParseQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, DefaultQuery(), q)
}

func TestParseQuery_Values(t *testing.T) {
	q, err := ParseQuery(url.Values{
		"page":      {"3"},
		"limit":     {"50"},
		"genre":     {"Fiction"},
		"condition": {"like-new"},
		"minPrice":  {"5"},
		"maxPrice":  {"10.5"},
		"search":    {"  space opera "},
		"sortBy":    {"price"},
		"sortOrder": {"ASC"},
	})
	require.NoError(t, err)
	assert.Equal(t, PageRequest{Page: 3, Limit: 50}, q.Page)
	assert.Equal(t, "Fiction", *q.Filter.Genre)
	assert.Equal(t, ConditionLikeNew, *q.Filter.Condition)
	assert.Equal(t, 5.0, *q.Filter.MinPrice)
	assert.Equal(t, 10.5, *q.Filter.MaxPrice)
	assert.Equal(t, "space opera", q.Filter.Search)
	assert.Equal(t, Sort{Key: SortPrice, Order: Asc, ByScore: true}, q.Sort)
}

func TestParseQuery_AllMeansNoFilter(t *testing.T) {
	q, err := ParseQuery(url.Values{"genre": {"all"}, "condition": {"all"}})
	require.NoError(t, err)
	assert.Nil(t, q.Filter.Genre)
	assert.Nil(t, q.Filter.Condition)
}

func TestParseQuery_ReportsEveryViolation(t *testing.T) {
	_, err := ParseQuery(url.Values{
		"page":      {"0"},
		"limit":     {"101"},
		"condition": {"mint"},
		"minPrice":  {"-1"},
		"maxPrice":  {"cheap"},
		"sortBy":    {"rating"},
		"sortOrder": {"sideways"},
	})
	assert.Equal(t, []string{"page", "limit", "condition", "minPrice", "maxPrice", "sortBy", "sortOrder"}, violationFields(t, err))
}

func TestRun_FilterPriceRange(t *testing.T) {
	var listings []Listing
	for i, p := range []float64{3, 6, 8, 9, 15} {
		listings = append(listings, book(fmt.Sprintf("b%d", i), p))
	}
	q, err := ParseQuery(url.Values{
		"genre": {"Fiction"}, "minPrice": {"5"}, "maxPrice": {"10"},
		"page": {"1"}, "limit": {"2"}, "sortBy": {"price"}, "sortOrder": {"asc"},
	})
	require.NoError(t, err)

	page, meta := Run(listings, q)
	assert.Equal(t, []string{"b1", "b2"}, ids(page))
	assert.Equal(t, Pagination{CurrentPage: 1, TotalPages: 2, TotalBooks: 3, HasNext: true, HasPrev: false}, meta)

	q.Page.Page = 2
	page, meta = Run(listings, q)
	assert.Equal(t, []string{"b3"}, ids(page))
	assert.False(t, meta.HasNext)
	assert.True(t, meta.HasPrev)
}

func TestRun_InvertedPriceRangeIsEmpty(t *testing.T) {
	q := DefaultQuery()
	lo, hi := 10.0, 5.0
	q.Filter.MinPrice, q.Filter.MaxPrice = &lo, &hi
	page, meta := Run([]Listing{book("a", 7)}, q)
	assert.Empty(t, page)
	assert.Equal(t, 0, meta.TotalBooks)
	assert.Equal(t, 0, meta.TotalPages)
}

func TestRun_SearchOrdersByRelevance(t *testing.T) {
	listings := []Listing{
		book("a", 5, func(l *Listing) { l.Title = "Gardening Basics" }),
		book("b", 5, func(l *Listing) { l.Description = "An opera set in deep space, told slowly." }),
		book("c", 5, func(l *Listing) { l.Title = "Space Opera"; l.Author = "Catherynne Valente" }),
		book("d", 5, func(l *Listing) { l.Title = "Cooking for One" }),
		book("e", 5, func(l *Listing) { l.Title = "Space Between Us" }),
	}
	q, err := ParseQuery(url.Values{"search": {"space opera"}})
	require.NoError(t, err)

	page, meta := Run(listings, q)
	assert.Equal(t, []string{"c", "e", "b"}, ids(page))
	assert.Equal(t, 3, meta.TotalBooks)
	assert.Equal(t, []float64{6, 3, 2}, []float64{page[0].Score, page[1].Score, page[2].Score})
}

func TestRun_ExcludesUnavailable(t *testing.T) {
	listings := []Listing{
		book("a", 5),
		book("b", 5, func(l *Listing) { l.Status = StatusReserved }),
		book("c", 5, func(l *Listing) { l.Status = StatusSold }),
	}
	page, _ := Run(listings, DefaultQuery())
	assert.Equal(t, []string{"a"}, ids(page))
}

func TestRun_TieBreakByID(t *testing.T) {
	listings := []Listing{book("c", 5), book("a", 5), book("b", 5)}
	for _, order := range []SortOrder{Asc, Desc} {
		for _, key := range []SortKey{SortCreatedAt, SortPrice, SortViews} {
			q := DefaultQuery()
			q.Sort = Sort{Key: key, Order: order}
			page, _ := Run(listings, q)
			assert.Equal(t, []string{"a", "b", "c"}, ids(page), "%s %s", key, order)
		}
	}
}

func TestOrder_TitleIsCaseInsensitive(t *testing.T) {
	items := []Scored{
		{Listing: book("1", 1, func(l *Listing) { l.Title = "beta" })},
		{Listing: book("2", 1, func(l *Listing) { l.Title = "Alpha" })},
		{Listing: book("3", 1, func(l *Listing) { l.Title = "Gamma" })},
	}
	Order(items, Sort{Key: SortTitle, Order: Asc})
	assert.Equal(t, []string{"2", "1", "3"}, ids(items))
}

func TestFilter_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		listings := genListings(t)
		genre := rapid.SampledFrom(Genres).Draw(t, "genre")
		lo := float64(rapid.IntRange(0, 100).Draw(t, "min"))
		f := Filter{Genre: &genre, MinPrice: &lo}

		once := filterAll(listings, f)
		twice := filterAll(once, f)
		if len(once) != len(twice) {
			t.Fatalf("filter not idempotent: %d then %d", len(once), len(twice))
		}
	})
}

func TestPaginate_PartitionsOrderedSet(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		listings := genListings(t)
		limit := rapid.IntRange(1, MaxLimit).Draw(t, "limit")
		key := rapid.SampledFrom([]SortKey{SortCreatedAt, SortPrice, SortTitle, SortViews}).Draw(t, "key")
		order := rapid.SampledFrom([]SortOrder{Asc, Desc}).Draw(t, "order")

		q := DefaultQuery()
		q.Sort = Sort{Key: key, Order: order}
		q.Page.Limit = MaxLimit
		full := make([]Scored, 0, len(listings))
		for p := 1; ; p++ {
			q.Page.Page = p
			page, meta := Run(listings, q)
			full = append(full, page...)
			if !meta.HasNext {
				break
			}
		}

		q.Page.Limit = limit
		var joined []Scored
		pages := 0
		for p := 1; ; p++ {
			q.Page.Page = p
			page, meta := Run(listings, q)
			joined = append(joined, page...)
			pages++
			if !meta.HasNext {
				if meta.TotalPages > 0 && pages != meta.TotalPages {
					t.Fatalf("walked %d pages, metadata says %d", pages, meta.TotalPages)
				}
				break
			}
		}

		if len(joined) != len(full) {
			t.Fatalf("pages hold %d items, full set has %d", len(joined), len(full))
		}
		seen := map[string]bool{}
		for i := range full {
			if joined[i].Listing.ID != full[i].Listing.ID {
				t.Fatalf("position %d: got %s want %s", i, joined[i].Listing.ID, full[i].Listing.ID)
			}
			if seen[joined[i].Listing.ID] {
				t.Fatalf("duplicate %s", joined[i].Listing.ID)
			}
			seen[joined[i].Listing.ID] = true
		}
	})
}

func TestPaginate_PastEnd(t *testing.T) {
	items, meta := Paginate([]int{1, 2, 3}, PageRequest{Page: 5, Limit: 2})
	assert.Empty(t, items)
	assert.Equal(t, Pagination{CurrentPage: 5, TotalPages: 2, TotalBooks: 3, HasNext: false, HasPrev: true}, meta)
}

func genListings(t *rapid.T) []Listing {
	n := rapid.IntRange(0, 250).Draw(t, "n")
	out := make([]Listing, n)
	for i := range out {
		out[i] = Listing{
			ID:        fmt.Sprintf("id-%04d", i),
			Title:     rapid.SampledFrom([]string{"Dune", "dune", "Emma", "Ulysses"}).Draw(t, "title"),
			Genre:     rapid.SampledFrom(Genres).Draw(t, "genre"),
			Condition: rapid.SampledFrom(Conditions).Draw(t, "condition"),
			Price:     float64(rapid.IntRange(1, 200).Draw(t, "price")),
			Views:     int64(rapid.IntRange(0, 5).Draw(t, "views")),
			Status:    rapid.SampledFrom(Statuses).Draw(t, "status"),
			CreatedAt: epoch.Add(time.Duration(rapid.IntRange(0, 10).Draw(t, "age")) * time.Hour),
		}
	}
	return out
}

func filterAll(listings []Listing, f Filter) []Listing {
	var out []Listing
	for _, l := range listings {
		if f.Matches(l) {
			out = append(out, l)
		}
	}
	return out
}
