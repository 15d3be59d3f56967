// Package cover suggests cover images for the listing form.
package cover

import (
	"context"
	"fmt"
	"strings"

	"bookmarket/internal/platform/openlibrary"
)

// MaxSuggestions caps the number of cover URLs returned.
const MaxSuggestions = 5

// Searcher is the part of the Open Library client the service needs.
type Searcher interface {
	Search(ctx context.Context, title, author string, limit int) (*openlibrary.SearchResponse, error)
}

// Suggestion is one candidate cover.
type Suggestion struct {
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	ImageURL string `json:"imageUrl"`
}

type Service struct {
	client Searcher
}

// NewService returns a service backed by client. A nil client disables
// lookups.
func NewService(client Searcher) *Service {
	return &Service{client: client}
}

func (s *Service) Enabled() bool { return s.client != nil }

// Suggest returns up to MaxSuggestions distinct covers for title and author.
func (s *Service) Suggest(ctx context.Context, title, author string) ([]Suggestion, error) {
	title = strings.TrimSpace(title)
	if !s.Enabled() || title == "" {
		return []Suggestion{}, nil
	}
	// Ask for more than we keep since many results have no cover.
	res, err := s.client.Search(ctx, title, strings.TrimSpace(author), MaxSuggestions*4)
	if err != nil {
		return nil, fmt.Errorf("search open library: %w", err)
	}
	out := []Suggestion{}
	seen := map[string]bool{}
	for _, d := range res.Docs {
		u := d.CoverURL()
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		sug := Suggestion{Title: d.Title, ImageURL: u}
		if len(d.AuthorNames) > 0 {
			sug.Author = d.AuthorNames[0]
		}
		out = append(out, sug)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out, nil
}
