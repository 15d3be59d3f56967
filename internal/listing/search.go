package listing

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`a about above after again against all am an and any are as at be because
		been before being below between both but by can did do does doing down during each few for from
		further had has have having he her here hers herself him himself his how i if in into is it its
		itself just me more most my myself no nor not now of off on once only or other our ours ourselves
		out over own same she should so some such than that the their theirs them themselves then there
		these they this those through to too under until up very was we were what when where which while
		who whom why will with you your yours yourself yourselves`) {
		stopWords[w] = struct{}{}
	}
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Tokenize turns search text into distinct lower-case query tokens with stop
// words removed, in first-seen order.
func Tokenize(s string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, w := range splitWords(s) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// Field weights for relevance.
const (
	titleWeight       = 3
	authorWeight      = 2
	descriptionWeight = 1
)

// Score returns the relevance of l for the given query tokens. Tokens match
// whole words only.
func Score(l Listing, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	title := countWords(l.Title)
	author := countWords(l.Author)
	desc := countWords(l.Description)
	var score int
	for _, t := range tokens {
		score += titleWeight*title[t] + authorWeight*author[t] + descriptionWeight*desc[t]
	}
	return float64(score)
}

func countWords(s string) map[string]int {
	counts := map[string]int{}
	for _, w := range splitWords(s) {
		counts[w]++
	}
	return counts
}

// Scored is a listing paired with its relevance.
type Scored struct {
	Listing Listing
	Score   float64
}

// Rank scores every listing against the search text and drops those that do
// not match. Text that is blank after trimming is not a search; every listing
// is kept with a zero score. Non-blank text without usable tokens matches
// nothing.
func Rank(listings []Listing, search string) []Scored {
	out := make([]Scored, 0, len(listings))
	if strings.TrimSpace(search) == "" {
		for _, l := range listings {
			out = append(out, Scored{Listing: l})
		}
		return out
	}
	tokens := Tokenize(search)
	for _, l := range listings {
		if s := Score(l, tokens); s > 0 {
			out = append(out, Scored{Listing: l, Score: s})
		}
	}
	return out
}
