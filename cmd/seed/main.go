package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"bookmarket/internal/account"
	"bookmarket/internal/config"
	"bookmarket/internal/listing"
	"bookmarket/internal/platform/logging"
	"bookmarket/internal/storage"

	"github.com/google/uuid"
)

const seedPassword = "Seed!Pass1"

var (
	firstNames = []string{"Ana", "Bruno", "Chloe", "Dev", "Elif", "Farah", "Goran", "Hana", "Ivo", "Jun"}
	lastNames  = []string{"Silva", "Okafor", "Muller", "Tanaka", "Novak", "Haddad", "Costa", "Larsen"}
	cities     = []string{"Lisbon", "Porto", "Madrid", "Berlin", "Lyon", "Krakow", "Dublin", "Turin"}
	words      = []string{"Silent", "River", "Glass", "Empire", "Winter", "Garden", "Shadow", "Harbor", "Paper", "Crown", "Ember", "Atlas"}
	authors    = []string{"Ursula K. Le Guin", "Frank Herbert", "Jane Austen", "Toni Morrison", "Italo Calvino", "Mary Beard", "Carl Sagan", "Agatha Christie"}
)

func main() {
	var (
		nAccounts = flag.Int("accounts", 20, "Number of seller accounts to create")
		nListings = flag.Int("listings", 200, "Number of listings to create")
	)
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if _, err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		slog.Error("invalid logging configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		slog.Error("open store", "error", err)
		os.Exit(1)
	}
	defer store.Close(ctx)

	accounts := account.NewService(store.Accounts)
	listings := listing.NewService(store.Listings, accounts)
	rnd := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	created, err := seed(ctx, accounts, listings, *nAccounts, *nListings, rnd)
	if err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
	slog.Info("seed complete", "accounts", *nAccounts, "listings", created, "password", seedPassword)
}

// seed registers nAccounts sellers and spreads nListings over them. It
// returns the number of listings created.
func seed(ctx context.Context, accounts *account.Service, listings *listing.Service, nAccounts, nListings int, rnd *rand.Rand) (int, error) {
	if nAccounts <= 0 {
		return 0, fmt.Errorf("at least one account is needed")
	}
	batch := uuid.NewString()[:8]

	sellers := make([]string, 0, nAccounts)
	for i := range nAccounts {
		first, last := pick(rnd, firstNames), pick(rnd, lastNames)
		a, err := accounts.Register(ctx, account.Registration{
			Name:     first + " " + last,
			Email:    fmt.Sprintf("%s.%s.%d.%s@example.com", strings.ToLower(first), strings.ToLower(last), i, batch),
			Password: seedPassword,
			Phone:    fmt.Sprintf("+351 9%08d", rnd.IntN(100000000)),
			Location: pick(rnd, cities),
		})
		if err != nil {
			return 0, fmt.Errorf("register account %d: %w", i, err)
		}
		sellers = append(sellers, a.ID)
	}

	for i := range nListings {
		price := float64(100+rnd.IntN(4900)) / 100
		title := pick(rnd, words) + " " + pick(rnd, words)
		_, err := listings.Create(ctx, pick(rnd, sellers), listing.Draft{
			Title:       title,
			Author:      pick(rnd, authors),
			Genre:       pick(rnd, listing.Genres),
			Condition:   pick(rnd, listing.Conditions),
			Price:       &price,
			Description: fmt.Sprintf("A used copy of %s, read once and kept on a shelf since.", title),
		})
		if err != nil {
			return i, fmt.Errorf("create listing %d: %w", i, err)
		}
		if (i+1)%100 == 0 {
			slog.Info("seeding listings", "done", i+1, "total", nListings)
		}
	}
	return nListings, nil
}

func pick[T any](rnd *rand.Rand, xs []T) T {
	return xs[rnd.IntN(len(xs))]
}
