package main

import (
	"context"
	"net/http"
	"time"

	"bookmarket/internal/account"
	"bookmarket/internal/auth"
	"bookmarket/internal/config"
	"bookmarket/internal/cover"
	"bookmarket/internal/httpx"
	"bookmarket/internal/listing"
	"bookmarket/internal/profile"
	"bookmarket/internal/storage"
)

// newHandler wires services and handlers on top of store and returns the
// root handler with its middleware chain. stop releases the rate limiter.
func newHandler(cfg config.Config, store *storage.Store, covers cover.Searcher) (h http.Handler, stop func()) {
	accountService := account.NewService(store.Accounts)
	listingService := listing.NewService(store.Listings, accountService)
	authService := auth.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, accountService)
	profileService := profile.NewService(accountService, listingService)
	coverService := cover.NewService(covers)

	listingHandler := listing.NewHTTPHandler(listingService)
	accountHandler := account.NewHTTPHandler(accountService)
	authHandler := auth.NewHTTPHandler(authService)
	profileHandler := profile.NewHTTPHandler(profileService)
	coverHandler := cover.NewHTTPHandler(coverService)

	protected := httpx.AuthMiddleware(cfg.JWTSecret)

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("GET /v1/listings", listingHandler.List)
	router.HandleFunc("GET /v1/listings/{id}", listingHandler.Get)
	router.Handle("POST /v1/listings", protected(http.HandlerFunc(listingHandler.Create)))
	router.Handle("PUT /v1/listings/{id}", protected(http.HandlerFunc(listingHandler.Update)))
	router.Handle("PATCH /v1/listings/{id}/status", protected(http.HandlerFunc(listingHandler.SetStatus)))
	router.Handle("DELETE /v1/listings/{id}", protected(http.HandlerFunc(listingHandler.Delete)))

	router.HandleFunc("GET /v1/users/search", accountHandler.Search)
	router.HandleFunc("GET /v1/users/{id}/listings", listingHandler.ListBySeller)
	router.HandleFunc("GET /v1/users/{id}/profile", profileHandler.Get)
	router.HandleFunc("GET /v1/stats", profileHandler.Stats)

	router.HandleFunc("POST /v1/auth/register", authHandler.Register)
	router.HandleFunc("POST /v1/auth/login", authHandler.Login)
	router.Handle("GET /v1/me", protected(http.HandlerFunc(authHandler.Me)))

	router.HandleFunc("GET /v1/covers", coverHandler.Suggest)

	rateLimiter := httpx.NewRateLimitMiddleware(float64(cfg.RateLimitRPS), cfg.RateLimitBurst)

	h = httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.RecoveryMiddleware,
		httpx.AccessLogMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSAllowedOrigins),
		rateLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)
	return h, rateLimiter.Close
}
