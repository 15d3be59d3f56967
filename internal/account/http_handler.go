package account

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"bookmarket/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// WriteError maps account errors onto the response envelope.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidID):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ID", "Invalid user id", nil)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	case errors.Is(err, ErrAlreadyExists):
		httpx.JSONError(w, r, http.StatusConflict, "ALREADY_EXISTS", "Email already exists", nil)
	default:
		httpx.InternalError(w, r, err)
	}
}

func parseSearch(r *http.Request) (SearchQuery, []httpx.ErrorDetail) {
	v := r.URL.Query()
	q := SearchQuery{Text: strings.TrimSpace(v.Get("q")), Page: 1, Limit: DefaultSearchLimit}
	var details []httpx.ErrorDetail

	if len([]rune(q.Text)) < MinSearchLength {
		details = append(details, httpx.ErrorDetail{Field: "q", Message: fmt.Sprintf("Search query must be at least %d characters", MinSearchLength)})
	}
	if s := v.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			details = append(details, httpx.ErrorDetail{Field: "page", Message: "Page must be a positive integer"})
		} else {
			q.Page = n
		}
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxSearchLimit {
			details = append(details, httpx.ErrorDetail{Field: "limit", Message: fmt.Sprintf("Limit must be between 1 and %d", MaxSearchLimit)})
		} else {
			q.Limit = n
		}
	}
	return q, details
}

// Search handles GET /v1/users/search
// @Summary Search users
// @Description Case-insensitive match on name or location among active users
// @Tags users
// @Produce json
// @Param q query string true "Search text (at least 2 characters)"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size 1-50 (default 10)"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/users/search [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	q, details := parseSearch(r)
	if len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}
	users, page, err := h.service.Search(r.Context(), q)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, users, map[string]any{"pagination": page})
}
