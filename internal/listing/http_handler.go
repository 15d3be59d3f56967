package listing

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookmarket/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func details(violations []Violation) []httpx.ErrorDetail {
	out := make([]httpx.ErrorDetail, len(violations))
	for i, v := range violations {
		out[i] = httpx.ErrorDetail{Field: v.Field, Message: v.Message}
	}
	return out
}

// writeError maps listing errors onto the response envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details(verr.Violations))
	case errors.Is(err, ErrInvalidID):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ID", "Invalid listing id", nil)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Listing not found", nil)
	case errors.Is(err, ErrForbidden):
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "You can only modify your own listings", nil)
	default:
		httpx.InternalError(w, r, err)
	}
}

// List handles GET /v1/listings
// @Summary Browse listings
// @Description Filter, search, sort and paginate available listings
// @Tags listings
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size 1-100 (default 12)"
// @Param genre query string false "Genre"
// @Param condition query string false "Condition"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param search query string false "Search text"
// @Param sortBy query string false "createdAt, price, title or views"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/listings [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, page, err := h.service.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, items, map[string]any{"pagination": page})
}

// Get handles GET /v1/listings/{id}
// @Summary Get a listing
// @Description Returns the listing with seller contact details and counts the view
// @Tags listings
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/listings/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, sum, nil)
}

// Create handles POST /v1/listings
// @Summary Create a listing
// @Tags listings
// @Accept json
// @Produce json
// @Security Bearer
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /v1/listings [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	sellerID := httpx.UserIDFrom(r)
	if sellerID == "" {
		httpx.Unauthorized(w, r)
		return
	}
	in, err := DecodeInput(r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	draft, err := ValidateDraft(in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	l, err := h.service.Create(r.Context(), sellerID, draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, l)
}

// Update handles PUT /v1/listings/{id}
// @Summary Update a listing
// @Description Changes only the supplied fields; owner only
// @Tags listings
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Listing ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/listings/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	callerID := httpx.UserIDFrom(r)
	if callerID == "" {
		httpx.Unauthorized(w, r)
		return
	}
	in, err := DecodeInput(r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := ValidatePatch(in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	l, err := h.service.Update(r.Context(), callerID, r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, l, nil)
}

// SetStatus handles PATCH /v1/listings/{id}/status
// @Summary Change listing status
// @Tags listings
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Listing ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/listings/{id}/status [patch]
func (h *HTTPHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	callerID := httpx.UserIDFrom(r)
	if callerID == "" {
		httpx.Unauthorized(w, r)
		return
	}
	in, err := DecodeInput(r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var raw string
	if v, ok := in["status"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &raw); err != nil {
			raw = ""
		}
	}
	st, err := ValidateStatus(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	l, err := h.service.SetStatus(r.Context(), callerID, r.PathValue("id"), st)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, l, nil)
}

// Delete handles DELETE /v1/listings/{id}
// @Summary Delete a listing
// @Tags listings
// @Security Bearer
// @Param id path string true "Listing ID"
// @Success 204
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/listings/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID := httpx.UserIDFrom(r)
	if callerID == "" {
		httpx.Unauthorized(w, r)
		return
	}
	if err := h.service.Delete(r.Context(), callerID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

// ListBySeller handles GET /v1/users/{id}/listings
// @Summary List a seller's listings
// @Description Every listing of the seller in any status, newest first
// @Tags listings
// @Produce json
// @Param id path string true "Seller ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/users/{id}/listings [get]
func (h *HTTPHandler) ListBySeller(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListBySeller(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, items, map[string]any{"total": len(items)})
}
