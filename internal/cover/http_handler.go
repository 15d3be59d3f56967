package cover

import (
	"log/slog"
	"net/http"
	"strings"

	"bookmarket/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Suggest handles GET /v1/covers
// @Summary Suggest cover images
// @Description Looks the title up on Open Library and returns up to 5 cover URLs
// @Tags covers
// @Produce json
// @Param title query string true "Book title"
// @Param author query string false "Author"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /v1/covers [get]
func (h *HTTPHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input",
			[]httpx.ErrorDetail{{Field: "title", Message: "title is required"}})
		return
	}
	covers, err := h.service.Suggest(r.Context(), title, r.URL.Query().Get("author"))
	if err != nil {
		slog.WarnContext(r.Context(), "cover lookup failed", "request_id", httpx.RequestIDFrom(r), "error", err)
		httpx.JSONError(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "Cover lookup is unavailable", nil)
		return
	}
	httpx.JSONSuccess(w, r, covers, nil)
}
