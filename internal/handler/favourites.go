package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/shelfmark/shelfmark-go/internal/middleware"
	"github.com/shelfmark/shelfmark-go/internal/model"
	"github.com/shelfmark/shelfmark-go/internal/service"
)

// FavouritesHandler handles HTTP requests for the caller's favourites.
// Every handler responds with the full favourites list.
type FavouritesHandler struct {
	service *service.FavouritesService
}

// NewFavouritesHandler creates a new FavouritesHandler.
func NewFavouritesHandler(svc *service.FavouritesService) *FavouritesHandler {
	return &FavouritesHandler{service: svc}
}

// HandleList handles GET /api/user/favourites requests.
func (h *FavouritesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Unauthorized"))
		return
	}

	favs, err := h.service.List(r.Context(), id.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, favs)
}

// HandleAdd handles PUT /api/user/favourites/{id} requests.
func (h *FavouritesHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemParam(w, r)
	if !ok {
		return
	}
	h.add(w, r, itemID)
}

// HandleAddFromBody handles POST /api/user/favourites requests with a
// {"id": "..."} body.
func (h *FavouritesHandler) HandleAddFromBody(w http.ResponseWriter, r *http.Request) {
	var req model.FavouriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.add(w, r, req.ID)
}

// HandleRemove handles DELETE /api/user/favourites/{id} requests.
func (h *FavouritesHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Unauthorized"))
		return
	}

	itemID, ok := itemParam(w, r)
	if !ok {
		return
	}

	favs, err := h.service.Remove(r.Context(), id.ID, itemID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, favs)
}

func (h *FavouritesHandler) add(w http.ResponseWriter, r *http.Request, itemID string) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Unauthorized"))
		return
	}

	favs, err := h.service.Add(r.Context(), id.ID, itemID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, favs)
}

// itemParam returns the decoded {id} path segment. chi matches on the raw
// path when the request carries escapes the default encoding would not
// produce, and the segment is then still escaped.
func itemParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return raw, true
	}
	itemID, err := url.PathUnescape(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid favourite id"))
		return "", false
	}
	return itemID, true
}
