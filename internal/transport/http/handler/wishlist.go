package handler

import (
	"net/http"

	"github.com/go-shop-api/internal/application/wishlist"
	"github.com/go-shop-api/internal/domain"
	"github.com/go-shop-api/internal/transport/http/middleware"
)

type WishlistHandler struct {
	svc wishlist.Service
}

func NewWishlistHandler(svc wishlist.Service) *WishlistHandler { return &WishlistHandler{svc: svc} }

func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.ToggleWishlistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	added, err := h.svc.Toggle(r.Context(), actor.ID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	msg := "removed from wishlist"
	if added {
		msg = "added to wishlist"
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Message: msg, Data: map[string]bool{"is_wishlisted": added}})
}

func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	items, err := h.svc.List(r.Context(), actor.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Message: "wishlist", Data: items})
}
