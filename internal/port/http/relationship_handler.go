package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fwwzhai/thrifty-backend/internal/identity"
	"github.com/fwwzhai/thrifty-backend/internal/platform/logger"
	"github.com/fwwzhai/thrifty-backend/internal/service"
)

type relationshipHandler struct {
	rels *service.RelationshipService
	log  logger.Logger
}

type toggleResponse struct {
	Outcome service.WishlistOutcome `json:"outcome"`
}

func (h *relationshipHandler) toggleWishlist(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())
	outcome, err := h.rels.ToggleWishlist(r.Context(), userID, chi.URLParam(r, "listingID"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Outcome: outcome})
}

func (h *relationshipHandler) listWishlist(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())
	entries, err := h.rels.ListWishlist(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *relationshipHandler) follow(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())
	if err := h.rels.Follow(r.Context(), userID, chi.URLParam(r, "targetID")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *relationshipHandler) unfollow(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())
	if err := h.rels.Unfollow(r.Context(), userID, chi.URLParam(r, "targetID")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type followStatusResponse struct {
	Following bool `json:"following"`
}

func (h *relationshipHandler) followStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())
	following, err := h.rels.IsFollowing(r.Context(), userID, chi.URLParam(r, "targetID"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, followStatusResponse{Following: following})
}

func (h *relationshipHandler) listFollowing(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())
	edges, err := h.rels.ListFollowing(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, edges)
}

func (h *relationshipHandler) listFollowers(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())
	edges, err := h.rels.ListFollowers(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, edges)
}
