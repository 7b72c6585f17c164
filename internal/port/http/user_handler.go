package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
	"github.com/fwwzhai/thrifty-backend/internal/identity"
	"github.com/fwwzhai/thrifty-backend/internal/platform/logger"
	"github.com/fwwzhai/thrifty-backend/internal/repository"
	"github.com/fwwzhai/thrifty-backend/internal/service"
)

type userHandler struct {
	users *service.UserService
	log   logger.Logger
}

type registerRequest struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	AvatarRef string `json:"avatar_ref"`
	Email     string `json:"email"`
}

// register creates the profile record for the authenticated identity.
func (h *userHandler) register(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user := &entity.User{
		ID:        userID,
		Name:      req.Name,
		Bio:       req.Bio,
		AvatarRef: req.AvatarRef,
		Email:     req.Email,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.users.Register(r.Context(), user); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *userHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetProfile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	AvatarRef string `json:"avatar_ref"`
}

func (h *userHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	var req updateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	err := h.users.UpdateProfile(r.Context(), repository.UpdateProfileParams{
		UserID:    userID,
		Name:      req.Name,
		Bio:       req.Bio,
		AvatarRef: req.AvatarRef,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
