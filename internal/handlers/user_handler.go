package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/investalk/backend/internal/models"
	"github.com/investalk/backend/internal/services"
	"github.com/investalk/backend/internal/utils"
)

// UserHandler handles user-related requests
type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/user-info", h.GetUserInfo).Methods("GET")
	router.HandleFunc("/users/me", h.UpdateMe).Methods("PUT")
	router.HandleFunc("/users/me", h.DeleteMe).Methods("DELETE")
}

// GetUserInfo returns the authenticated user's identity
func (h *UserHandler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	principal, err := utils.GetPrincipalFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, principal)
}

// UpdateMe updates the authenticated user's profile
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	principal, err := utils.GetPrincipalFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.Update(r.Context(), principal.ID, req.Name, req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.Principal{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})
}

// DeleteMe deletes the authenticated user and the user's watchlist
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	principal, err := utils.GetPrincipalFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.userService.Delete(r.Context(), principal.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}
