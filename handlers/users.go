// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/scoreboard/cliparse"
	"github.com/danielhkuo/scoreboard/leaderboard"
	"github.com/danielhkuo/scoreboard/middleware"
	"github.com/danielhkuo/scoreboard/models"
)

type UserHandler struct {
	store *leaderboard.Store
	cfg   cliparse.Config
}

func NewUserHandler(store *leaderboard.Store, cfg cliparse.Config) *UserHandler {
	return &UserHandler{store: store, cfg: cfg}
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	caller, ok := identify(w, r, h.store, h.cfg)
	if !ok {
		return
	}
	limit, token, err := pageParams(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	page, err := h.store.ListUsers(r.Context(), caller, limit, token)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.UsersResponse{
		Users:         page.Items,
		ContinueToken: page.ContinueToken,
	})
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := identify(w, r, h.store, h.cfg)
	if !ok {
		return
	}

	var req models.CreateUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	u, err := h.store.CreateUser(r.Context(), caller, leaderboard.NewUser{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Admin:    req.Admin,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.UserResponse{User: u})
}

// DeleteUser handles DELETE /users
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := identify(w, r, h.store, h.cfg)
	if !ok {
		return
	}

	var req models.DeleteUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.store.DeleteUser(r.Context(), caller, req.Username, req.Email); err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "user deleted"})
}
