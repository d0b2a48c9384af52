// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/scoreboard/auth"
	"github.com/danielhkuo/scoreboard/cliparse"
	"github.com/danielhkuo/scoreboard/leaderboard"
	"github.com/danielhkuo/scoreboard/middleware"
	"github.com/danielhkuo/scoreboard/models"
)

type AuthHandler struct {
	store *leaderboard.Store
	cfg   cliparse.Config
}

func NewAuthHandler(store *leaderboard.Store, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{store: store, cfg: cfg}
}

// Login handles POST /auth
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	login := req.Username
	if login == "" {
		login = req.Email
	}

	u, err := h.store.Authenticate(r.Context(), login, req.Password)
	if leaderboard.KindOf(err) == leaderboard.KindForbidden {
		slog.Warn("login failed", "login", login, "ip", middleware.GetClientIP(r))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("user logged in", "username", u.Username)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Username:    u.Username,
		IdentityKey: auth.GenerateIdentityKey(u.Username, h.cfg.IdentitySalt),
	})
}
