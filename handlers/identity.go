// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/scoreboard/auth"
	"github.com/danielhkuo/scoreboard/cliparse"
	"github.com/danielhkuo/scoreboard/leaderboard"
	"github.com/danielhkuo/scoreboard/middleware"
)

// identify resolves the caller from the identity headers. Requests
// without them are anonymous. On failure a response has been written and
// ok is false.
func identify(w http.ResponseWriter, r *http.Request, store *leaderboard.Store, cfg cliparse.Config) (caller leaderboard.Caller, ok bool) {
	username := r.Header.Get(middleware.HeaderUsername)
	key := r.Header.Get(middleware.HeaderIdentityKey)
	if username == "" && key == "" {
		return leaderboard.Caller{}, true
	}

	if err := auth.ValidateIdentityKey(username, key, cfg.IdentitySalt); err != nil {
		slog.Warn("invalid identity key", "username", username, "ip", middleware.GetClientIP(r))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid identity key")
		return leaderboard.Caller{}, false
	}

	u, err := store.GetUser(r.Context(), username)
	if leaderboard.KindOf(err) == leaderboard.KindNotFound {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unknown user")
		return leaderboard.Caller{}, false
	}
	if err != nil {
		middleware.WriteError(w, err)
		return leaderboard.Caller{}, false
	}

	return leaderboard.Caller{Username: u.Username, Admin: u.Admin}, true
}

// pageParams reads the limit and continueToken query parameters.
func pageParams(r *http.Request) (limit int, token string, err error) {
	limit, err = middleware.QueryInt(r, "limit")
	return limit, r.URL.Query().Get("continueToken"), err
}

// numericScore decodes a JSON number. ok is false for anything else,
// null and absent values included.
func numericScore(raw json.RawMessage) (value *float64, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return &v, true
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
