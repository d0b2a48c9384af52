// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/scoreboard/leaderboard"
	"github.com/danielhkuo/scoreboard/models"
)

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes a JSON error response
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// StatusForError maps a store error kind to an HTTP status.
func StatusForError(err error) int {
	switch leaderboard.KindOf(err) {
	case leaderboard.KindNotFound:
		return http.StatusNotFound
	case leaderboard.KindForbidden:
		return http.StatusForbidden
	case leaderboard.KindInvalidInput:
		return http.StatusBadRequest
	case leaderboard.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err with the status for its kind. Internal errors are
// logged and reported without detail.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusForError(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		ErrorResponse(w, status, "internal error")
		return
	}
	ErrorResponse(w, status, err.Error())
}

// ParseJSONBody parses the request body into the given struct
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// QueryInt reads an optional integer query parameter. Missing means 0.
func QueryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &leaderboard.Error{Kind: leaderboard.KindInvalidInput, Msg: name + " must be an integer"}
	}
	return n, nil
}

// PathID reads a positive integer path parameter.
func PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &leaderboard.Error{Kind: leaderboard.KindNotFound, Msg: name + " must be a positive integer id"}
	}
	return id, nil
}
