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

type SessionHandler struct {
	store *leaderboard.Store
	cfg   cliparse.Config
}

func NewSessionHandler(store *leaderboard.Store, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{store: store, cfg: cfg}
}

// ListSessions handles GET /suites/{id}/sessions
//
// Query parameters: orderBy (totalScore|date), limit, continueToken.
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	suiteID, err := middleware.PathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	limit, token, err := pageParams(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	page, err := h.store.ListSessions(r.Context(), suiteID, r.URL.Query().Get("orderBy"), limit, token)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionsResponse{
		Sessions:      page.Items,
		ContinueToken: page.ContinueToken,
	})
}

// CreateSession handles POST /suites/{id}/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	caller, ok := identify(w, r, h.store, h.cfg)
	if !ok {
		return
	}
	suiteID, err := middleware.PathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	in := leaderboard.NewSession{
		SuiteID:  suiteID,
		Date:     req.Date,
		CommitID: req.CommitID,
		Name:     req.Name,
	}
	if req.Scores != nil {
		// Non-numeric values stay nil and are rejected by the store
		// together with the other per-score checks.
		in.Scores = make([]leaderboard.NewScore, len(req.Scores))
		for i, sc := range req.Scores {
			value, _ := numericScore(sc.Score)
			in.Scores[i] = leaderboard.NewScore{TestCaseID: sc.TestCaseID, Score: value}
		}
	}

	se, err := h.store.CreateSession(r.Context(), caller, in)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SessionResponse{Session: se})
}

// GetSession handles GET /suites/{id}/sessions/{sessionid}
//
// The response carries the session's rank and the suite's score range.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	suiteID, err := middleware.PathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	sessionID, err := middleware.PathID(r, "sessionid")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	rank, err := h.store.SessionRank(r.Context(), suiteID, sessionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, rank)
}

// LatestSessions handles GET /sessions/latest
func (h *SessionHandler) LatestSessions(w http.ResponseWriter, r *http.Request) {
	limit, err := middleware.QueryInt(r, "limit")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	sessions, err := h.store.LatestSessions(r.Context(), limit)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionsResponse{Sessions: sessions})
}

// DeleteSession handles DELETE /sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	caller, ok := identify(w, r, h.store, h.cfg)
	if !ok {
		return
	}
	sessionID, err := middleware.PathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := h.store.DeleteSession(r.Context(), caller, sessionID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "session deleted"})
}

// SetScore handles PUT /suites/{id}/sessions/{sessionid}/scores/{testcaseid}
//
// A null score is stored as such; any other non-number is rejected.
func (h *SessionHandler) SetScore(w http.ResponseWriter, r *http.Request) {
	caller, sessionID, testCaseID, ok := h.scoreTarget(w, r)
	if !ok {
		return
	}

	var req models.SetScoreRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	value, numeric := numericScore(req.Score)
	if !numeric && !isNull(req.Score) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "score must be a number or null")
		return
	}

	se, err := h.store.SetScore(r.Context(), caller, sessionID, testCaseID, value)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{Session: se})
}

// DeleteScore handles DELETE /suites/{id}/sessions/{sessionid}/scores/{testcaseid}
func (h *SessionHandler) DeleteScore(w http.ResponseWriter, r *http.Request) {
	caller, sessionID, testCaseID, ok := h.scoreTarget(w, r)
	if !ok {
		return
	}

	se, err := h.store.DeleteScore(r.Context(), caller, sessionID, testCaseID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{Session: se})
}

// scoreTarget resolves the caller and the session and test case of a
// score route. The session must belong to the suite in the path.
func (h *SessionHandler) scoreTarget(w http.ResponseWriter, r *http.Request) (caller leaderboard.Caller, sessionID, testCaseID int64, ok bool) {
	caller, ok = identify(w, r, h.store, h.cfg)
	if !ok {
		return
	}
	ok = false

	suiteID, err := middleware.PathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if sessionID, err = middleware.PathID(r, "sessionid"); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if testCaseID, err = middleware.PathID(r, "testcaseid"); err != nil {
		middleware.WriteError(w, err)
		return
	}

	se, err := h.store.GetSession(r.Context(), sessionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if se.SuiteID != suiteID {
		middleware.ErrorResponse(w, http.StatusNotFound, "session not found in suite")
		return
	}
	return caller, sessionID, testCaseID, true
}
