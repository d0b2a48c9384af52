// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"

	"github.com/danielhkuo/scoreboard/cliparse"
	"github.com/danielhkuo/scoreboard/leaderboard"
	"github.com/danielhkuo/scoreboard/middleware"
	"github.com/danielhkuo/scoreboard/models"
)

type SuiteHandler struct {
	store *leaderboard.Store
	cfg   cliparse.Config
}

func NewSuiteHandler(store *leaderboard.Store, cfg cliparse.Config) *SuiteHandler {
	return &SuiteHandler{store: store, cfg: cfg}
}

// ListSuites handles GET /suites
func (h *SuiteHandler) ListSuites(w http.ResponseWriter, r *http.Request) {
	limit, token, err := pageParams(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	page, err := h.store.ListSuites(r.Context(), limit, token)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuitesResponse{
		Suites:        page.Items,
		ContinueToken: page.ContinueToken,
	})
}

// CountSuites handles GET /suites/count
func (h *SuiteHandler) CountSuites(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.CountSuites(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.CountResponse{Count: n})
}

// CreateSuite handles POST /suites
func (h *SuiteHandler) CreateSuite(w http.ResponseWriter, r *http.Request) {
	caller, ok := identify(w, r, h.store, h.cfg)
	if !ok {
		return
	}

	var req models.CreateSuiteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	su, err := h.store.CreateSuite(r.Context(), caller, req.Name, req.RankAlgorithm)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SuiteResponse{
		Suite: models.SuiteWithTestCases{Suite: su, TestCases: []models.TestCase{}},
	})
}

// GetSuite handles GET /suites/{id}
func (h *SuiteHandler) GetSuite(w http.ResponseWriter, r *http.Request) {
	suiteID, err := middleware.PathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	su, err := h.store.GetSuite(r.Context(), suiteID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuiteResponse{Suite: su})
}

// ListTestCases handles GET /suites/{id}/test-cases
func (h *SuiteHandler) ListTestCases(w http.ResponseWriter, r *http.Request) {
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

	page, err := h.store.ListSuiteTestCases(r.Context(), suiteID, limit, token)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuiteTestCasesResponse{
		TestCases:     page.Items,
		ContinueToken: page.ContinueToken,
	})
}

// AddTestCases handles POST /suites/{id}/test-cases
func (h *SuiteHandler) AddTestCases(w http.ResponseWriter, r *http.Request) {
	h.changeTestCases(w, r, h.store.AddTestCasesToSuite)
}

// RemoveTestCases handles DELETE /suites/{id}/test-cases
func (h *SuiteHandler) RemoveTestCases(w http.ResponseWriter, r *http.Request) {
	h.changeTestCases(w, r, h.store.RemoveTestCasesFromSuite)
}

func (h *SuiteHandler) changeTestCases(w http.ResponseWriter, r *http.Request,
	change func(context.Context, leaderboard.Caller, int64, []models.Ref) (models.SuiteWithTestCases, error)) {
	caller, ok := identify(w, r, h.store, h.cfg)
	if !ok {
		return
	}
	suiteID, err := middleware.PathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	var req models.SuiteTestCasesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	su, err := change(r.Context(), caller, suiteID, req.TestCases)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuiteResponse{Suite: su})
}

// ListUsers handles GET /suites/{id}/users
func (h *SuiteHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	suiteID, err := middleware.PathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	users, err := h.store.ListSuiteUsers(r.Context(), suiteID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuiteUsersResponse{Users: users})
}

// AddUsers handles POST /suites/{id}/users
func (h *SuiteHandler) AddUsers(w http.ResponseWriter, r *http.Request) {
	h.changeUsers(w, r, h.store.AddUsersToSuite)
}

// RemoveUsers handles DELETE /suites/{id}/users
func (h *SuiteHandler) RemoveUsers(w http.ResponseWriter, r *http.Request) {
	h.changeUsers(w, r, h.store.RemoveUsersFromSuite)
}

func (h *SuiteHandler) changeUsers(w http.ResponseWriter, r *http.Request,
	change func(context.Context, leaderboard.Caller, int64, []string) ([]models.User, error)) {
	caller, ok := identify(w, r, h.store, h.cfg)
	if !ok {
		return
	}
	suiteID, err := middleware.PathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	var req models.SuiteUsersRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	users, err := change(r.Context(), caller, suiteID, req.Users)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuiteUsersResponse{Users: users})
}
