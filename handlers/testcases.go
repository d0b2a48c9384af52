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

type TestCaseHandler struct {
	store *leaderboard.Store
	cfg   cliparse.Config
}

func NewTestCaseHandler(store *leaderboard.Store, cfg cliparse.Config) *TestCaseHandler {
	return &TestCaseHandler{store: store, cfg: cfg}
}

// ListTestCases handles GET /test-cases
func (h *TestCaseHandler) ListTestCases(w http.ResponseWriter, r *http.Request) {
	limit, token, err := pageParams(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	page, err := h.store.ListTestCases(r.Context(), limit, token)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.TestCasesResponse{
		TestCases:     page.Items,
		ContinueToken: page.ContinueToken,
	})
}

// CountTestCases handles GET /test-cases/count
func (h *TestCaseHandler) CountTestCases(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.CountTestCases(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.CountResponse{Count: n})
}

// CreateTestCase handles POST /test-cases
func (h *TestCaseHandler) CreateTestCase(w http.ResponseWriter, r *http.Request) {
	caller, ok := identify(w, r, h.store, h.cfg)
	if !ok {
		return
	}

	var req models.CreateTestCaseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	tc, err := h.store.CreateTestCase(r.Context(), caller, leaderboard.NewTestCase{
		Name:       req.Name,
		RunCommand: req.RunCommand,
		TestData:   req.TestData,
		Weight:     req.Weight,
		Suites:     req.Suites,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.TestCaseResponse{TestCase: tc})
}
