package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"prepwise/internal/model"
	"prepwise/internal/score"
	"prepwise/internal/service"
	"prepwise/internal/transport/rest/middleware"
)

// InsightHandler handles the performance insight endpoints
type InsightHandler struct {
	insightSvc *service.InsightService
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(insightSvc *service.InsightService) *InsightHandler {
	return &InsightHandler{insightSvc: insightSvc}
}

// Diagnostic handles GET /v1/insights/diagnostic?product={productType}
func (h *InsightHandler) Diagnostic(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	product := r.URL.Query().Get("product")
	if product == "" {
		writeError(w, http.StatusBadRequest, "missing product query param")
		return
	}

	result, err := h.insightSvc.DiagnosticResults(r.Context(), userID, product)
	if err != nil {
		if errors.Is(err, service.ErrUnknownProduct) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rankedView(r, result))
}

// PracticeTest handles GET /v1/insights/practice/{testNumber}?product={productType}
func (h *InsightHandler) PracticeTest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	product := r.URL.Query().Get("product")
	if product == "" {
		writeError(w, http.StatusBadRequest, "missing product query param")
		return
	}

	testNumber, err := strconv.Atoi(mux.Vars(r)["testNumber"])
	if err != nil || testNumber < 1 || testNumber > model.PracticeTestCount {
		writeError(w, http.StatusBadRequest, "test number must be between 1 and 5")
		return
	}

	result, err := h.insightSvc.PracticeTestResults(r.Context(), userID, product, testNumber)
	if err != nil {
		if errors.Is(err, service.ErrUnknownProduct) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rankedView(r, result))
}

// Drills handles GET /v1/insights/drills?product={productType}
func (h *InsightHandler) Drills(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	product := r.URL.Query().Get("product")
	if product == "" {
		writeError(w, http.StatusBadRequest, "missing product query param")
		return
	}

	result, err := h.insightSvc.DrillResults(r.Context(), userID, product)
	if err != nil {
		if errors.Is(err, service.ErrUnknownProduct) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rankedView(r, result))
}

// rankedView applies the optional top/bottom sub-skill query params. The
// cached result is never mutated; a trimmed copy is returned instead.
func rankedView(r *http.Request, result *model.AggregateResult) *model.AggregateResult {
	by := score.RankByScore
	if r.URL.Query().Get("rankBy") == string(score.RankByAccuracy) {
		by = score.RankByAccuracy
	}

	if n, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && n > 0 {
		view := *result
		view.SubSkillBreakdown = score.TopSubSkills(result.SubSkillBreakdown, n, by)
		return &view
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("bottom")); err == nil && n > 0 {
		view := *result
		view.SubSkillBreakdown = score.BottomSubSkills(result.SubSkillBreakdown, n, by)
		return &view
	}
	return result
}
