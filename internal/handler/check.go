package handler

import (
	"errors"
	"net/http"

	"github.com/safestudy/safestudy-go/internal/model"
	"github.com/safestudy/safestudy-go/internal/service"
)

// CheckHandler serves password analysis and breach checks.
type CheckHandler struct {
	service *service.SecurityService
}

// NewCheckHandler creates a new CheckHandler.
func NewCheckHandler(svc *service.SecurityService) *CheckHandler {
	return &CheckHandler{service: svc}
}

// HandleAnalyze handles POST /api/v1/analyze. It never leaves the process.
func (h *CheckHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req model.CheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Analyze(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleCheck handles POST /api/v1/check. A failed breach lookup still
// returns 200 with an undetermined breach status.
func (h *CheckHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var req model.CheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Check(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CheckHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrInvalidInput) {
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	internalError(w, r, err)
}
