package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/safestudy/safestudy-go/internal/middleware"
	"github.com/safestudy/safestudy-go/internal/model"
	"github.com/safestudy/safestudy-go/internal/service"
)

type vaultService interface {
	AddEntry(ctx context.Context, userID int64, req model.CreateEntryRequest) (model.EntryResponse, error)
	ListEntries(ctx context.Context, userID int64, query string) ([]model.EntryResponse, error)
	RevealSecret(ctx context.Context, userID int64, entryID string, req model.RevealRequest) (model.RevealResponse, error)
	DeleteEntry(ctx context.Context, userID int64, entryID string) error
	Audit(ctx context.Context, userID int64) ([]model.EntryResponse, error)
	Summary(ctx context.Context, userID int64) (model.VaultSummary, error)
}

// VaultHandler handles HTTP requests for vault entry operations.
type VaultHandler struct {
	service vaultService
}

// NewVaultHandler creates a new VaultHandler.
func NewVaultHandler(svc vaultService) *VaultHandler {
	return &VaultHandler{service: svc}
}

// HandleCreate handles POST /api/v1/vault requests.
func (h *VaultHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.AddEntry(r.Context(), userID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleList handles GET /api/v1/vault requests.
func (h *VaultHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	entries, err := h.service.ListEntries(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// HandleReveal handles POST /api/v1/vault/{id}/reveal requests.
func (h *VaultHandler) HandleReveal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.RevealRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.RevealSecret(r.Context(), userID, chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /api/v1/vault/{id} requests.
func (h *VaultHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteEntry(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleAudit handles POST /api/v1/vault/audit requests.
func (h *VaultHandler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	entries, err := h.service.Audit(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// HandleSummary handles GET /api/v1/vault/summary requests.
func (h *VaultHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *VaultHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrVerificationFailed):
		writeJSON(w, http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrEntryNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	default:
		internalError(w, r, err)
	}
}

func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
	}
	return userID, ok
}
