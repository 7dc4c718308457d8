package handler

import (
	"log/slog"
	"net/http"

	"github.com/burgasvv/parking-service/internal/apperr"
	"github.com/burgasvv/parking-service/internal/handler/dto"
	"github.com/burgasvv/parking-service/internal/service"
)

// IdentityHandler handles HTTP requests for identity operations.
type IdentityHandler struct {
	svc    *service.IdentityService
	logger *slog.Logger
}

// NewIdentityHandler creates a new IdentityHandler.
func NewIdentityHandler(svc *service.IdentityService, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/identities/create.
func (h *IdentityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.IdentityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	full, err := h.svc.Create(r.Context(), req.Draft())
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("identity_created", "identity_id", full.ID)
	writeJSON(w, http.StatusCreated, full)
}

// FindAll handles GET /api/v1/identities.
func (h *IdentityHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	identities, err := h.svc.FindAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, identities)
}

// FindByID handles GET /api/v1/identities/by-id?identityId=….
func (h *IdentityHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "identityId")
	if err != nil {
		writeError(w, err)
		return
	}

	full, err := h.svc.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, full)
}

// Update handles PUT /api/v1/identities/update. The target ID travels
// in the body.
func (h *IdentityHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.IdentityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ID == nil {
		writeError(w, apperr.Validation("identity id is missing"))
		return
	}

	short, err := h.svc.Update(r.Context(), *req.ID, req.Draft())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, short)
}

// Delete handles DELETE /api/v1/identities/delete?identityId=….
func (h *IdentityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "identityId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("identity_deleted", "identity_id", id)
	w.WriteHeader(http.StatusOK)
}

// ChangePassword handles PUT /api/v1/identities/change-password.
func (h *IdentityHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.IdentityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ID == nil {
		writeError(w, apperr.Validation("identity id is missing"))
		return
	}
	var password string
	if req.Password != nil {
		password = *req.Password
	}

	if err := h.svc.ChangePassword(r.Context(), *req.ID, password); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ChangeStatus handles PUT /api/v1/identities/change-status.
func (h *IdentityHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.IdentityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ID == nil {
		writeError(w, apperr.Validation("identity id is missing"))
		return
	}
	if req.Enabled == nil {
		writeError(w, apperr.Validation("identity enabled flag is missing"))
		return
	}

	if err := h.svc.ChangeStatus(r.Context(), *req.ID, *req.Enabled); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("identity_status_changed", "identity_id", *req.ID, "enabled", *req.Enabled)
	w.WriteHeader(http.StatusOK)
}
