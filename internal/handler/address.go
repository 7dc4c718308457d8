package handler

import (
	"log/slog"
	"net/http"

	"github.com/burgasvv/parking-service/internal/apperr"
	"github.com/burgasvv/parking-service/internal/handler/dto"
	"github.com/burgasvv/parking-service/internal/service"
)

// AddressHandler handles HTTP requests for address operations.
type AddressHandler struct {
	svc    *service.AddressService
	logger *slog.Logger
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(svc *service.AddressService, logger *slog.Logger) *AddressHandler {
	return &AddressHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/addresses/create.
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.AddressRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	full, err := h.svc.Create(r.Context(), req.Draft())
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("address_created", "address_id", full.ID)
	writeJSON(w, http.StatusCreated, full)
}

// FindAll handles GET /api/v1/addresses.
func (h *AddressHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.svc.FindAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addresses)
}

// FindByID handles GET /api/v1/addresses/by-id?addressId=….
func (h *AddressHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "addressId")
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

// Update handles PUT /api/v1/addresses/update. The target ID travels
// in the body.
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.AddressRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ID == nil {
		writeError(w, apperr.Validation("address id is missing"))
		return
	}

	short, err := h.svc.Update(r.Context(), *req.ID, req.Draft())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, short)
}

// Delete handles DELETE /api/v1/addresses/delete?addressId=….
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "addressId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("address_deleted", "address_id", id)
	w.WriteHeader(http.StatusOK)
}
