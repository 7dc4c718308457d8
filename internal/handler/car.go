package handler

import (
	"log/slog"
	"net/http"

	"github.com/burgasvv/parking-service/internal/apperr"
	"github.com/burgasvv/parking-service/internal/handler/dto"
	"github.com/burgasvv/parking-service/internal/service"
)

// CarHandler handles HTTP requests for car operations.
type CarHandler struct {
	svc    *service.CarService
	logger *slog.Logger
}

// NewCarHandler creates a new CarHandler.
func NewCarHandler(svc *service.CarService, logger *slog.Logger) *CarHandler {
	return &CarHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/cars/create.
func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CarRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	full, err := h.svc.Create(r.Context(), req.Draft())
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("car_created", "car_id", full.ID, "identity_id", full.Identity.ID)
	writeJSON(w, http.StatusCreated, full)
}

// FindAll handles GET /api/v1/cars.
func (h *CarHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	cars, err := h.svc.FindAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

// FindByIdentity handles GET /api/v1/cars/by-identity?identityId=….
func (h *CarHandler) FindByIdentity(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "identityId")
	if err != nil {
		writeError(w, err)
		return
	}

	cars, err := h.svc.FindByIdentity(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

// FindByID handles GET /api/v1/cars/by-id?carId=….
func (h *CarHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "carId")
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

// Update handles PUT /api/v1/cars/update. The target ID travels in the body.
func (h *CarHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.CarRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ID == nil {
		writeError(w, apperr.Validation("car id is missing"))
		return
	}

	short, err := h.svc.Update(r.Context(), *req.ID, req.Draft())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, short)
}

// Delete handles DELETE /api/v1/cars/delete?carId=….
func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "carId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("car_deleted", "car_id", id)
	w.WriteHeader(http.StatusOK)
}
