package handler

import (
	"log/slog"
	"net/http"

	"github.com/burgasvv/parking-service/internal/apperr"
	"github.com/burgasvv/parking-service/internal/handler/dto"
	"github.com/burgasvv/parking-service/internal/model"
	"github.com/burgasvv/parking-service/internal/service"
)

// ParkingHandler handles HTTP requests for parking operations.
type ParkingHandler struct {
	svc    *service.ParkingService
	logger *slog.Logger
}

// NewParkingHandler creates a new ParkingHandler.
func NewParkingHandler(svc *service.ParkingService, logger *slog.Logger) *ParkingHandler {
	return &ParkingHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/parking/create.
func (h *ParkingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ParkingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	full, err := h.svc.Create(r.Context(), req.Draft())
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("parking_created", "parking_id", full.ID)
	writeJSON(w, http.StatusCreated, full)
}

// FindAll handles GET /api/v1/parking.
func (h *ParkingHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	parkings, err := h.svc.FindAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parkings)
}

// FindByID handles GET /api/v1/parking/by-id?parkingId=….
func (h *ParkingHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "parkingId")
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

// Update handles PUT /api/v1/parking/update. The target ID travels in
// the body.
func (h *ParkingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.ParkingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ID == nil {
		writeError(w, apperr.Validation("parking id is missing"))
		return
	}

	short, err := h.svc.Update(r.Context(), *req.ID, req.Draft())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, short)
}

// Delete handles DELETE /api/v1/parking/delete?parkingId=….
func (h *ParkingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "parkingId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("parking_deleted", "parking_id", id)
	w.WriteHeader(http.StatusOK)
}

// AddCars handles POST /api/v1/parking/add-cars. The body is a batch
// of parking/car pairs, assigned atomically.
func (h *ParkingHandler) AddCars(w http.ResponseWriter, r *http.Request) {
	pairs, err := decodePairs(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.AddCars(r.Context(), pairs); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("parking_cars_added", "pairs", len(pairs))
	w.WriteHeader(http.StatusOK)
}

// RemoveCars handles DELETE /api/v1/parking/remove-cars.
func (h *ParkingHandler) RemoveCars(w http.ResponseWriter, r *http.Request) {
	pairs, err := decodePairs(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.RemoveCars(r.Context(), pairs); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("parking_cars_removed", "pairs", len(pairs))
	w.WriteHeader(http.StatusOK)
}

func decodePairs(r *http.Request) ([]model.ParkingCarPair, error) {
	var reqs []dto.ParkingCarRequest
	if err := decodeBody(r, &reqs); err != nil {
		return nil, err
	}
	pairs, ok := dto.Pairs(reqs)
	if !ok {
		return nil, apperr.Validation("every pair must carry parking_id and car_id")
	}
	return pairs, nil
}
