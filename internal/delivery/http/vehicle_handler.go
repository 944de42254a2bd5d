package http

import (
	"context"
	"net/http"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/usecase/vehicle"
	"github.com/google/uuid"
)

// VehicleService определяет интерфейс для сервиса машин
type VehicleService interface {
	CreateVehicle(ctx context.Context, scope uuid.UUID, req *vehicle.CreateVehicleRequest) (*domain.Vehicle, error)
	GetVehicleByID(ctx context.Context, scope, id uuid.UUID) (*domain.Vehicle, error)
	ListVehicles(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, scope, id uuid.UUID, req *vehicle.UpdateVehicleRequest) (*domain.Vehicle, error)
	DeactivateVehicle(ctx context.Context, scope, id uuid.UUID) error
	RecordOilChange(ctx context.Context, scope, id uuid.UUID, req *vehicle.OilChangeRequest) (*domain.Vehicle, error)
	OilStatuses(ctx context.Context, scope uuid.UUID) ([]domain.VehicleOilSummary, error)
}

// VehicleHandler обрабатывает запросы связанные с машинами
type VehicleHandler struct {
	vehicleService VehicleService
	logger         logger.Logger
}

// NewVehicleHandler создает новый handler
func NewVehicleHandler(vehicleService VehicleService, logger logger.Logger) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		logger:         logger,
	}
}

// CreateVehicle создает новую машину
// POST /api/v1/vehicles
func (h *VehicleHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}

	var req vehicle.CreateVehicleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	v, err := h.vehicleService.CreateVehicle(r.Context(), scope, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "create vehicle")
		return
	}

	respondSuccess(w, http.StatusCreated, v)
}

// ListVehicles возвращает машины кода
// GET /api/v1/vehicles?active=
func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}

	vehicles, err := h.vehicleService.ListVehicles(r.Context(), scope, activeOnly(r))
	if err != nil {
		handleError(w, r, h.logger, err, "list vehicles")
		return
	}

	respondSuccess(w, http.StatusOK, vehicles)
}

// GetVehicleByID возвращает машину по ID
// GET /api/v1/vehicles/{id}
func (h *VehicleHandler) GetVehicleByID(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	v, err := h.vehicleService.GetVehicleByID(r.Context(), scope, id)
	if err != nil {
		handleError(w, r, h.logger, err, "get vehicle")
		return
	}

	respondSuccess(w, http.StatusOK, v)
}

// UpdateVehicle обновляет машину
// PUT /api/v1/vehicles/{id}
func (h *VehicleHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req vehicle.UpdateVehicleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	v, err := h.vehicleService.UpdateVehicle(r.Context(), scope, id, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "update vehicle")
		return
	}

	respondSuccess(w, http.StatusOK, v)
}

// DeactivateVehicle выключает машину
// DELETE /api/v1/vehicles/{id}
func (h *VehicleHandler) DeactivateVehicle(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.vehicleService.DeactivateVehicle(r.Context(), scope, id); err != nil {
		handleError(w, r, h.logger, err, "deactivate vehicle")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecordOilChange фиксирует замену масла
// POST /api/v1/vehicles/{id}/oil-change
func (h *VehicleHandler) RecordOilChange(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req vehicle.OilChangeRequest
	if r.ContentLength != 0 && !decodeAndValidate(w, r, &req) {
		return
	}

	v, err := h.vehicleService.RecordOilChange(r.Context(), scope, id, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "record oil change")
		return
	}

	respondSuccess(w, http.StatusOK, v)
}

// OilStatuses возвращает состояние замены масла по всем машинам
// GET /api/v1/vehicles/oil-status
func (h *VehicleHandler) OilStatuses(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}

	statuses, err := h.vehicleService.OilStatuses(r.Context(), scope)
	if err != nil {
		handleError(w, r, h.logger, err, "get oil statuses")
		return
	}

	respondSuccess(w, http.StatusOK, statuses)
}
