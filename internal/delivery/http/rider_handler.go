package http

import (
	"context"
	"net/http"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/usecase/rider"
	"github.com/google/uuid"
)

// RiderService определяет интерфейс сервиса пассажиров
type RiderService interface {
	List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Rider, error)
	Get(ctx context.Context, scope, id uuid.UUID) (*domain.Rider, error)
	Create(ctx context.Context, scope uuid.UUID, req *rider.CreateRiderRequest) (*domain.Rider, error)
	Update(ctx context.Context, scope, id uuid.UUID, req *rider.UpdateRiderRequest) (*domain.Rider, error)
	Deactivate(ctx context.Context, scope, id uuid.UUID) error
	AddAddress(ctx context.Context, scope, riderID uuid.UUID, in *rider.AddressInput) (*domain.Address, error)
	UpdateAddress(ctx context.Context, scope, riderID, addressID uuid.UUID, in *rider.AddressInput) (*domain.Address, error)
	DeleteAddress(ctx context.Context, scope, riderID, addressID uuid.UUID) error
	SetPrimaryAddress(ctx context.Context, scope, riderID, addressID uuid.UUID) (*domain.Rider, error)
}

// RiderHandler обрабатывает запросы пассажиров и их адресов
type RiderHandler struct {
	riderService RiderService
	logger       logger.Logger
}

// NewRiderHandler создает новый handler
func NewRiderHandler(riderService RiderService, logger logger.Logger) *RiderHandler {
	return &RiderHandler{
		riderService: riderService,
		logger:       logger,
	}
}

// ListRiders возвращает пассажиров с адресами
// GET /api/v1/riders?active=
func (h *RiderHandler) ListRiders(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}

	riders, err := h.riderService.List(r.Context(), scope, activeOnly(r))
	if err != nil {
		handleError(w, r, h.logger, err, "list riders")
		return
	}

	respondSuccess(w, http.StatusOK, riders)
}

// GetRider возвращает пассажира
// GET /api/v1/riders/{id}
func (h *RiderHandler) GetRider(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	rd, err := h.riderService.Get(r.Context(), scope, id)
	if err != nil {
		handleError(w, r, h.logger, err, "get rider")
		return
	}

	respondSuccess(w, http.StatusOK, rd)
}

// CreateRider создает пассажира с адресами
// POST /api/v1/riders
func (h *RiderHandler) CreateRider(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}

	var req rider.CreateRiderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rd, err := h.riderService.Create(r.Context(), scope, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "create rider")
		return
	}

	respondSuccess(w, http.StatusCreated, rd)
}

// UpdateRider обновляет пассажира
// PUT /api/v1/riders/{id}
func (h *RiderHandler) UpdateRider(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req rider.UpdateRiderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rd, err := h.riderService.Update(r.Context(), scope, id, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "update rider")
		return
	}

	respondSuccess(w, http.StatusOK, rd)
}

// DeactivateRider выключает пассажира
// DELETE /api/v1/riders/{id}
func (h *RiderHandler) DeactivateRider(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.riderService.Deactivate(r.Context(), scope, id); err != nil {
		handleError(w, r, h.logger, err, "deactivate rider")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddAddress добавляет адрес
// POST /api/v1/riders/{id}/addresses
func (h *RiderHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	riderID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req rider.AddressInput
	if !decodeAndValidate(w, r, &req) {
		return
	}

	addr, err := h.riderService.AddAddress(r.Context(), scope, riderID, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "add address")
		return
	}

	respondSuccess(w, http.StatusCreated, addr)
}

// UpdateAddress обновляет адрес
// PUT /api/v1/riders/{id}/addresses/{addressID}
func (h *RiderHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	riderID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	addressID, ok := uuidParam(w, r, "addressID")
	if !ok {
		return
	}

	var req rider.AddressInput
	if !decodeAndValidate(w, r, &req) {
		return
	}

	addr, err := h.riderService.UpdateAddress(r.Context(), scope, riderID, addressID, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "update address")
		return
	}

	respondSuccess(w, http.StatusOK, addr)
}

// DeleteAddress удаляет адрес
// DELETE /api/v1/riders/{id}/addresses/{addressID}
func (h *RiderHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	riderID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	addressID, ok := uuidParam(w, r, "addressID")
	if !ok {
		return
	}

	if err := h.riderService.DeleteAddress(r.Context(), scope, riderID, addressID); err != nil {
		handleError(w, r, h.logger, err, "delete address")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetPrimaryAddress делает адрес основным
// POST /api/v1/riders/{id}/addresses/{addressID}/primary
func (h *RiderHandler) SetPrimaryAddress(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	riderID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	addressID, ok := uuidParam(w, r, "addressID")
	if !ok {
		return
	}

	rd, err := h.riderService.SetPrimaryAddress(r.Context(), scope, riderID, addressID)
	if err != nil {
		handleError(w, r, h.logger, err, "set primary address")
		return
	}

	respondSuccess(w, http.StatusOK, rd)
}
