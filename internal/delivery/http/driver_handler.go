package http

import (
	"context"
	"net/http"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/usecase/driver"
	"github.com/google/uuid"
)

// DriverService определяет интерфейс сервиса водителей
type DriverService interface {
	List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Driver, error)
	Get(ctx context.Context, scope, id uuid.UUID) (*domain.Driver, error)
	Create(ctx context.Context, scope uuid.UUID, req *driver.CreateDriverRequest) (*domain.Driver, error)
	Update(ctx context.Context, scope, id uuid.UUID, req *driver.UpdateDriverRequest) (*domain.Driver, error)
	Deactivate(ctx context.Context, scope, id uuid.UUID) error
	ResetPassword(ctx context.Context, scope, id uuid.UUID, req *driver.ResetPasswordRequest) error
}

// DriverHandler обрабатывает запросы справочника водителей
type DriverHandler struct {
	driverService DriverService
	logger        logger.Logger
}

// NewDriverHandler создает новый handler
func NewDriverHandler(driverService DriverService, logger logger.Logger) *DriverHandler {
	return &DriverHandler{
		driverService: driverService,
		logger:        logger,
	}
}

// ListDrivers возвращает водителей кода
// GET /api/v1/drivers?active=
func (h *DriverHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}

	drivers, err := h.driverService.List(r.Context(), scope, activeOnly(r))
	if err != nil {
		handleError(w, r, h.logger, err, "list drivers")
		return
	}

	respondSuccess(w, http.StatusOK, drivers)
}

// GetDriver возвращает водителя по ID
// GET /api/v1/drivers/{id}
func (h *DriverHandler) GetDriver(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	d, err := h.driverService.Get(r.Context(), scope, id)
	if err != nil {
		handleError(w, r, h.logger, err, "get driver")
		return
	}

	respondSuccess(w, http.StatusOK, d)
}

// CreateDriver создает водителя
// POST /api/v1/drivers
func (h *DriverHandler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}

	var req driver.CreateDriverRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	d, err := h.driverService.Create(r.Context(), scope, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "create driver")
		return
	}

	respondSuccess(w, http.StatusCreated, d)
}

// UpdateDriver обновляет водителя
// PUT /api/v1/drivers/{id}
func (h *DriverHandler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req driver.UpdateDriverRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	d, err := h.driverService.Update(r.Context(), scope, id, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "update driver")
		return
	}

	respondSuccess(w, http.StatusOK, d)
}

// DeactivateDriver выключает водителя
// DELETE /api/v1/drivers/{id}
func (h *DriverHandler) DeactivateDriver(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.driverService.Deactivate(r.Context(), scope, id); err != nil {
		handleError(w, r, h.logger, err, "deactivate driver")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResetPassword задает водителю новый пароль
// POST /api/v1/drivers/{id}/password
func (h *DriverHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req driver.ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.driverService.ResetPassword(r.Context(), scope, id, &req); err != nil {
		handleError(w, r, h.logger, err, "reset driver password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
