package http

import (
	"context"
	"net/http"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/usecase/route"
	"github.com/google/uuid"
)

// RouteService определяет интерфейс сервиса маршрутов
type RouteService interface {
	List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Route, error)
	Get(ctx context.Context, scope, id uuid.UUID) (*domain.Route, error)
	Create(ctx context.Context, scope uuid.UUID, req *route.CreateRouteRequest) (*domain.Route, error)
	Update(ctx context.Context, scope, id uuid.UUID, req *route.UpdateRouteRequest) (*domain.Route, error)
	Delete(ctx context.Context, scope, id uuid.UUID) error
	AddDestination(ctx context.Context, scope, routeID uuid.UUID, in *route.DestinationInput) (*domain.Destination, error)
	UpdateDestination(ctx context.Context, scope, routeID, destID uuid.UUID, in *route.DestinationInput) (*domain.Destination, error)
	DeleteDestination(ctx context.Context, scope, routeID, destID uuid.UUID) error
	ReorderDestinations(ctx context.Context, scope, routeID uuid.UUID, req *route.ReorderRequest) (*domain.Route, error)
}

// RouteHandler обрабатывает запросы маршрутов и точек
type RouteHandler struct {
	routeService RouteService
	logger       logger.Logger
}

// NewRouteHandler создает новый handler
func NewRouteHandler(routeService RouteService, logger logger.Logger) *RouteHandler {
	return &RouteHandler{
		routeService: routeService,
		logger:       logger,
	}
}

// ListRoutes возвращает маршруты с точками
// GET /api/v1/routes?active=
func (h *RouteHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}

	routes, err := h.routeService.List(r.Context(), scope, activeOnly(r))
	if err != nil {
		handleError(w, r, h.logger, err, "list routes")
		return
	}

	respondSuccess(w, http.StatusOK, routes)
}

// GetRoute возвращает маршрут
// GET /api/v1/routes/{id}
func (h *RouteHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	rt, err := h.routeService.Get(r.Context(), scope, id)
	if err != nil {
		handleError(w, r, h.logger, err, "get route")
		return
	}

	respondSuccess(w, http.StatusOK, rt)
}

// CreateRoute создает маршрут
// POST /api/v1/routes
func (h *RouteHandler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}

	var req route.CreateRouteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rt, err := h.routeService.Create(r.Context(), scope, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "create route")
		return
	}

	respondSuccess(w, http.StatusCreated, rt)
}

// UpdateRoute обновляет маршрут
// PUT /api/v1/routes/{id}
func (h *RouteHandler) UpdateRoute(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req route.UpdateRouteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rt, err := h.routeService.Update(r.Context(), scope, id, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "update route")
		return
	}

	respondSuccess(w, http.StatusOK, rt)
}

// DeleteRoute выключает маршрут
// DELETE /api/v1/routes/{id}
func (h *RouteHandler) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.routeService.Delete(r.Context(), scope, id); err != nil {
		handleError(w, r, h.logger, err, "delete route")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddDestination добавляет точку в маршрут
// POST /api/v1/routes/{id}/destinations
func (h *RouteHandler) AddDestination(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	routeID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req route.DestinationInput
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dest, err := h.routeService.AddDestination(r.Context(), scope, routeID, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "add destination")
		return
	}

	respondSuccess(w, http.StatusCreated, dest)
}

// UpdateDestination обновляет точку
// PUT /api/v1/routes/{id}/destinations/{destID}
func (h *RouteHandler) UpdateDestination(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	routeID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	destID, ok := uuidParam(w, r, "destID")
	if !ok {
		return
	}

	var req route.DestinationInput
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dest, err := h.routeService.UpdateDestination(r.Context(), scope, routeID, destID, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "update destination")
		return
	}

	respondSuccess(w, http.StatusOK, dest)
}

// DeleteDestination удаляет точку
// DELETE /api/v1/routes/{id}/destinations/{destID}
func (h *RouteHandler) DeleteDestination(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	routeID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	destID, ok := uuidParam(w, r, "destID")
	if !ok {
		return
	}

	if err := h.routeService.DeleteDestination(r.Context(), scope, routeID, destID); err != nil {
		handleError(w, r, h.logger, err, "delete destination")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReorderDestinations задает новый порядок точек
// PUT /api/v1/routes/{id}/destinations/order
func (h *RouteHandler) ReorderDestinations(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	routeID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req route.ReorderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rt, err := h.routeService.ReorderDestinations(r.Context(), scope, routeID, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "reorder destinations")
		return
	}

	respondSuccess(w, http.StatusOK, rt)
}
