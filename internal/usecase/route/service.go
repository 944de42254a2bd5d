package route

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/repository"
	"github.com/google/uuid"
)

// DestinationInput - точка маршрута в запросе
type DestinationInput struct {
	Name         string `json:"name" validate:"required,max=200"`
	Address      string `json:"address,omitempty" validate:"max=500"`
	DisplayOrder *int   `json:"display_order,omitempty" validate:"omitempty,min=0"`
}

// CreateRouteRequest - запрос на создание маршрута
type CreateRouteRequest struct {
	Code         string             `json:"code" validate:"required,max=32"`
	Name         string             `json:"name" validate:"required,max=200"`
	Description  string             `json:"description,omitempty"`
	Destinations []DestinationInput `json:"destinations,omitempty" validate:"dive"`
}

// UpdateRouteRequest - запрос на обновление маршрута
type UpdateRouteRequest struct {
	Code        *string `json:"code,omitempty" validate:"omitempty,max=32"`
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ReorderRequest - новый порядок точек маршрута
type ReorderRequest struct {
	DestinationIDs []uuid.UUID `json:"destination_ids" validate:"required,min=1"`
}

// Service содержит бизнес-логику маршрутов
type Service struct {
	routeRepo repository.RouteRepository
	logger    logger.Logger
}

// NewService создает новый экземпляр RouteService
func NewService(routeRepo repository.RouteRepository, logger logger.Logger) *Service {
	return &Service{
		routeRepo: routeRepo,
		logger:    logger,
	}
}

// List возвращает маршруты кода с точками
func (s *Service) List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Route, error) {
	return s.routeRepo.List(ctx, scope, activeOnly)
}

// Get возвращает маршрут с точками
func (s *Service) Get(ctx context.Context, scope, id uuid.UUID) (*domain.Route, error) {
	return s.routeRepo.GetByID(ctx, scope, id)
}

// Create создает маршрут
// Точки без порядка получают порядок по позиции в запросе
func (s *Service) Create(ctx context.Context, scope uuid.UUID, req *CreateRouteRequest) (*domain.Route, error) {
	route := &domain.Route{
		ManagementCodeID: scope,
		Code:             req.Code,
		Name:             req.Name,
		Description:      req.Description,
		IsActive:         true,
	}
	if err := route.Validate(); err != nil {
		return nil, err
	}

	for i, in := range req.Destinations {
		order := i + 1
		if in.DisplayOrder != nil {
			order = *in.DisplayOrder
		}
		dest := &domain.Destination{
			Name:         strings.TrimSpace(in.Name),
			Address:      in.Address,
			DisplayOrder: order,
		}
		// ID маршрута появится при сохранении
		if dest.Name == "" || dest.DisplayOrder < 0 {
			return nil, domain.ErrInvalidDestinationData
		}
		route.Destinations = append(route.Destinations, dest)
	}
	domain.SortDestinations(route.Destinations)

	if err := s.routeRepo.Create(ctx, route); err != nil {
		if errors.Is(err, domain.ErrRouteAlreadyExists) || errors.Is(err, domain.ErrInvalidDestinationData) {
			return nil, err
		}
		s.logger.Error("Failed to create route", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create route: %w", err)
	}

	s.logger.Info("Route created", map[string]interface{}{
		"route_id":     route.ID,
		"destinations": len(route.Destinations),
	})

	return route, nil
}

// Update обновляет поля маршрута
func (s *Service) Update(ctx context.Context, scope, id uuid.UUID, req *UpdateRouteRequest) (*domain.Route, error) {
	route, err := s.routeRepo.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		route.Code = *req.Code
	}
	if req.Name != nil {
		route.Name = *req.Name
	}
	if req.Description != nil {
		route.Description = *req.Description
	}
	if req.IsActive != nil {
		route.IsActive = *req.IsActive
	}

	if err := route.Validate(); err != nil {
		return nil, err
	}

	if err := s.routeRepo.Update(ctx, route); err != nil {
		return nil, err
	}

	return route, nil
}

// Delete выключает маршрут
func (s *Service) Delete(ctx context.Context, scope, id uuid.UUID) error {
	if err := s.routeRepo.Delete(ctx, scope, id); err != nil {
		return err
	}

	s.logger.Info("Route deleted", map[string]interface{}{
		"route_id": id,
	})
	return nil
}

// AddDestination добавляет точку в конец маршрута (или на указанную позицию)
func (s *Service) AddDestination(ctx context.Context, scope, routeID uuid.UUID, in *DestinationInput) (*domain.Destination, error) {
	route, err := s.routeRepo.GetByID(ctx, scope, routeID)
	if err != nil {
		return nil, err
	}

	order := nextDisplayOrder(route.Destinations)
	if in.DisplayOrder != nil {
		order = *in.DisplayOrder
	}

	dest := &domain.Destination{
		RouteID:      routeID,
		Name:         in.Name,
		Address:      in.Address,
		DisplayOrder: order,
	}
	if err := dest.Validate(); err != nil {
		return nil, err
	}

	if err := s.routeRepo.AddDestination(ctx, scope, dest); err != nil {
		return nil, err
	}

	return dest, nil
}

// UpdateDestination обновляет точку маршрута
func (s *Service) UpdateDestination(ctx context.Context, scope, routeID, destID uuid.UUID, in *DestinationInput) (*domain.Destination, error) {
	route, err := s.routeRepo.GetByID(ctx, scope, routeID)
	if err != nil {
		return nil, err
	}

	var dest *domain.Destination
	for _, d := range route.Destinations {
		if d.ID == destID {
			dest = d
			break
		}
	}
	if dest == nil {
		return nil, domain.ErrDestinationNotFound
	}

	dest.Name = in.Name
	dest.Address = in.Address
	if in.DisplayOrder != nil {
		dest.DisplayOrder = *in.DisplayOrder
	}
	if err := dest.Validate(); err != nil {
		return nil, err
	}

	if err := s.routeRepo.UpdateDestination(ctx, scope, dest); err != nil {
		return nil, err
	}

	return dest, nil
}

// DeleteDestination удаляет точку маршрута
func (s *Service) DeleteDestination(ctx context.Context, scope, routeID, destID uuid.UUID) error {
	return s.routeRepo.DeleteDestination(ctx, scope, routeID, destID)
}

// ReorderDestinations задает новый порядок точек
// Список должен содержать все точки маршрута ровно по одному разу
func (s *Service) ReorderDestinations(ctx context.Context, scope, routeID uuid.UUID, req *ReorderRequest) (*domain.Route, error) {
	route, err := s.routeRepo.GetByID(ctx, scope, routeID)
	if err != nil {
		return nil, err
	}

	if len(req.DestinationIDs) != len(route.Destinations) {
		return nil, domain.ErrInvalidDestinationData
	}
	known := make(map[uuid.UUID]bool, len(route.Destinations))
	for _, d := range route.Destinations {
		known[d.ID] = false
	}
	for _, id := range req.DestinationIDs {
		seen, ok := known[id]
		if !ok || seen {
			return nil, domain.ErrInvalidDestinationData
		}
		known[id] = true
	}

	if err := s.routeRepo.ReorderDestinations(ctx, scope, routeID, req.DestinationIDs); err != nil {
		return nil, err
	}

	return s.routeRepo.GetByID(ctx, scope, routeID)
}

func nextDisplayOrder(items []*domain.Destination) int {
	max := 0
	for _, d := range items {
		if d.DisplayOrder > max {
			max = d.DisplayOrder
		}
	}
	return max + 1
}
