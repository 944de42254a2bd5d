package vehicle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/repository"
	"github.com/google/uuid"
)

// CreateVehicleRequest - запрос на создание машины
type CreateVehicleRequest struct {
	Name                  string          `json:"name" validate:"required,max=100"`
	LicensePlate          string          `json:"license_plate" validate:"required,max=20"`
	Model                 string          `json:"model,omitempty" validate:"max=100"`
	Capacity              int             `json:"capacity" validate:"min=0,max=100"`
	FuelType              domain.FuelType `json:"fuel_type,omitempty" validate:"omitempty,oneof=gasoline diesel hybrid electric lpg"`
	CurrentOdometer       int             `json:"current_odometer" validate:"min=0"`
	LastOilChangeOdometer *int            `json:"last_oil_change_odometer,omitempty" validate:"omitempty,min=0"`
}

// UpdateVehicleRequest - запрос на обновление машины
// Пустые поля не изменяются
type UpdateVehicleRequest struct {
	Name            *string          `json:"name,omitempty" validate:"omitempty,max=100"`
	LicensePlate    *string          `json:"license_plate,omitempty" validate:"omitempty,max=20"`
	Model           *string          `json:"model,omitempty" validate:"omitempty,max=100"`
	Capacity        *int             `json:"capacity,omitempty" validate:"omitempty,min=0,max=100"`
	FuelType        *domain.FuelType `json:"fuel_type,omitempty" validate:"omitempty,oneof=gasoline diesel hybrid electric lpg"`
	CurrentOdometer *int             `json:"current_odometer,omitempty" validate:"omitempty,min=0"`
	IsActive        *bool            `json:"is_active,omitempty"`
}

// OilChangeRequest - запрос на фиксацию замены масла
// Без пробега замена фиксируется на текущем пробеге машины
type OilChangeRequest struct {
	Odometer *int `json:"odometer,omitempty" validate:"omitempty,min=0"`
}

// Service содержит бизнес-логику работы с машинами
type Service struct {
	vehicleRepo repository.VehicleRepository
	logger      logger.Logger
	now         func() time.Time
}

// NewService создает новый экземпляр VehicleService
func NewService(vehicleRepo repository.VehicleRepository, logger logger.Logger) *Service {
	return &Service{
		vehicleRepo: vehicleRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateVehicle создает новую машину
func (s *Service) CreateVehicle(ctx context.Context, scope uuid.UUID, req *CreateVehicleRequest) (*domain.Vehicle, error) {
	s.logger.Info("Creating new vehicle", map[string]interface{}{
		"license_plate": req.LicensePlate,
	})

	vehicle := &domain.Vehicle{
		ManagementCodeID:      scope,
		Name:                  req.Name,
		LicensePlate:          req.LicensePlate,
		Model:                 req.Model,
		Capacity:              req.Capacity,
		FuelType:              req.FuelType,
		CurrentOdometer:       req.CurrentOdometer,
		LastOilChangeOdometer: req.CurrentOdometer,
		IsActive:              true,
	}
	if req.LastOilChangeOdometer != nil {
		vehicle.LastOilChangeOdometer = *req.LastOilChangeOdometer
	}

	if err := vehicle.Validate(); err != nil {
		return nil, err
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		if errors.Is(err, domain.ErrVehicleAlreadyExists) {
			s.logger.Warn("Vehicle already exists", map[string]interface{}{
				"license_plate": vehicle.LicensePlate,
			})
			return nil, err
		}
		s.logger.Error("Failed to create vehicle", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}

	s.logger.Info("Vehicle created successfully", map[string]interface{}{
		"vehicle_id": vehicle.ID,
	})

	return vehicle, nil
}

// GetVehicleByID возвращает машину по ID
func (s *Service) GetVehicleByID(ctx context.Context, scope, id uuid.UUID) (*domain.Vehicle, error) {
	return s.vehicleRepo.GetByID(ctx, scope, id)
}

// ListVehicles возвращает машины кода
func (s *Service) ListVehicles(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Vehicle, error) {
	return s.vehicleRepo.List(ctx, scope, activeOnly)
}

// UpdateVehicle обновляет данные машины
func (s *Service) UpdateVehicle(ctx context.Context, scope, id uuid.UUID, req *UpdateVehicleRequest) (*domain.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		vehicle.Name = *req.Name
	}
	if req.LicensePlate != nil {
		vehicle.LicensePlate = *req.LicensePlate
	}
	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Capacity != nil {
		vehicle.Capacity = *req.Capacity
	}
	if req.FuelType != nil {
		vehicle.FuelType = *req.FuelType
	}
	if req.CurrentOdometer != nil {
		vehicle.CurrentOdometer = *req.CurrentOdometer
	}
	if req.IsActive != nil {
		vehicle.IsActive = *req.IsActive
	}

	if err := vehicle.Validate(); err != nil {
		return nil, err
	}

	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, err
	}

	return vehicle, nil
}

// DeactivateVehicle выключает машину
func (s *Service) DeactivateVehicle(ctx context.Context, scope, id uuid.UUID) error {
	if err := s.vehicleRepo.Deactivate(ctx, scope, id); err != nil {
		return err
	}

	s.logger.Info("Vehicle deactivated", map[string]interface{}{
		"vehicle_id": id,
	})
	return nil
}

// RecordOilChange фиксирует замену масла
func (s *Service) RecordOilChange(ctx context.Context, scope, id uuid.UUID, req *OilChangeRequest) (*domain.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	odometer := vehicle.CurrentOdometer
	if req != nil && req.Odometer != nil {
		odometer = *req.Odometer
	}
	if odometer < vehicle.LastOilChangeOdometer {
		return nil, domain.ErrInvalidOdometer
	}

	updated, err := s.vehicleRepo.RecordOilChange(ctx, scope, id, odometer, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("Oil change recorded", map[string]interface{}{
		"vehicle_id": id,
		"odometer":   odometer,
	})

	return updated, nil
}

// OilStatuses возвращает состояние замены масла по активным машинам кода
func (s *Service) OilStatuses(ctx context.Context, scope uuid.UUID) ([]domain.VehicleOilSummary, error) {
	vehicles, err := s.vehicleRepo.List(ctx, scope, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return OilSummaries(vehicles), nil
}

// OilSummaries строит сводку замены масла по списку машин
func OilSummaries(vehicles []*domain.Vehicle) []domain.VehicleOilSummary {
	result := make([]domain.VehicleOilSummary, 0, len(vehicles))
	for _, v := range vehicles {
		result = append(result, domain.VehicleOilSummary{
			VehicleID:        v.ID,
			Name:             v.Name,
			LicensePlate:     v.LicensePlate,
			CurrentOdometer:  v.CurrentOdometer,
			KmSinceOilChange: v.KmSinceOilChange(),
			Status:           v.OilStatus(),
		})
	}
	return result
}
