package rider

import (
	"context"
	"errors"
	"fmt"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/repository"
	"github.com/google/uuid"
)

// AddressInput - адрес пассажира в запросе
type AddressInput struct {
	Type      domain.AddressType `json:"address_type,omitempty" validate:"omitempty,oneof=home school work other"`
	Address   string             `json:"address" validate:"required,max=500"`
	IsPrimary bool               `json:"is_primary,omitempty"`
}

// CreateRiderRequest - запрос на создание пассажира
type CreateRiderRequest struct {
	FullName        string         `json:"full_name" validate:"required,max=200"`
	Phone           string         `json:"phone,omitempty" validate:"max=32"`
	MedicalNotes    string         `json:"medical_notes,omitempty"`
	AssistanceNotes string         `json:"assistance_notes,omitempty"`
	Addresses       []AddressInput `json:"addresses" validate:"required,min=1,dive"`
}

// UpdateRiderRequest - запрос на обновление пассажира
type UpdateRiderRequest struct {
	FullName        *string `json:"full_name,omitempty" validate:"omitempty,max=200"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	MedicalNotes    *string `json:"medical_notes,omitempty"`
	AssistanceNotes *string `json:"assistance_notes,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"`
}

// Service содержит бизнес-логику пассажиров и их адресов
type Service struct {
	riderRepo repository.RiderRepository
	logger    logger.Logger
}

// NewService создает новый экземпляр RiderService
func NewService(riderRepo repository.RiderRepository, logger logger.Logger) *Service {
	return &Service{
		riderRepo: riderRepo,
		logger:    logger,
	}
}

// List возвращает пассажиров кода с адресами
func (s *Service) List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Rider, error) {
	return s.riderRepo.List(ctx, scope, activeOnly)
}

// Get возвращает пассажира с адресами
func (s *Service) Get(ctx context.Context, scope, id uuid.UUID) (*domain.Rider, error) {
	return s.riderRepo.GetByID(ctx, scope, id)
}

// Create создает пассажира; нужен хотя бы один адрес
func (s *Service) Create(ctx context.Context, scope uuid.UUID, req *CreateRiderRequest) (*domain.Rider, error) {
	if len(req.Addresses) == 0 {
		return nil, domain.ErrInvalidAddressData
	}

	rider := &domain.Rider{
		ManagementCodeID: scope,
		FullName:         req.FullName,
		Phone:            req.Phone,
		MedicalNotes:     req.MedicalNotes,
		AssistanceNotes:  req.AssistanceNotes,
		IsActive:         true,
	}
	for _, in := range req.Addresses {
		rider.Addresses = append(rider.Addresses, &domain.Address{
			Type:      in.Type,
			Address:   in.Address,
			IsPrimary: in.IsPrimary,
		})
	}

	if err := rider.Validate(); err != nil {
		return nil, err
	}

	if err := s.riderRepo.Create(ctx, rider); err != nil {
		s.logger.Error("Failed to create rider", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create rider: %w", err)
	}

	s.logger.Info("Rider created", map[string]interface{}{
		"rider_id":  rider.ID,
		"addresses": len(rider.Addresses),
	})

	return rider, nil
}

// Update обновляет поля пассажира
func (s *Service) Update(ctx context.Context, scope, id uuid.UUID, req *UpdateRiderRequest) (*domain.Rider, error) {
	rider, err := s.riderRepo.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		rider.FullName = *req.FullName
	}
	if req.Phone != nil {
		rider.Phone = *req.Phone
	}
	if req.MedicalNotes != nil {
		rider.MedicalNotes = *req.MedicalNotes
	}
	if req.AssistanceNotes != nil {
		rider.AssistanceNotes = *req.AssistanceNotes
	}
	if req.IsActive != nil {
		rider.IsActive = *req.IsActive
	}

	if err := rider.Validate(); err != nil {
		return nil, err
	}

	if err := s.riderRepo.Update(ctx, rider); err != nil {
		return nil, err
	}

	return rider, nil
}

// Deactivate выключает пассажира
func (s *Service) Deactivate(ctx context.Context, scope, id uuid.UUID) error {
	return s.riderRepo.Deactivate(ctx, scope, id)
}

// AddAddress добавляет адрес пассажиру
func (s *Service) AddAddress(ctx context.Context, scope, riderID uuid.UUID, in *AddressInput) (*domain.Address, error) {
	addr := &domain.Address{
		RiderID:   riderID,
		Type:      in.Type,
		Address:   in.Address,
		IsPrimary: in.IsPrimary,
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	if err := s.riderRepo.AddAddress(ctx, scope, addr); err != nil {
		return nil, err
	}

	return addr, nil
}

// UpdateAddress обновляет тип и текст адреса; признак основного меняется через SetPrimaryAddress
func (s *Service) UpdateAddress(ctx context.Context, scope, riderID, addressID uuid.UUID, in *AddressInput) (*domain.Address, error) {
	addr := &domain.Address{
		ID:      addressID,
		RiderID: riderID,
		Type:    in.Type,
		Address: in.Address,
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	if err := s.riderRepo.UpdateAddress(ctx, scope, addr); err != nil {
		return nil, err
	}

	return addr, nil
}

// DeleteAddress удаляет адрес; последний адрес удалить нельзя
func (s *Service) DeleteAddress(ctx context.Context, scope, riderID, addressID uuid.UUID) error {
	err := s.riderRepo.DeleteAddress(ctx, scope, riderID, addressID)
	if err != nil && !errors.Is(err, domain.ErrLastAddress) && !errors.Is(err, domain.ErrAddressNotFound) && !errors.Is(err, domain.ErrRiderNotFound) {
		s.logger.Error("Failed to delete address", map[string]interface{}{
			"rider_id": riderID,
			"error":    err.Error(),
		})
	}
	return err
}

// SetPrimaryAddress делает адрес основным
func (s *Service) SetPrimaryAddress(ctx context.Context, scope, riderID, addressID uuid.UUID) (*domain.Rider, error) {
	if err := s.riderRepo.SetPrimaryAddress(ctx, scope, riderID, addressID); err != nil {
		return nil, err
	}
	return s.riderRepo.GetByID(ctx, scope, riderID)
}
