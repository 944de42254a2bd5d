package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/hash"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/repository"
	"github.com/google/uuid"
)

// CreateDriverRequest - запрос на создание водителя
type CreateDriverRequest struct {
	FullName       string `json:"full_name" validate:"required,max=200"`
	EmployeeNumber string `json:"employee_number" validate:"required,max=32"`
	Password       string `json:"password" validate:"required,min=6"`
	Phone          string `json:"phone,omitempty" validate:"max=32"`
}

// UpdateDriverRequest - запрос на обновление водителя
// Пустые поля не изменяются
type UpdateDriverRequest struct {
	FullName       *string `json:"full_name,omitempty" validate:"omitempty,max=200"`
	EmployeeNumber *string `json:"employee_number,omitempty" validate:"omitempty,max=32"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

// ResetPasswordRequest - запрос на смену пароля водителя
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// Service содержит бизнес-логику работы с водителями
type Service struct {
	driverRepo repository.DriverRepository
	tokenRepo  repository.RefreshTokenRepository
	hasher     *hash.Hasher
	logger     logger.Logger
}

// NewService создает новый экземпляр DriverService
func NewService(driverRepo repository.DriverRepository, tokenRepo repository.RefreshTokenRepository, hasher *hash.Hasher, logger logger.Logger) *Service {
	return &Service{
		driverRepo: driverRepo,
		tokenRepo:  tokenRepo,
		hasher:     hasher,
		logger:     logger,
	}
}

// List возвращает водителей кода
func (s *Service) List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Driver, error) {
	return s.driverRepo.List(ctx, scope, activeOnly)
}

// Get возвращает водителя по ID
func (s *Service) Get(ctx context.Context, scope, id uuid.UUID) (*domain.Driver, error) {
	return s.driverRepo.GetByID(ctx, scope, id)
}

// Create создает нового водителя
func (s *Service) Create(ctx context.Context, scope uuid.UUID, req *CreateDriverRequest) (*domain.Driver, error) {
	driver := &domain.Driver{
		ManagementCodeID: scope,
		FullName:         req.FullName,
		EmployeeNumber:   req.EmployeeNumber,
		Phone:            req.Phone,
		IsActive:         true,
	}

	if err := driver.Validate(); err != nil {
		return nil, err
	}

	passwordHash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	driver.PasswordHash = passwordHash

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		if errors.Is(err, domain.ErrDriverAlreadyExists) {
			return nil, err
		}
		s.logger.Error("Failed to create driver", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	s.logger.Info("Driver created", map[string]interface{}{
		"driver_id":       driver.ID,
		"employee_number": driver.EmployeeNumber,
	})

	return driver, nil
}

// Update обновляет данные водителя
func (s *Service) Update(ctx context.Context, scope, id uuid.UUID, req *UpdateDriverRequest) (*domain.Driver, error) {
	driver, err := s.driverRepo.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		driver.FullName = *req.FullName
	}
	if req.EmployeeNumber != nil {
		driver.EmployeeNumber = *req.EmployeeNumber
	}
	if req.Phone != nil {
		driver.Phone = *req.Phone
	}
	if req.IsActive != nil {
		driver.IsActive = *req.IsActive
	}

	if err := driver.Validate(); err != nil {
		return nil, err
	}

	if err := s.driverRepo.Update(ctx, driver); err != nil {
		return nil, err
	}

	if !driver.IsActive {
		if err := s.revokeTokens(ctx, id); err != nil {
			return nil, err
		}
	}

	return driver, nil
}

// Deactivate выключает водителя; его записи сохраняются
func (s *Service) Deactivate(ctx context.Context, scope, id uuid.UUID) error {
	if err := s.driverRepo.Deactivate(ctx, scope, id); err != nil {
		return err
	}
	if err := s.revokeTokens(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Driver deactivated", map[string]interface{}{
		"driver_id": id,
	})
	return nil
}

// ResetPassword задает водителю новый пароль
func (s *Service) ResetPassword(ctx context.Context, scope, id uuid.UUID, req *ResetPasswordRequest) error {
	driver, err := s.driverRepo.GetByID(ctx, scope, id)
	if err != nil {
		return err
	}

	passwordHash, err := s.hashPassword(req.Password)
	if err != nil {
		return err
	}
	driver.PasswordHash = passwordHash

	if err := s.driverRepo.Update(ctx, driver); err != nil {
		return err
	}
	// Старый пароль больше не должен давать доступ через refresh токены
	if err := s.revokeTokens(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Driver password reset", map[string]interface{}{
		"driver_id": id,
	})
	return nil
}

// revokeTokens отзывает все refresh токены водителя
func (s *Service) revokeTokens(ctx context.Context, driverID uuid.UUID) error {
	if err := s.tokenRepo.RevokeAllForSubject(ctx, driverID); err != nil {
		s.logger.Error("Failed to revoke driver tokens", map[string]interface{}{
			"driver_id": driverID,
			"error":     err.Error(),
		})
		return fmt.Errorf("failed to revoke driver tokens: %w", err)
	}
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, hash.ErrPasswordTooShort) {
			return "", domain.ErrInvalidPassword
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return passwordHash, nil
}
