package organization

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

// maxCodeAttempts - число попыток выпустить код при совпадении с существующим
const maxCodeAttempts = 5

// CreateOrganizationRequest - запрос на создание организации
type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// Service содержит бизнес-логику организаций и кодов управления
type Service struct {
	orgRepo  repository.OrganizationRepository
	codeRepo repository.ManagementCodeRepository
	logger   logger.Logger
	now      func() time.Time
	generate func() (string, error)
}

// NewService создает новый экземпляр OrganizationService
func NewService(
	orgRepo repository.OrganizationRepository,
	codeRepo repository.ManagementCodeRepository,
	logger logger.Logger,
) *Service {
	return &Service{
		orgRepo:  orgRepo,
		codeRepo: codeRepo,
		logger:   logger,
		now:      time.Now,
		generate: domain.GenerateManagementCode,
	}
}

// CreateOrganization создает организацию и выпускает для нее первый код управления
func (s *Service) CreateOrganization(ctx context.Context, req *CreateOrganizationRequest) (*domain.Organization, error) {
	org := &domain.Organization{Name: req.Name}
	if err := org.Validate(); err != nil {
		return nil, err
	}

	if err := s.orgRepo.Create(ctx, org); err != nil {
		s.logger.Error("Failed to create organization", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	code, err := s.issue(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	org.Codes = []*domain.ManagementCode{code}

	s.logger.Info("Organization created", map[string]interface{}{
		"organization_id": org.ID,
		"code":            code.Code,
	})

	return org, nil
}

// IssueCode выпускает новый код управления для организации
func (s *Service) IssueCode(ctx context.Context, orgID uuid.UUID) (*domain.ManagementCode, error) {
	if _, err := s.orgRepo.GetByID(ctx, orgID); err != nil {
		return nil, err
	}
	return s.issue(ctx, orgID)
}

func (s *Service) issue(ctx context.Context, orgID uuid.UUID) (*domain.ManagementCode, error) {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		value, err := s.generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate management code: %w", err)
		}

		code := &domain.ManagementCode{
			OrganizationID: orgID,
			Code:           value,
			IsActive:       true,
		}

		err = s.codeRepo.Create(ctx, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, domain.ErrManagementCodeExists) {
			s.logger.Error("Failed to store management code", map[string]interface{}{
				"organization_id": orgID,
				"error":           err.Error(),
			})
			return nil, fmt.Errorf("failed to store management code: %w", err)
		}

		s.logger.Warn("Management code collision", map[string]interface{}{
			"attempt": attempt,
		})
	}

	return nil, domain.ErrManagementCodeExhausted
}

// DeactivateCode выключает код; сессии с этим кодом больше не создаются
func (s *Service) DeactivateCode(ctx context.Context, codeID uuid.UUID) error {
	if err := s.codeRepo.Deactivate(ctx, codeID, s.now()); err != nil {
		return err
	}

	s.logger.Info("Management code deactivated", map[string]interface{}{
		"code_id": codeID,
	})
	return nil
}

// ListOrganizations возвращает организации вместе с их кодами
func (s *Service) ListOrganizations(ctx context.Context) ([]*domain.Organization, error) {
	orgs, err := s.orgRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	for _, org := range orgs {
		codes, err := s.codeRepo.ListByOrganization(ctx, org.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list management codes: %w", err)
		}
		org.Codes = codes
	}

	return orgs, nil
}

// ListCodes возвращает коды организации
func (s *Service) ListCodes(ctx context.Context, orgID uuid.UUID) ([]*domain.ManagementCode, error) {
	if _, err := s.orgRepo.GetByID(ctx, orgID); err != nil {
		return nil, err
	}
	return s.codeRepo.ListByOrganization(ctx, orgID)
}

// ResolveCode возвращает активный код управления по значению, введенному водителем
func (s *Service) ResolveCode(ctx context.Context, value string) (*domain.ManagementCode, error) {
	value = domain.NormalizeManagementCode(value)
	if !domain.IsValidManagementCode(value) {
		return nil, domain.ErrInvalidManagementCode
	}

	code, err := s.codeRepo.GetByCode(ctx, value)
	if err != nil {
		return nil, err
	}
	if !code.IsActive {
		return nil, domain.ErrManagementCodeInactive
	}

	return code, nil
}
