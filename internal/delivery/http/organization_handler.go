package http

import (
	"context"
	"net/http"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/usecase/auth"
	"github.com/frontandrew/caretrip/internal/usecase/organization"
	"github.com/google/uuid"
)

// OrganizationService определяет интерфейс сервиса организаций и кодов управления
type OrganizationService interface {
	CreateOrganization(ctx context.Context, req *organization.CreateOrganizationRequest) (*domain.Organization, error)
	ListOrganizations(ctx context.Context) ([]*domain.Organization, error)
	IssueCode(ctx context.Context, orgID uuid.UUID) (*domain.ManagementCode, error)
	ListCodes(ctx context.Context, orgID uuid.UUID) ([]*domain.ManagementCode, error)
	DeactivateCode(ctx context.Context, codeID uuid.UUID) error
}

// AdminService определяет интерфейс управления администраторами
type AdminService interface {
	CreateAdmin(ctx context.Context, req *auth.CreateAdminRequest) (*domain.Admin, error)
	ListAdmins(ctx context.Context, limit, offset int) ([]*domain.Admin, error)
}

// OrganizationHandler обрабатывает запросы супер-администратора
type OrganizationHandler struct {
	orgService   OrganizationService
	adminService AdminService
	logger       logger.Logger
}

// NewOrganizationHandler создает новый handler
func NewOrganizationHandler(orgService OrganizationService, adminService AdminService, logger logger.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		orgService:   orgService,
		adminService: adminService,
		logger:       logger,
	}
}

// CreateOrganization создает организацию с первым кодом управления
// POST /api/v1/organizations
func (h *OrganizationHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req organization.CreateOrganizationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	org, err := h.orgService.CreateOrganization(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err, "create organization")
		return
	}

	respondSuccess(w, http.StatusCreated, org)
}

// ListOrganizations возвращает организации с кодами
// GET /api/v1/organizations
func (h *OrganizationHandler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.orgService.ListOrganizations(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err, "list organizations")
		return
	}

	respondSuccess(w, http.StatusOK, orgs)
}

// IssueCode выпускает новый код управления
// POST /api/v1/organizations/{id}/codes
func (h *OrganizationHandler) IssueCode(w http.ResponseWriter, r *http.Request) {
	orgID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	code, err := h.orgService.IssueCode(r.Context(), orgID)
	if err != nil {
		handleError(w, r, h.logger, err, "issue management code")
		return
	}

	respondSuccess(w, http.StatusCreated, code)
}

// ListCodes возвращает коды организации
// GET /api/v1/organizations/{id}/codes
func (h *OrganizationHandler) ListCodes(w http.ResponseWriter, r *http.Request) {
	orgID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	codes, err := h.orgService.ListCodes(r.Context(), orgID)
	if err != nil {
		handleError(w, r, h.logger, err, "list management codes")
		return
	}

	respondSuccess(w, http.StatusOK, codes)
}

// DeactivateCode выключает код управления
// DELETE /api/v1/organizations/{id}/codes/{codeID}
func (h *OrganizationHandler) DeactivateCode(w http.ResponseWriter, r *http.Request) {
	codeID, ok := uuidParam(w, r, "codeID")
	if !ok {
		return
	}

	if err := h.orgService.DeactivateCode(r.Context(), codeID); err != nil {
		handleError(w, r, h.logger, err, "deactivate management code")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateAdmin создает администратора
// POST /api/v1/admins
func (h *OrganizationHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req auth.CreateAdminRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	admin, err := h.adminService.CreateAdmin(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err, "create admin")
		return
	}

	respondSuccess(w, http.StatusCreated, admin)
}

// ListAdmins возвращает администраторов
// GET /api/v1/admins?limit=&offset=
func (h *OrganizationHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.adminService.ListAdmins(r.Context(), queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		handleError(w, r, h.logger, err, "list admins")
		return
	}

	respondSuccess(w, http.StatusOK, admins)
}
