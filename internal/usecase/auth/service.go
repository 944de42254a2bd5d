package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/hash"
	"github.com/frontandrew/caretrip/internal/pkg/jwt"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/repository"
	"github.com/google/uuid"
)

// CreateAdminRequest - запрос на создание администратора
type CreateAdminRequest struct {
	Email            string      `json:"email" validate:"required,email"`
	Password         string      `json:"password" validate:"required,min=6"`
	FullName         string      `json:"full_name" validate:"required"`
	Role             domain.Role `json:"role,omitempty" validate:"omitempty,oneof=super_admin admin"`
	ManagementCodeID *uuid.UUID  `json:"management_code_id,omitempty"`
}

// LoginRequest - запрос на вход администратора
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DriverLoginRequest - запрос на вход водителя
type DriverLoginRequest struct {
	Code           string      `json:"code" validate:"required,len=6"`
	EmployeeNumber string      `json:"employee_number" validate:"required"`
	Password       string      `json:"password" validate:"required"`
	VehicleID      uuid.UUID   `json:"vehicle_id" validate:"required"`
	RiderIDs       []uuid.UUID `json:"rider_ids,omitempty"`
	RouteID        *uuid.UUID  `json:"route_id,omitempty"`
}

// UpdateSessionRequest - смена машины, пассажиров или маршрута в текущей смене
type UpdateSessionRequest struct {
	VehicleID uuid.UUID   `json:"vehicle_id" validate:"required"`
	RiderIDs  []uuid.UUID `json:"rider_ids,omitempty"`
	RouteID   *uuid.UUID  `json:"route_id,omitempty"`
}

// RefreshTokenRequest - запрос на обновление токенов
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest - запрос на выход
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// LoginResponse - ответ на вход
type LoginResponse struct {
	Principal    *domain.Principal     `json:"principal"`
	Session      *domain.DriverSession `json:"session,omitempty"`
	AccessToken  string                `json:"access_token"`
	RefreshToken string                `json:"refresh_token"`
	ExpiresAt    string                `json:"expires_at"`
}

// CodeResolver находит активный код управления по значению
type CodeResolver interface {
	ResolveCode(ctx context.Context, code string) (*domain.ManagementCode, error)
}

// Repositories - хранилища, с которыми работает сервис аутентификации
type Repositories struct {
	Admins   repository.AdminRepository
	Tokens   repository.RefreshTokenRepository
	Codes    repository.ManagementCodeRepository
	Drivers  repository.DriverRepository
	Vehicles repository.VehicleRepository
	Riders   repository.RiderRepository
	Routes   repository.RouteRepository
	Records  repository.RecordRepository
	Sessions repository.SessionRepository
}

// Service содержит бизнес-логику аутентификации
type Service struct {
	repos        Repositories
	codes        CodeResolver
	tokenService *jwt.TokenService
	hasher       *hash.Hasher
	logger       logger.Logger
	location     *time.Location
	now          func() time.Time
}

// NewService создает новый экземпляр AuthService
func NewService(
	repos Repositories,
	codes CodeResolver,
	tokenService *jwt.TokenService,
	hasher *hash.Hasher,
	location *time.Location,
	logger logger.Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		repos:        repos,
		codes:        codes,
		tokenService: tokenService,
		hasher:       hasher,
		logger:       logger,
		location:     location,
		now:          time.Now,
	}
}

// BootstrapSuperAdmin создает суперадминистратора при первом запуске
// Возвращает true, если учетная запись создана
func (s *Service) BootstrapSuperAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}

	count, err := s.repos.Admins.CountByRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to count super admins: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	_, err = s.CreateAdmin(ctx, &CreateAdminRequest{
		Email:    email,
		Password: password,
		FullName: "Super Admin",
		Role:     domain.RoleSuperAdmin,
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

// CreateAdmin создает администратора или суперадминистратора
func (s *Service) CreateAdmin(ctx context.Context, req *CreateAdminRequest) (*domain.Admin, error) {
	admin := &domain.Admin{
		ManagementCodeID: req.ManagementCodeID,
		Email:            req.Email,
		FullName:         req.FullName,
		Role:             req.Role,
		IsActive:         true,
	}

	// Если роль не указана, создаем администратора кода
	if admin.Role == "" {
		admin.Role = domain.RoleAdmin
	}

	if err := admin.Validate(); err != nil {
		return nil, err
	}

	if admin.ManagementCodeID != nil {
		if _, err := s.repos.Codes.GetByID(ctx, *admin.ManagementCodeID); err != nil {
			return nil, err
		}
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, hash.ErrPasswordTooShort) {
			return nil, domain.ErrInvalidPassword
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	admin.PasswordHash = passwordHash

	if err := s.repos.Admins.Create(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrAdminAlreadyExists) {
			return nil, err
		}
		s.logger.Error("Failed to create admin", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("Admin created", map[string]interface{}{
		"admin_id": admin.ID,
		"role":     admin.Role,
	})

	// Не возвращаем password_hash
	admin.PasswordHash = ""

	return admin, nil
}

// ListAdmins возвращает администраторов
func (s *Service) ListAdmins(ctx context.Context, limit, offset int) ([]*domain.Admin, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repos.Admins.List(ctx, limit, offset)
}

// Login аутентифицирует администратора и возвращает JWT токены
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	email := domain.NormalizeEmail(req.Email)
	s.logger.Info("Admin login attempt", map[string]interface{}{
		"email": email,
	})

	admin, err := s.repos.Admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			s.logger.Warn("Login failed: admin not found", map[string]interface{}{
				"email": email,
			})
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	if !admin.IsActive {
		s.logger.Warn("Login failed: admin inactive", map[string]interface{}{
			"admin_id": admin.ID,
		})
		return nil, domain.ErrAccountInactive
	}

	if !s.hasher.Check(admin.PasswordHash, req.Password) {
		s.logger.Warn("Login failed: invalid password", map[string]interface{}{
			"admin_id": admin.ID,
		})
		return nil, domain.ErrInvalidCredentials
	}

	principal := admin.Principal()
	resp, err := s.issueTokens(ctx, principal)
	if err != nil {
		return nil, err
	}

	if err := s.repos.Admins.UpdateLastLogin(ctx, admin.ID, s.now()); err != nil {
		s.logger.Error("Failed to update last login", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.logger.Info("Admin logged in", map[string]interface{}{
		"admin_id": admin.ID,
	})

	return resp, nil
}

// DriverLogin аутентифицирует водителя и открывает смену
func (s *Service) DriverLogin(ctx context.Context, req *DriverLoginRequest) (*LoginResponse, error) {
	code, err := s.codes.ResolveCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	scope := code.ID

	number := domain.NormalizeEmployeeNumber(req.EmployeeNumber)
	driver, err := s.repos.Drivers.GetByEmployeeNumber(ctx, scope, number)
	if err != nil {
		if errors.Is(err, domain.ErrDriverNotFound) {
			s.logger.Warn("Driver login failed: driver not found", map[string]interface{}{
				"employee_number": number,
			})
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}

	if !driver.IsActive {
		return nil, domain.ErrAccountInactive
	}

	if driver.PasswordHash == "" || !s.hasher.Check(driver.PasswordHash, req.Password) {
		s.logger.Warn("Driver login failed: invalid password", map[string]interface{}{
			"driver_id": driver.ID,
		})
		return nil, domain.ErrInvalidCredentials
	}

	session := &domain.DriverSession{
		ID:               uuid.New(),
		ManagementCodeID: scope,
		DriverID:         driver.ID,
		DriverName:       driver.FullName,
		StartedAt:        s.now(),
	}
	if err := s.applySelection(ctx, session, req.VehicleID, req.RiderIDs, req.RouteID); err != nil {
		return nil, err
	}

	if err := s.repos.Sessions.Save(ctx, session, s.tokenService.RefreshExpiry()); err != nil {
		s.logger.Error("Failed to save driver session", map[string]interface{}{
			"driver_id": driver.ID,
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("failed to save driver session: %w", err)
	}

	resp, err := s.issueTokens(ctx, driver.Principal(session.ID))
	if err != nil {
		return nil, err
	}
	resp.Session = session

	s.logger.Info("Driver logged in", map[string]interface{}{
		"driver_id":      driver.ID,
		"vehicle_id":     session.VehicleID,
		"riders":         len(session.RiderIDs),
		"start_odometer": session.StartOdometer,
	})

	return resp, nil
}

// applySelection проверяет выбор водителя в рамках кода и заполняет сессию
func (s *Service) applySelection(ctx context.Context, session *domain.DriverSession, vehicleID uuid.UUID, riderIDs []uuid.UUID, routeID *uuid.UUID) error {
	scope := session.ManagementCodeID

	vehicle, err := s.repos.Vehicles.GetByID(ctx, scope, vehicleID)
	if err != nil {
		return err
	}
	if !vehicle.IsActive {
		return domain.ErrVehicleNotFound
	}

	riderIDs = uniqueIDs(riderIDs)
	if len(riderIDs) > 0 {
		riders, err := s.repos.Riders.ListByIDs(ctx, scope, riderIDs)
		if err != nil {
			return fmt.Errorf("failed to load riders: %w", err)
		}
		if len(riders) != len(riderIDs) {
			return domain.ErrRiderNotFound
		}
	}

	if routeID != nil {
		route, err := s.repos.Routes.GetByID(ctx, scope, *routeID)
		if err != nil {
			return err
		}
		if !route.IsActive {
			return domain.ErrRouteNotFound
		}
	}

	if session.VehicleID != vehicle.ID {
		last, err := s.repos.Records.LastEndOdometer(ctx, vehicle.ID, domain.ServiceDay(s.now(), s.location))
		if err != nil {
			return fmt.Errorf("failed to get last odometer: %w", err)
		}
		session.StartOdometer = domain.StartOdometerFor(last, vehicle)
	}

	session.VehicleID = vehicle.ID
	session.VehicleName = vehicle.Name
	session.RiderIDs = riderIDs
	session.RouteID = routeID

	return session.Validate()
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	result := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

// issueTokens выпускает пару токенов и сохраняет хеш refresh токена
func (s *Service) issueTokens(ctx context.Context, principal domain.Principal) (*LoginResponse, error) {
	pair, err := s.tokenService.GenerateTokenPair(principal)
	if err != nil {
		s.logger.Error("Failed to generate tokens", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	stored := &domain.RefreshToken{
		SubjectID:   principal.SubjectID,
		SubjectRole: principal.Role,
		SessionID:   principal.SessionID,
		TokenHash:   jwt.HashToken(pair.RefreshToken),
		ExpiresAt:   pair.RefreshExpiresAt,
	}
	if err := s.repos.Tokens.Create(ctx, stored); err != nil {
		s.logger.Error("Failed to store refresh token", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &LoginResponse{
		Principal:    &principal,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// Refresh обновляет токены; старый refresh токен отзывается
func (s *Service) Refresh(ctx context.Context, req *RefreshTokenRequest) (*LoginResponse, error) {
	claims, err := s.tokenService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, err
	}

	tokenHash := jwt.HashToken(req.RefreshToken)
	stored, err := s.repos.Tokens.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if !stored.IsValid(s.now()) {
		s.logger.Warn("Refresh with revoked or expired token", map[string]interface{}{
			"subject_id": claims.SubjectID,
		})
		return nil, domain.ErrInvalidToken
	}

	principal := claims.Principal()
	if err := s.ensureActive(ctx, principal); err != nil {
		return nil, err
	}

	// Ротация: старый токен больше не принимается
	if err := s.repos.Tokens.Revoke(ctx, tokenHash); err != nil {
		return nil, err
	}

	resp, err := s.issueTokens(ctx, *principal)
	if err != nil {
		return nil, err
	}

	if principal.SessionID != nil {
		session, err := s.repos.Sessions.Get(ctx, *principal.SessionID)
		if err != nil {
			return nil, err
		}
		// Сессия живет столько же, сколько новый refresh токен
		if err := s.repos.Sessions.Save(ctx, session, s.tokenService.RefreshExpiry()); err != nil {
			return nil, fmt.Errorf("failed to extend driver session: %w", err)
		}
		resp.Session = session
	}

	return resp, nil
}

// ensureActive проверяет, что учетная запись субъекта и его код управления по-прежнему активны
func (s *Service) ensureActive(ctx context.Context, p *domain.Principal) error {
	if err := s.ensureSubjectActive(ctx, p); err != nil {
		return err
	}
	if p.ManagementCodeID == nil {
		return nil
	}

	code, err := s.repos.Codes.GetByID(ctx, *p.ManagementCodeID)
	if err != nil {
		if errors.Is(err, domain.ErrManagementCodeNotFound) {
			return domain.ErrInvalidToken
		}
		return err
	}
	if !code.IsActive {
		s.logger.Warn("Refresh rejected: management code is inactive", map[string]interface{}{
			"subject_id":         p.SubjectID,
			"management_code_id": code.ID,
		})
		return domain.ErrManagementCodeInactive
	}
	return nil
}

func (s *Service) ensureSubjectActive(ctx context.Context, p *domain.Principal) error {
	if p.IsDriver() {
		scope, err := p.Scope()
		if err != nil {
			return err
		}
		driver, err := s.repos.Drivers.GetByID(ctx, scope, p.SubjectID)
		if err != nil {
			if errors.Is(err, domain.ErrDriverNotFound) {
				return domain.ErrInvalidToken
			}
			return err
		}
		if !driver.IsActive {
			return domain.ErrAccountInactive
		}
		return nil
	}

	admin, err := s.repos.Admins.GetByID(ctx, p.SubjectID)
	if err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			return domain.ErrInvalidToken
		}
		return err
	}
	if !admin.IsActive {
		return domain.ErrAccountInactive
	}
	return nil
}

// Logout отзывает refresh токен и закрывает смену водителя
func (s *Service) Logout(ctx context.Context, principal *domain.Principal, req *LogoutRequest) error {
	if req != nil && req.RefreshToken != "" {
		err := s.repos.Tokens.Revoke(ctx, jwt.HashToken(req.RefreshToken))
		if err != nil && !errors.Is(err, domain.ErrInvalidToken) {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
	}

	if principal != nil && principal.SessionID != nil {
		if err := s.repos.Tokens.RevokeSession(ctx, *principal.SessionID); err != nil {
			return fmt.Errorf("failed to revoke session tokens: %w", err)
		}
		if err := s.repos.Sessions.Delete(ctx, *principal.SessionID); err != nil {
			return err
		}
	}

	if principal != nil {
		s.logger.Info("Logged out", map[string]interface{}{
			"subject_id": principal.SubjectID,
			"role":       principal.Role,
		})
	}

	return nil
}

// LoginOptions возвращает активные справочники кода для экрана входа
func (s *Service) LoginOptions(ctx context.Context, value string) (*domain.LoginOptions, error) {
	code, err := s.codes.ResolveCode(ctx, value)
	if err != nil {
		return nil, err
	}
	scope := code.ID

	drivers, err := s.repos.Drivers.List(ctx, scope, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	vehicles, err := s.repos.Vehicles.List(ctx, scope, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	riders, err := s.repos.Riders.List(ctx, scope, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list riders: %w", err)
	}
	routes, err := s.repos.Routes.List(ctx, scope, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}

	opts := &domain.LoginOptions{
		Drivers:  make([]domain.NamedItem, 0, len(drivers)),
		Vehicles: make([]domain.NamedItem, 0, len(vehicles)),
		Riders:   make([]domain.NamedItem, 0, len(riders)),
		Routes:   make([]domain.NamedItem, 0, len(routes)),
	}
	for _, d := range drivers {
		opts.Drivers = append(opts.Drivers, domain.NamedItem{ID: d.ID, Name: d.FullName})
	}
	for _, v := range vehicles {
		opts.Vehicles = append(opts.Vehicles, domain.NamedItem{ID: v.ID, Name: fmt.Sprintf("%s (%s)", v.Name, v.LicensePlate)})
	}
	for _, r := range riders {
		opts.Riders = append(opts.Riders, domain.NamedItem{ID: r.ID, Name: r.FullName})
	}
	for _, r := range routes {
		opts.Routes = append(opts.Routes, domain.NamedItem{ID: r.ID, Name: r.Name})
	}

	return opts, nil
}

// Session возвращает текущую смену водителя
func (s *Service) Session(ctx context.Context, principal *domain.Principal) (*domain.DriverSession, error) {
	if principal == nil || principal.SessionID == nil {
		return nil, domain.ErrSessionNotFound
	}

	session, err := s.repos.Sessions.Get(ctx, *principal.SessionID)
	if err != nil {
		return nil, err
	}
	if session.DriverID != principal.SubjectID {
		return nil, domain.ErrSessionNotFound
	}

	return session, nil
}

// UpdateSession меняет выбор водителя в текущей смене
// При смене машины начальный пробег пересчитывается
func (s *Service) UpdateSession(ctx context.Context, principal *domain.Principal, req *UpdateSessionRequest) (*domain.DriverSession, error) {
	session, err := s.Session(ctx, principal)
	if err != nil {
		return nil, err
	}

	if err := s.applySelection(ctx, session, req.VehicleID, req.RiderIDs, req.RouteID); err != nil {
		return nil, err
	}

	if err := s.repos.Sessions.Save(ctx, session, s.tokenService.RefreshExpiry()); err != nil {
		return nil, fmt.Errorf("failed to save driver session: %w", err)
	}

	s.logger.Info("Driver session updated", map[string]interface{}{
		"session_id": session.ID,
		"vehicle_id": session.VehicleID,
	})

	return session, nil
}

// ValidateToken валидирует access токен и возвращает субъект
func (s *Service) ValidateToken(tokenString string) (*domain.Principal, error) {
	claims, err := s.tokenService.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims.Principal(), nil
}
