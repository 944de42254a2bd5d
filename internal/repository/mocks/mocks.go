// Package mocks содержит testify-моки репозиториев для тестов сервисов
package mocks

import (
	"context"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// OrganizationRepository - мок repository.OrganizationRepository
type OrganizationRepository struct {
	mock.Mock
}

func (m *OrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	return m.Called(ctx, org).Error(0)
}

func (m *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *OrganizationRepository) List(ctx context.Context) ([]*domain.Organization, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Organization), args.Error(1)
}

// ManagementCodeRepository - мок repository.ManagementCodeRepository
type ManagementCodeRepository struct {
	mock.Mock
}

func (m *ManagementCodeRepository) Create(ctx context.Context, code *domain.ManagementCode) error {
	return m.Called(ctx, code).Error(0)
}

func (m *ManagementCodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ManagementCode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ManagementCode), args.Error(1)
}

func (m *ManagementCodeRepository) GetByCode(ctx context.Context, code string) (*domain.ManagementCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ManagementCode), args.Error(1)
}

func (m *ManagementCodeRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.ManagementCode, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ManagementCode), args.Error(1)
}

func (m *ManagementCodeRepository) Deactivate(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

// AdminRepository - мок repository.AdminRepository
type AdminRepository struct {
	mock.Mock
}

func (m *AdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	return m.Called(ctx, admin).Error(0)
}

func (m *AdminRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *AdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *AdminRepository) List(ctx context.Context, limit, offset int) ([]*domain.Admin, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Admin), args.Error(1)
}

func (m *AdminRepository) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	args := m.Called(ctx, role)
	return args.Int(0), args.Error(1)
}

func (m *AdminRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

// RefreshTokenRepository - мок repository.RefreshTokenRepository
type RefreshTokenRepository struct {
	mock.Mock
}

func (m *RefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *RefreshTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *RefreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

func (m *RefreshTokenRepository) RevokeAllForSubject(ctx context.Context, subjectID uuid.UUID) error {
	return m.Called(ctx, subjectID).Error(0)
}

func (m *RefreshTokenRepository) RevokeSession(ctx context.Context, sessionID uuid.UUID) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *RefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// DriverRepository - мок repository.DriverRepository
type DriverRepository struct {
	mock.Mock
}

func (m *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	return m.Called(ctx, driver).Error(0)
}

func (m *DriverRepository) GetByID(ctx context.Context, scope, id uuid.UUID) (*domain.Driver, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Driver), args.Error(1)
}

func (m *DriverRepository) GetByEmployeeNumber(ctx context.Context, scope uuid.UUID, number string) (*domain.Driver, error) {
	args := m.Called(ctx, scope, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Driver), args.Error(1)
}

func (m *DriverRepository) List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Driver, error) {
	args := m.Called(ctx, scope, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Driver), args.Error(1)
}

func (m *DriverRepository) Update(ctx context.Context, driver *domain.Driver) error {
	return m.Called(ctx, driver).Error(0)
}

func (m *DriverRepository) Deactivate(ctx context.Context, scope, id uuid.UUID) error {
	return m.Called(ctx, scope, id).Error(0)
}

// VehicleRepository - мок repository.VehicleRepository
type VehicleRepository struct {
	mock.Mock
}

func (m *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	return m.Called(ctx, vehicle).Error(0)
}

func (m *VehicleRepository) GetByID(ctx context.Context, scope, id uuid.UUID) (*domain.Vehicle, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *VehicleRepository) List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Vehicle, error) {
	args := m.Called(ctx, scope, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Vehicle), args.Error(1)
}

func (m *VehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	return m.Called(ctx, vehicle).Error(0)
}

func (m *VehicleRepository) Deactivate(ctx context.Context, scope, id uuid.UUID) error {
	return m.Called(ctx, scope, id).Error(0)
}

func (m *VehicleRepository) RecordOilChange(ctx context.Context, scope, id uuid.UUID, odometer int, at time.Time) (*domain.Vehicle, error) {
	args := m.Called(ctx, scope, id, odometer, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

// RouteRepository - мок repository.RouteRepository
type RouteRepository struct {
	mock.Mock
}

func (m *RouteRepository) Create(ctx context.Context, route *domain.Route) error {
	return m.Called(ctx, route).Error(0)
}

func (m *RouteRepository) GetByID(ctx context.Context, scope, id uuid.UUID) (*domain.Route, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Route), args.Error(1)
}

func (m *RouteRepository) List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Route, error) {
	args := m.Called(ctx, scope, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Route), args.Error(1)
}

func (m *RouteRepository) Update(ctx context.Context, route *domain.Route) error {
	return m.Called(ctx, route).Error(0)
}

func (m *RouteRepository) Delete(ctx context.Context, scope, id uuid.UUID) error {
	return m.Called(ctx, scope, id).Error(0)
}

func (m *RouteRepository) AddDestination(ctx context.Context, scope uuid.UUID, dest *domain.Destination) error {
	return m.Called(ctx, scope, dest).Error(0)
}

func (m *RouteRepository) UpdateDestination(ctx context.Context, scope uuid.UUID, dest *domain.Destination) error {
	return m.Called(ctx, scope, dest).Error(0)
}

func (m *RouteRepository) DeleteDestination(ctx context.Context, scope, routeID, destID uuid.UUID) error {
	return m.Called(ctx, scope, routeID, destID).Error(0)
}

func (m *RouteRepository) ReorderDestinations(ctx context.Context, scope, routeID uuid.UUID, orderedIDs []uuid.UUID) error {
	return m.Called(ctx, scope, routeID, orderedIDs).Error(0)
}

// RiderRepository - мок repository.RiderRepository
type RiderRepository struct {
	mock.Mock
}

func (m *RiderRepository) Create(ctx context.Context, rider *domain.Rider) error {
	return m.Called(ctx, rider).Error(0)
}

func (m *RiderRepository) GetByID(ctx context.Context, scope, id uuid.UUID) (*domain.Rider, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rider), args.Error(1)
}

func (m *RiderRepository) List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Rider, error) {
	args := m.Called(ctx, scope, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Rider), args.Error(1)
}

func (m *RiderRepository) ListByIDs(ctx context.Context, scope uuid.UUID, ids []uuid.UUID) ([]*domain.Rider, error) {
	args := m.Called(ctx, scope, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Rider), args.Error(1)
}

func (m *RiderRepository) Update(ctx context.Context, rider *domain.Rider) error {
	return m.Called(ctx, rider).Error(0)
}

func (m *RiderRepository) Deactivate(ctx context.Context, scope, id uuid.UUID) error {
	return m.Called(ctx, scope, id).Error(0)
}

func (m *RiderRepository) AddAddress(ctx context.Context, scope uuid.UUID, addr *domain.Address) error {
	return m.Called(ctx, scope, addr).Error(0)
}

func (m *RiderRepository) UpdateAddress(ctx context.Context, scope uuid.UUID, addr *domain.Address) error {
	return m.Called(ctx, scope, addr).Error(0)
}

func (m *RiderRepository) DeleteAddress(ctx context.Context, scope, riderID, addressID uuid.UUID) error {
	return m.Called(ctx, scope, riderID, addressID).Error(0)
}

func (m *RiderRepository) SetPrimaryAddress(ctx context.Context, scope, riderID, addressID uuid.UUID) error {
	return m.Called(ctx, scope, riderID, addressID).Error(0)
}

// RecordRepository - мок repository.RecordRepository
type RecordRepository struct {
	mock.Mock
}

func (m *RecordRepository) Reconcile(ctx context.Context, record *domain.Record, seeds []*domain.Detail) (bool, error) {
	args := m.Called(ctx, record, seeds)
	return args.Bool(0), args.Error(1)
}

func (m *RecordRepository) GetByID(ctx context.Context, kind domain.RecordKind, scope, id uuid.UUID) (*domain.Record, error) {
	args := m.Called(ctx, kind, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *RecordRepository) List(ctx context.Context, filter domain.RecordFilter) ([]*domain.Record, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Record), args.Error(1)
}

func (m *RecordRepository) SetRecordField(ctx context.Context, record *domain.Record, field domain.RecordField) error {
	return m.Called(ctx, record, field).Error(0)
}

func (m *RecordRepository) SetDetailField(ctx context.Context, record *domain.Record, detail *domain.Detail, field domain.DetailField) error {
	return m.Called(ctx, record, detail, field).Error(0)
}

func (m *RecordRepository) Transition(ctx context.Context, record *domain.Record, from domain.RecordStatus) error {
	return m.Called(ctx, record, from).Error(0)
}

func (m *RecordRepository) Delete(ctx context.Context, kind domain.RecordKind, scope, id uuid.UUID) error {
	return m.Called(ctx, kind, scope, id).Error(0)
}

func (m *RecordRepository) LastEndOdometer(ctx context.Context, vehicleID uuid.UUID, onOrBefore time.Time) (*int, error) {
	args := m.Called(ctx, vehicleID, onOrBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int), args.Error(1)
}

// SessionRepository - мок repository.SessionRepository
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Save(ctx context.Context, session *domain.DriverSession, ttl time.Duration) error {
	return m.Called(ctx, session, ttl).Error(0)
}

func (m *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.DriverSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DriverSession), args.Error(1)
}

func (m *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// Publisher - мок публикатора событий
type Publisher struct {
	mock.Mock
}

func (m *Publisher) Publish(ctx context.Context, event domain.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *Publisher) Close() error {
	return m.Called().Error(0)
}
