package http

import (
	"context"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/usecase/auth"
	"github.com/frontandrew/caretrip/internal/usecase/record"
	"github.com/frontandrew/caretrip/internal/usecase/report"
	"github.com/frontandrew/caretrip/internal/usecase/vehicle"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAuthService - мок для auth service
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.LoginResponse), args.Error(1)
}

func (m *MockAuthService) DriverLogin(ctx context.Context, req *auth.DriverLoginRequest) (*auth.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.LoginResponse), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, req *auth.RefreshTokenRequest) (*auth.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.LoginResponse), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, principal *domain.Principal, req *auth.LogoutRequest) error {
	return m.Called(ctx, principal, req).Error(0)
}

func (m *MockAuthService) LoginOptions(ctx context.Context, code string) (*domain.LoginOptions, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoginOptions), args.Error(1)
}

func (m *MockAuthService) Session(ctx context.Context, principal *domain.Principal) (*domain.DriverSession, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DriverSession), args.Error(1)
}

func (m *MockAuthService) UpdateSession(ctx context.Context, principal *domain.Principal, req *auth.UpdateSessionRequest) (*domain.DriverSession, error) {
	args := m.Called(ctx, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DriverSession), args.Error(1)
}

// MockVehicleService - мок для vehicle service
type MockVehicleService struct {
	mock.Mock
}

func (m *MockVehicleService) CreateVehicle(ctx context.Context, scope uuid.UUID, req *vehicle.CreateVehicleRequest) (*domain.Vehicle, error) {
	args := m.Called(ctx, scope, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleService) GetVehicleByID(ctx context.Context, scope, id uuid.UUID) (*domain.Vehicle, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleService) ListVehicles(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Vehicle, error) {
	args := m.Called(ctx, scope, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleService) UpdateVehicle(ctx context.Context, scope, id uuid.UUID, req *vehicle.UpdateVehicleRequest) (*domain.Vehicle, error) {
	args := m.Called(ctx, scope, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleService) DeactivateVehicle(ctx context.Context, scope, id uuid.UUID) error {
	return m.Called(ctx, scope, id).Error(0)
}

func (m *MockVehicleService) RecordOilChange(ctx context.Context, scope, id uuid.UUID, req *vehicle.OilChangeRequest) (*domain.Vehicle, error) {
	args := m.Called(ctx, scope, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleService) OilStatuses(ctx context.Context, scope uuid.UUID) ([]domain.VehicleOilSummary, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VehicleOilSummary), args.Error(1)
}

// MockRecordService - мок для record service
type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) Reconcile(ctx context.Context, p *domain.Principal, kind domain.RecordKind, req *record.ReconcileRequest) (*record.ReconcileResult, error) {
	args := m.Called(ctx, p, kind, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*record.ReconcileResult), args.Error(1)
}

func (m *MockRecordService) Plan(ctx context.Context, p *domain.Principal, kind domain.RecordKind, req *record.PlanRequest) (*record.ReconcileResult, error) {
	args := m.Called(ctx, p, kind, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*record.ReconcileResult), args.Error(1)
}

func (m *MockRecordService) Get(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID) (*domain.Record, error) {
	args := m.Called(ctx, p, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockRecordService) List(ctx context.Context, p *domain.Principal, filter domain.RecordFilter) ([]*domain.Record, error) {
	args := m.Called(ctx, p, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Record), args.Error(1)
}

func (m *MockRecordService) Today(ctx context.Context, p *domain.Principal) ([]*domain.Record, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Record), args.Error(1)
}

func (m *MockRecordService) Start(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID, req *record.ClockRequest) (*domain.Record, error) {
	args := m.Called(ctx, p, kind, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockRecordService) Complete(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID, req *record.ClockRequest) (*record.UpdateResult, error) {
	args := m.Called(ctx, p, kind, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*record.UpdateResult), args.Error(1)
}

func (m *MockRecordService) UpdateRecordField(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID, req *record.FieldUpdateRequest) (*record.UpdateResult, error) {
	args := m.Called(ctx, p, kind, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*record.UpdateResult), args.Error(1)
}

func (m *MockRecordService) UpdateDetailField(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id, detailID uuid.UUID, req *record.FieldUpdateRequest) (*record.UpdateResult, error) {
	args := m.Called(ctx, p, kind, id, detailID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*record.UpdateResult), args.Error(1)
}

func (m *MockRecordService) Cancel(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID, req *record.CancelRequest) (*domain.Record, error) {
	args := m.Called(ctx, p, kind, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockRecordService) Delete(ctx context.Context, p *domain.Principal, kind domain.RecordKind, id uuid.UUID) error {
	return m.Called(ctx, p, kind, id).Error(0)
}

// MockReportService - мок для report service
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Completion(ctx context.Context, scope uuid.UUID, req *report.CompletionRequest) ([]domain.CompletionGroup, error) {
	args := m.Called(ctx, scope, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompletionGroup), args.Error(1)
}

func (m *MockReportService) RoutePerformance(ctx context.Context, scope uuid.UUID) ([]domain.RoutePerformance, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoutePerformance), args.Error(1)
}

func (m *MockReportService) Dashboard(ctx context.Context, scope uuid.UUID) (*domain.Dashboard, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dashboard), args.Error(1)
}

func (m *MockReportService) Export(ctx context.Context, scope uuid.UUID, req *report.ExportRequest) (*report.ExportFile, error) {
	args := m.Called(ctx, scope, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.ExportFile), args.Error(1)
}
