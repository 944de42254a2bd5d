package auth

import (
	"context"
	"testing"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/hash"
	"github.com/frontandrew/caretrip/internal/pkg/jwt"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/repository/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type fakeResolver struct {
	code *domain.ManagementCode
	err  error
}

func (f *fakeResolver) ResolveCode(_ context.Context, _ string) (*domain.ManagementCode, error) {
	return f.code, f.err
}

type testEnv struct {
	svc      *Service
	tokens   *jwt.TokenService
	hasher   *hash.Hasher
	admins   *mocks.AdminRepository
	refresh  *mocks.RefreshTokenRepository
	codes    *mocks.ManagementCodeRepository
	drivers  *mocks.DriverRepository
	vehicles *mocks.VehicleRepository
	riders   *mocks.RiderRepository
	routes   *mocks.RouteRepository
	records  *mocks.RecordRepository
	sessions *mocks.SessionRepository
	resolver *fakeResolver
	scope    uuid.UUID
}

func newTestEnv() *testEnv {
	env := &testEnv{
		tokens:   jwt.NewTokenService(testSecret, 15*time.Minute, 24*time.Hour),
		hasher:   hash.NewHasher(bcrypt.MinCost),
		admins:   new(mocks.AdminRepository),
		refresh:  new(mocks.RefreshTokenRepository),
		codes:    new(mocks.ManagementCodeRepository),
		drivers:  new(mocks.DriverRepository),
		vehicles: new(mocks.VehicleRepository),
		riders:   new(mocks.RiderRepository),
		routes:   new(mocks.RouteRepository),
		records:  new(mocks.RecordRepository),
		sessions: new(mocks.SessionRepository),
		scope:    uuid.New(),
	}
	env.resolver = &fakeResolver{code: &domain.ManagementCode{ID: env.scope, Code: "ABC234", IsActive: true}}

	env.svc = NewService(Repositories{
		Admins:   env.admins,
		Tokens:   env.refresh,
		Codes:    env.codes,
		Drivers:  env.drivers,
		Vehicles: env.vehicles,
		Riders:   env.riders,
		Routes:   env.routes,
		Records:  env.records,
		Sessions: env.sessions,
	}, env.resolver, env.tokens, env.hasher, time.UTC, logger.NewNoop())

	return env
}

func (env *testEnv) mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := env.hasher.Hash(password)
	require.NoError(t, err)
	return h
}

func TestService_Login(t *testing.T) {
	env := newTestEnv()
	scope := env.scope
	admin := &domain.Admin{
		ID:               uuid.New(),
		ManagementCodeID: &scope,
		Email:            "admin@example.com",
		PasswordHash:     env.mustHash(t, "secret123"),
		FullName:         "Админ",
		Role:             domain.RoleAdmin,
		IsActive:         true,
	}

	env.admins.On("GetByEmail", mock.Anything, "admin@example.com").Return(admin, nil)
	env.refresh.On("Create", mock.Anything, mock.AnythingOfType("*domain.RefreshToken")).Return(nil)
	env.admins.On("UpdateLastLogin", mock.Anything, admin.ID, mock.Anything).Return(nil)

	resp, err := env.svc.Login(context.Background(), &LoginRequest{Email: " Admin@Example.com", Password: "secret123"})
	require.NoError(t, err)

	principal, err := env.svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, principal.SubjectID)
	assert.Equal(t, domain.RoleAdmin, principal.Role)
	require.NotNil(t, principal.ManagementCodeID)
	assert.Equal(t, scope, *principal.ManagementCodeID)

	env.refresh.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(rt *domain.RefreshToken) bool {
		return rt.TokenHash == jwt.HashToken(resp.RefreshToken) && rt.SubjectID == admin.ID
	}))
}

func TestService_Login_Failures(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(*testEnv, *testing.T)
		password  string
		wantErr   error
	}{
		{
			name: "администратор не найден",
			mockSetup: func(env *testEnv, _ *testing.T) {
				env.admins.On("GetByEmail", mock.Anything, "admin@example.com").Return(nil, domain.ErrAdminNotFound)
			},
			password: "secret123",
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name: "неверный пароль",
			mockSetup: func(env *testEnv, t *testing.T) {
				env.admins.On("GetByEmail", mock.Anything, "admin@example.com").Return(&domain.Admin{
					ID: uuid.New(), Email: "admin@example.com", Role: domain.RoleSuperAdmin,
					PasswordHash: env.mustHash(t, "secret123"), IsActive: true,
				}, nil)
			},
			password: "wrong-password",
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name: "учетная запись выключена",
			mockSetup: func(env *testEnv, t *testing.T) {
				env.admins.On("GetByEmail", mock.Anything, "admin@example.com").Return(&domain.Admin{
					ID: uuid.New(), Email: "admin@example.com", Role: domain.RoleSuperAdmin,
					PasswordHash: env.mustHash(t, "secret123"), IsActive: false,
				}, nil)
			},
			password: "secret123",
			wantErr:  domain.ErrAccountInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			tt.mockSetup(env, t)

			_, err := env.svc.Login(context.Background(), &LoginRequest{Email: "admin@example.com", Password: tt.password})
			assert.ErrorIs(t, err, tt.wantErr)
			env.refresh.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_DriverLogin(t *testing.T) {
	env := newTestEnv()
	driver := &domain.Driver{
		ID:               uuid.New(),
		ManagementCodeID: env.scope,
		FullName:         "Иванов И.",
		EmployeeNumber:   "EMP01",
		PasswordHash:     env.mustHash(t, "driver1"),
		IsActive:         true,
	}
	vehicle := &domain.Vehicle{ID: uuid.New(), ManagementCodeID: env.scope, Name: "Газель", CurrentOdometer: 15000, IsActive: true}
	riderA, riderB := uuid.New(), uuid.New()
	lastEnd := 15230

	env.drivers.On("GetByEmployeeNumber", mock.Anything, env.scope, "EMP01").Return(driver, nil)
	env.vehicles.On("GetByID", mock.Anything, env.scope, vehicle.ID).Return(vehicle, nil)
	env.riders.On("ListByIDs", mock.Anything, env.scope, []uuid.UUID{riderA, riderB}).
		Return([]*domain.Rider{{ID: riderA}, {ID: riderB}}, nil)
	env.records.On("LastEndOdometer", mock.Anything, vehicle.ID, mock.Anything).Return(&lastEnd, nil)
	env.sessions.On("Save", mock.Anything, mock.AnythingOfType("*domain.DriverSession"), 24*time.Hour).Return(nil)
	env.refresh.On("Create", mock.Anything, mock.AnythingOfType("*domain.RefreshToken")).Return(nil)

	resp, err := env.svc.DriverLogin(context.Background(), &DriverLoginRequest{
		Code:           "abc234",
		EmployeeNumber: "emp 01",
		Password:       "driver1",
		VehicleID:      vehicle.ID,
		RiderIDs:       []uuid.UUID{riderA, riderB, riderA},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Session)
	assert.Equal(t, 15230, resp.Session.StartOdometer)
	assert.Equal(t, []uuid.UUID{riderA, riderB}, resp.Session.RiderIDs)
	assert.Equal(t, "Газель", resp.Session.VehicleName)

	principal, err := env.svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, principal.IsDriver())
	require.NotNil(t, principal.SessionID)
	assert.Equal(t, resp.Session.ID, *principal.SessionID)
	assert.Equal(t, env.scope, *principal.ManagementCodeID)

	env.refresh.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(rt *domain.RefreshToken) bool {
		return rt.SessionID != nil && *rt.SessionID == resp.Session.ID
	}))
}

func TestService_DriverLogin_Failures(t *testing.T) {
	vehicleID := uuid.New()

	tests := []struct {
		name      string
		mockSetup func(*testEnv, *testing.T)
		riders    []uuid.UUID
		wantErr   error
	}{
		{
			name: "машина другого кода",
			mockSetup: func(env *testEnv, t *testing.T) {
				env.drivers.On("GetByEmployeeNumber", mock.Anything, env.scope, "EMP01").Return(&domain.Driver{
					ID: uuid.New(), ManagementCodeID: env.scope, PasswordHash: env.mustHash(t, "driver1"), IsActive: true,
				}, nil)
				env.vehicles.On("GetByID", mock.Anything, env.scope, vehicleID).Return(nil, domain.ErrVehicleNotFound)
			},
			wantErr: domain.ErrVehicleNotFound,
		},
		{
			name: "пассажир другого кода",
			mockSetup: func(env *testEnv, t *testing.T) {
				env.drivers.On("GetByEmployeeNumber", mock.Anything, env.scope, "EMP01").Return(&domain.Driver{
					ID: uuid.New(), ManagementCodeID: env.scope, PasswordHash: env.mustHash(t, "driver1"), IsActive: true,
				}, nil)
				env.vehicles.On("GetByID", mock.Anything, env.scope, vehicleID).Return(&domain.Vehicle{ID: vehicleID, IsActive: true}, nil)
				env.riders.On("ListByIDs", mock.Anything, env.scope, mock.Anything).Return([]*domain.Rider{}, nil)
			},
			riders:  []uuid.UUID{uuid.New()},
			wantErr: domain.ErrRiderNotFound,
		},
		{
			name: "неизвестный табельный номер",
			mockSetup: func(env *testEnv, _ *testing.T) {
				env.drivers.On("GetByEmployeeNumber", mock.Anything, env.scope, "EMP01").Return(nil, domain.ErrDriverNotFound)
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name: "выключенный код управления",
			mockSetup: func(env *testEnv, _ *testing.T) {
				env.resolver.code = nil
				env.resolver.err = domain.ErrManagementCodeInactive
			},
			wantErr: domain.ErrManagementCodeInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			tt.mockSetup(env, t)

			_, err := env.svc.DriverLogin(context.Background(), &DriverLoginRequest{
				Code:           "ABC234",
				EmployeeNumber: "EMP01",
				Password:       "driver1",
				VehicleID:      vehicleID,
				RiderIDs:       tt.riders,
			})
			assert.ErrorIs(t, err, tt.wantErr)
			env.sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_Refresh_RotatesToken(t *testing.T) {
	env := newTestEnv()
	admin := &domain.Admin{ID: uuid.New(), Email: "root@example.com", Role: domain.RoleSuperAdmin, IsActive: true}

	pair, err := env.tokens.GenerateTokenPair(admin.Principal())
	require.NoError(t, err)
	oldHash := jwt.HashToken(pair.RefreshToken)

	env.refresh.On("GetByTokenHash", mock.Anything, oldHash).Return(&domain.RefreshToken{
		SubjectID: admin.ID, TokenHash: oldHash, ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	env.admins.On("GetByID", mock.Anything, admin.ID).Return(admin, nil)
	env.refresh.On("Revoke", mock.Anything, oldHash).Return(nil)
	env.refresh.On("Create", mock.Anything, mock.AnythingOfType("*domain.RefreshToken")).Return(nil)

	resp, err := env.svc.Refresh(context.Background(), &RefreshTokenRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)

	assert.NotEqual(t, pair.RefreshToken, resp.RefreshToken)
	env.refresh.AssertCalled(t, "Revoke", mock.Anything, oldHash)
}

func TestService_Refresh_ManagementCodeState(t *testing.T) {
	tests := []struct {
		name    string
		code    *domain.ManagementCode
		codeErr error
		wantErr error
	}{
		{name: "код активен", code: &domain.ManagementCode{IsActive: true}},
		{name: "код выключен", code: &domain.ManagementCode{IsActive: false}, wantErr: domain.ErrManagementCodeInactive},
		{name: "код удален", codeErr: domain.ErrManagementCodeNotFound, wantErr: domain.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			admin := &domain.Admin{ID: uuid.New(), Role: domain.RoleAdmin, ManagementCodeID: &env.scope, IsActive: true}
			if tt.code != nil {
				tt.code.ID = env.scope
			}

			pair, err := env.tokens.GenerateTokenPair(admin.Principal())
			require.NoError(t, err)
			oldHash := jwt.HashToken(pair.RefreshToken)

			env.refresh.On("GetByTokenHash", mock.Anything, oldHash).Return(&domain.RefreshToken{
				SubjectID: admin.ID, TokenHash: oldHash, ExpiresAt: time.Now().Add(time.Hour),
			}, nil)
			env.admins.On("GetByID", mock.Anything, admin.ID).Return(admin, nil)
			env.codes.On("GetByID", mock.Anything, env.scope).Return(tt.code, tt.codeErr)
			env.refresh.On("Revoke", mock.Anything, oldHash).Return(nil)
			env.refresh.On("Create", mock.Anything, mock.AnythingOfType("*domain.RefreshToken")).Return(nil)

			resp, err := env.svc.Refresh(context.Background(), &RefreshTokenRequest{RefreshToken: pair.RefreshToken})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				env.refresh.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
				env.refresh.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, resp.RefreshToken)
		})
	}
}

func TestService_Refresh_RevokedToken(t *testing.T) {
	env := newTestEnv()
	admin := &domain.Admin{ID: uuid.New(), Role: domain.RoleSuperAdmin, IsActive: true}

	pair, err := env.tokens.GenerateTokenPair(admin.Principal())
	require.NoError(t, err)
	revokedAt := time.Now().Add(-time.Minute)

	env.refresh.On("GetByTokenHash", mock.Anything, jwt.HashToken(pair.RefreshToken)).Return(&domain.RefreshToken{
		SubjectID: admin.ID, ExpiresAt: time.Now().Add(time.Hour), RevokedAt: &revokedAt,
	}, nil)

	_, err = env.svc.Refresh(context.Background(), &RefreshTokenRequest{RefreshToken: pair.RefreshToken})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	env.refresh.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
}

func TestService_Refresh_RejectsAccessToken(t *testing.T) {
	env := newTestEnv()
	pair, err := env.tokens.GenerateTokenPair(domain.Principal{SubjectID: uuid.New(), Role: domain.RoleSuperAdmin})
	require.NoError(t, err)

	_, err = env.svc.Refresh(context.Background(), &RefreshTokenRequest{RefreshToken: pair.AccessToken})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestService_Logout(t *testing.T) {
	env := newTestEnv()
	sessionID := uuid.New()
	principal := &domain.Principal{SubjectID: uuid.New(), Role: domain.RoleDriver, SessionID: &sessionID}

	env.refresh.On("Revoke", mock.Anything, jwt.HashToken("refresh")).Return(domain.ErrInvalidToken)
	env.refresh.On("RevokeSession", mock.Anything, sessionID).Return(nil)
	env.sessions.On("Delete", mock.Anything, sessionID).Return(nil)

	require.NoError(t, env.svc.Logout(context.Background(), principal, &LogoutRequest{RefreshToken: "refresh"}))
	env.sessions.AssertExpectations(t)
	env.refresh.AssertExpectations(t)
}

func TestService_Logout_WithoutToken(t *testing.T) {
	env := newTestEnv()
	sessionID := uuid.New()
	principal := &domain.Principal{SubjectID: uuid.New(), Role: domain.RoleDriver, SessionID: &sessionID}

	env.refresh.On("RevokeSession", mock.Anything, sessionID).Return(nil)
	env.sessions.On("Delete", mock.Anything, sessionID).Return(nil)

	require.NoError(t, env.svc.Logout(context.Background(), principal, &LogoutRequest{}))
	env.refresh.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
	env.refresh.AssertExpectations(t)
}

func TestService_Session_OtherDriver(t *testing.T) {
	env := newTestEnv()
	sessionID := uuid.New()
	principal := &domain.Principal{SubjectID: uuid.New(), Role: domain.RoleDriver, SessionID: &sessionID}

	env.sessions.On("Get", mock.Anything, sessionID).Return(&domain.DriverSession{ID: sessionID, DriverID: uuid.New()}, nil)

	_, err := env.svc.Session(context.Background(), principal)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestService_BootstrapSuperAdmin(t *testing.T) {
	t.Run("создает при отсутствии", func(t *testing.T) {
		env := newTestEnv()
		env.admins.On("CountByRole", mock.Anything, domain.RoleSuperAdmin).Return(0, nil)
		env.admins.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Admin) bool {
			return a.Role == domain.RoleSuperAdmin && a.ManagementCodeID == nil && a.PasswordHash != ""
		})).Return(nil)

		created, err := env.svc.BootstrapSuperAdmin(context.Background(), "root@example.com", "secret123")
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("пропускает при наличии", func(t *testing.T) {
		env := newTestEnv()
		env.admins.On("CountByRole", mock.Anything, domain.RoleSuperAdmin).Return(1, nil)

		created, err := env.svc.BootstrapSuperAdmin(context.Background(), "root@example.com", "secret123")
		require.NoError(t, err)
		assert.False(t, created)
		env.admins.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_LoginOptions(t *testing.T) {
	env := newTestEnv()
	driverID, vehicleID := uuid.New(), uuid.New()

	env.drivers.On("List", mock.Anything, env.scope, true).Return([]*domain.Driver{{ID: driverID, FullName: "Иванов"}}, nil)
	env.vehicles.On("List", mock.Anything, env.scope, true).Return([]*domain.Vehicle{{ID: vehicleID, Name: "Газель", LicensePlate: "А123ВС77"}}, nil)
	env.riders.On("List", mock.Anything, env.scope, true).Return([]*domain.Rider{}, nil)
	env.routes.On("List", mock.Anything, env.scope, true).Return([]*domain.Route{}, nil)

	opts, err := env.svc.LoginOptions(context.Background(), "ABC234")
	require.NoError(t, err)

	assert.Equal(t, []domain.NamedItem{{ID: driverID, Name: "Иванов"}}, opts.Drivers)
	assert.Equal(t, "Газель (А123ВС77)", opts.Vehicles[0].Name)
	assert.Empty(t, opts.Riders)
}
