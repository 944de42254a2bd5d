package driver

import (
	"context"
	"testing"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/hash"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/repository/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() (*Service, *mocks.DriverRepository, *hash.Hasher) {
	svc, repo, _, hasher := newTestServiceWithTokens()
	return svc, repo, hasher
}

func newTestServiceWithTokens() (*Service, *mocks.DriverRepository, *mocks.RefreshTokenRepository, *hash.Hasher) {
	repo := new(mocks.DriverRepository)
	tokens := new(mocks.RefreshTokenRepository)
	hasher := hash.NewHasher(bcrypt.MinCost)
	return NewService(repo, tokens, hasher, logger.NewNoop()), repo, tokens, hasher
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	scope := uuid.New()

	tests := []struct {
		name      string
		req       *CreateDriverRequest
		mockSetup func(*mocks.DriverRepository)
		wantErr   error
	}{
		{
			name: "успешное создание",
			req:  &CreateDriverRequest{FullName: "Иванов И.", EmployeeNumber: " d-01 ", Password: "secret1"},
			mockSetup: func(m *mocks.DriverRepository) {
				m.On("Create", ctx, mock.MatchedBy(func(d *domain.Driver) bool {
					return d.EmployeeNumber == "D-01" && d.ManagementCodeID == scope && d.PasswordHash != ""
				})).Return(nil)
			},
		},
		{
			name: "табельный номер занят",
			req:  &CreateDriverRequest{FullName: "Иванов И.", EmployeeNumber: "D-01", Password: "secret1"},
			mockSetup: func(m *mocks.DriverRepository) {
				m.On("Create", ctx, mock.Anything).Return(domain.ErrDriverAlreadyExists)
			},
			wantErr: domain.ErrDriverAlreadyExists,
		},
		{
			name:    "короткий пароль",
			req:     &CreateDriverRequest{FullName: "Иванов И.", EmployeeNumber: "D-01", Password: "123"},
			wantErr: domain.ErrInvalidPassword,
		},
		{
			name:    "пустое имя",
			req:     &CreateDriverRequest{FullName: "  ", EmployeeNumber: "D-01", Password: "secret1"},
			wantErr: domain.ErrInvalidDriverData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService()
			if tt.mockSetup != nil {
				tt.mockSetup(repo)
			}

			driver, err := svc.Create(ctx, scope, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, driver.IsActive)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Update_PartialFields(t *testing.T) {
	ctx := context.Background()
	scope, id := uuid.New(), uuid.New()
	svc, repo, _ := newTestService()

	existing := &domain.Driver{ID: id, ManagementCodeID: scope, FullName: "Иванов", EmployeeNumber: "D-01", Phone: "111", IsActive: true}
	repo.On("GetByID", ctx, scope, id).Return(existing, nil)
	repo.On("Update", ctx, existing).Return(nil)

	phone := "222"
	driver, err := svc.Update(ctx, scope, id, &UpdateDriverRequest{Phone: &phone})
	require.NoError(t, err)

	assert.Equal(t, "Иванов", driver.FullName)
	assert.Equal(t, "222", driver.Phone)
}

func TestService_Get_OtherScope(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()
	scope, id := uuid.New(), uuid.New()

	repo.On("GetByID", ctx, scope, id).Return(nil, domain.ErrDriverNotFound)

	_, err := svc.Get(ctx, scope, id)
	assert.ErrorIs(t, err, domain.ErrDriverNotFound)
}

func TestService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	svc, repo, tokens, hasher := newTestServiceWithTokens()
	scope, id := uuid.New(), uuid.New()

	existing := &domain.Driver{ID: id, ManagementCodeID: scope, FullName: "Иванов", EmployeeNumber: "D-01"}
	repo.On("GetByID", ctx, scope, id).Return(existing, nil)
	repo.On("Update", ctx, existing).Return(nil)
	tokens.On("RevokeAllForSubject", ctx, id).Return(nil)

	require.NoError(t, svc.ResetPassword(ctx, scope, id, &ResetPasswordRequest{Password: "newpass"}))
	assert.True(t, hasher.Check(existing.PasswordHash, "newpass"))
	tokens.AssertExpectations(t)
}

func TestService_Deactivate_RevokesTokens(t *testing.T) {
	ctx := context.Background()
	scope, id := uuid.New(), uuid.New()

	t.Run("токены отозваны", func(t *testing.T) {
		svc, repo, tokens, _ := newTestServiceWithTokens()
		repo.On("Deactivate", ctx, scope, id).Return(nil)
		tokens.On("RevokeAllForSubject", ctx, id).Return(nil)

		require.NoError(t, svc.Deactivate(ctx, scope, id))
		tokens.AssertExpectations(t)
	})

	t.Run("водитель не найден", func(t *testing.T) {
		svc, repo, tokens, _ := newTestServiceWithTokens()
		repo.On("Deactivate", ctx, scope, id).Return(domain.ErrDriverNotFound)

		assert.ErrorIs(t, svc.Deactivate(ctx, scope, id), domain.ErrDriverNotFound)
		tokens.AssertNotCalled(t, "RevokeAllForSubject", mock.Anything, mock.Anything)
	})

	t.Run("выключение через обновление", func(t *testing.T) {
		svc, repo, tokens, _ := newTestServiceWithTokens()
		existing := &domain.Driver{ID: id, ManagementCodeID: scope, FullName: "Иванов", EmployeeNumber: "D-01", IsActive: true}
		repo.On("GetByID", ctx, scope, id).Return(existing, nil)
		repo.On("Update", ctx, existing).Return(nil)
		tokens.On("RevokeAllForSubject", ctx, id).Return(nil)

		inactive := false
		driver, err := svc.Update(ctx, scope, id, &UpdateDriverRequest{IsActive: &inactive})
		require.NoError(t, err)
		assert.False(t, driver.IsActive)
		tokens.AssertExpectations(t)
	})
}
