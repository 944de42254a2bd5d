package vehicle

import (
	"context"
	"testing"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/repository/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *mocks.VehicleRepository) {
	repo := new(mocks.VehicleRepository)
	return NewService(repo, logger.NewNoop()), repo
}

func TestService_CreateVehicle(t *testing.T) {
	ctx := context.Background()
	scope := uuid.New()
	svc, repo := newTestService()

	repo.On("Create", ctx, mock.MatchedBy(func(v *domain.Vehicle) bool {
		return v.LicensePlate == "А123ВС77" && v.LastOilChangeOdometer == 12000 && v.FuelType == domain.FuelGasoline
	})).Return(nil)

	vehicle, err := svc.CreateVehicle(ctx, scope, &CreateVehicleRequest{
		Name:            "Газель",
		LicensePlate:    "а123вс 77",
		Capacity:        8,
		CurrentOdometer: 12000,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OilStatusNormal, vehicle.OilStatus())
	repo.AssertExpectations(t)
}

func TestService_CreateVehicle_Duplicate(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	repo.On("Create", ctx, mock.Anything).Return(domain.ErrVehicleAlreadyExists)

	_, err := svc.CreateVehicle(ctx, uuid.New(), &CreateVehicleRequest{Name: "Газель", LicensePlate: "А123ВС77"})
	assert.ErrorIs(t, err, domain.ErrVehicleAlreadyExists)
}

func TestService_RecordOilChange(t *testing.T) {
	ctx := context.Background()
	scope, id := uuid.New(), uuid.New()
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	t.Run("на текущем пробеге", func(t *testing.T) {
		svc, repo := newTestService()
		svc.now = func() time.Time { return now }

		repo.On("GetByID", ctx, scope, id).Return(&domain.Vehicle{ID: id, CurrentOdometer: 20000, LastOilChangeOdometer: 15000}, nil)
		repo.On("RecordOilChange", ctx, scope, id, 20000, now).
			Return(&domain.Vehicle{ID: id, CurrentOdometer: 20000, LastOilChangeOdometer: 20000}, nil)

		v, err := svc.RecordOilChange(ctx, scope, id, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, v.KmSinceOilChange())
	})

	t.Run("пробег меньше прошлой замены", func(t *testing.T) {
		svc, repo := newTestService()
		repo.On("GetByID", ctx, scope, id).Return(&domain.Vehicle{ID: id, CurrentOdometer: 20000, LastOilChangeOdometer: 15000}, nil)

		km := 14000
		_, err := svc.RecordOilChange(ctx, scope, id, &OilChangeRequest{Odometer: &km})
		assert.ErrorIs(t, err, domain.ErrInvalidOdometer)
		repo.AssertNotCalled(t, "RecordOilChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOilSummaries(t *testing.T) {
	vehicles := []*domain.Vehicle{
		{ID: uuid.New(), Name: "A", CurrentOdometer: 10000, LastOilChangeOdometer: 9000},
		{ID: uuid.New(), Name: "B", CurrentOdometer: 14500, LastOilChangeOdometer: 10000},
		{ID: uuid.New(), Name: "C", CurrentOdometer: 20000, LastOilChangeOdometer: 10000},
	}

	summaries := OilSummaries(vehicles)
	require.Len(t, summaries, 3)
	assert.Equal(t, domain.OilStatusNormal, summaries[0].Status)
	assert.Equal(t, domain.OilStatusDueSoon, summaries[1].Status)
	assert.Equal(t, 4500, summaries[1].KmSinceOilChange)
	assert.Equal(t, domain.OilStatusNeedsChange, summaries[2].Status)
}
