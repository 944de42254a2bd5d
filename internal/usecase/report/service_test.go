package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/export"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/repository/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *mocks.RecordRepository, *mocks.VehicleRepository) {
	records := new(mocks.RecordRepository)
	vehicles := new(mocks.VehicleRepository)
	svc := NewService(records, vehicles, time.UTC, logger.NewNoop())
	svc.now = func() time.Time { return time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC) }
	return svc, records, vehicles
}

func kindFilter(scope uuid.UUID, kind domain.RecordKind) interface{} {
	return mock.MatchedBy(func(f domain.RecordFilter) bool {
		return f.ManagementCodeID == scope && f.Kind == kind && f.Limit == 0
	})
}

func TestService_Completion(t *testing.T) {
	ctx := context.Background()
	scope := uuid.New()

	t.Run("оба типа записей", func(t *testing.T) {
		svc, records, _ := newTestService()
		records.On("List", ctx, kindFilter(scope, domain.RecordKindDelivery)).
			Return([]*domain.Record{{ServiceDate: day("2024-05-01"), Status: domain.StatusCompleted}}, nil)
		records.On("List", ctx, kindFilter(scope, domain.RecordKindTransportation)).
			Return([]*domain.Record{{ServiceDate: day("2024-05-02"), Status: domain.StatusPending}}, nil)

		groups, err := svc.Completion(ctx, scope, &CompletionRequest{From: "2024-05-01", To: "2024-05-31"})
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, 2, groups[0].Total)
		assert.Equal(t, 50, groups[0].Rate)
		records.AssertExpectations(t)
	})

	t.Run("неизвестное измерение", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Completion(ctx, scope, &CompletionRequest{GroupBy: "weekday"})
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("конец периода раньше начала", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Completion(ctx, scope, &CompletionRequest{From: "2024-05-10", To: "2024-05-01"})
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("ошибка хранилища", func(t *testing.T) {
		svc, records, _ := newTestService()
		records.On("List", ctx, mock.Anything).Return(nil, errors.New("connection refused"))

		_, err := svc.Completion(ctx, scope, &CompletionRequest{Kind: "delivery"})
		assert.Error(t, err)
	})
}

func TestService_Dashboard(t *testing.T) {
	ctx := context.Background()
	scope := uuid.New()
	svc, records, vehicles := newTestService()

	today := day("2024-05-10")
	records.On("List", ctx, mock.MatchedBy(func(f domain.RecordFilter) bool {
		return f.From != nil && f.From.Equal(day("2024-05-01")) && f.To != nil && f.To.Equal(today)
	})).Return([]*domain.Record{{ServiceDate: today, Status: domain.StatusCompleted}}, nil)
	vehicles.On("List", ctx, scope, true).Return([]*domain.Vehicle{
		{ID: uuid.New(), Name: "Газель", CurrentOdometer: 20000, LastOilChangeOdometer: 15500},
	}, nil)

	dash, err := svc.Dashboard(ctx, scope)
	require.NoError(t, err)

	assert.Equal(t, 2, dash.TodayTotal)
	assert.Equal(t, 2, dash.TodayCompleted)
	assert.Equal(t, 100, dash.TodayRate)
	require.Len(t, dash.Vehicles, 1)
	assert.Equal(t, domain.OilStatusDueSoon, dash.Vehicles[0].Status)
	assert.Equal(t, 1, dash.OilCounts[domain.OilStatusDueSoon])
}

func TestService_Export(t *testing.T) {
	ctx := context.Background()
	scope := uuid.New()

	t.Run("csv с BOM и строкой заголовка", func(t *testing.T) {
		svc, records, _ := newTestService()
		records.On("List", ctx, kindFilter(scope, domain.RecordKindTransportation)).Return([]*domain.Record{
			{ServiceDate: day("2024-05-09"), DriverName: "Иванов, И.", Status: domain.StatusCompleted},
			{ServiceDate: day("2024-05-10"), DriverName: "Петров", Status: domain.StatusInProgress},
		}, nil)

		file, err := svc.Export(ctx, scope, &ExportRequest{Kind: domain.RecordKindTransportation})
		require.NoError(t, err)
		assert.Equal(t, "transportation_2024-05-10.csv", file.Filename)
		assert.Equal(t, export.FormatCSV, file.Format)

		var buf bytes.Buffer
		require.NoError(t, file.WriteTo(&buf))
		require.True(t, strings.HasPrefix(buf.String(), "\uFEFF"))

		rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\uFEFF"))).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, exportHeaders, rows[0])
		assert.Equal(t, "Иванов, И.", rows[1][1])
	})

	t.Run("xlsx", func(t *testing.T) {
		svc, records, _ := newTestService()
		records.On("List", ctx, mock.Anything).Return([]*domain.Record{}, nil)

		file, err := svc.Export(ctx, scope, &ExportRequest{Kind: domain.RecordKindDelivery, Format: "xlsx"})
		require.NoError(t, err)
		assert.Equal(t, "delivery_2024-05-10.xlsx", file.Filename)
	})

	t.Run("неизвестный формат", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Export(ctx, scope, &ExportRequest{Kind: domain.RecordKindDelivery, Format: "pdf"})
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("неизвестный тип", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Export(ctx, scope, &ExportRequest{Kind: "taxi"})
		assert.ErrorIs(t, err, domain.ErrInvalidRecordKind)
	})
}
