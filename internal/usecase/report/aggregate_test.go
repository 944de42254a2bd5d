package report

import (
	"testing"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func clock(s string) *string { return &s }

func km(v int) *int { return &v }

func TestGroupCompletion(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	records := []*domain.Record{
		{DriverID: alice, DriverName: "Алиса", ServiceDate: day("2024-05-02"), Status: domain.StatusCompleted},
		{DriverID: alice, DriverName: "Алиса", ServiceDate: day("2024-05-03"), Status: domain.StatusInProgress},
		{DriverID: alice, DriverName: "Алиса", ServiceDate: day("2024-05-04"), Status: domain.StatusCompleted},
		{DriverID: alice, DriverName: "Алиса", ServiceDate: day("2024-05-05"), Status: domain.StatusCancelled},
		{DriverID: bob, DriverName: "Борис", ServiceDate: day("2024-05-02"), Status: domain.StatusPending},
		{DriverID: alice, DriverName: "Алиса", ServiceDate: day("2024-06-01"), Status: domain.StatusCompleted},
	}

	t.Run("по водителю и месяцу", func(t *testing.T) {
		groups := GroupCompletion(records, domain.GroupByDriver)
		require.Len(t, groups, 3)

		assert.Equal(t, "2024-05", groups[0].Month)
		assert.Equal(t, "Алиса", groups[0].Label)
		assert.Equal(t, 3, groups[0].Total)
		assert.Equal(t, 2, groups[0].Completed)
		assert.Equal(t, 67, groups[0].Rate)

		assert.Equal(t, "Борис", groups[1].Label)
		assert.Equal(t, 0, groups[1].Rate)

		assert.Equal(t, "2024-06", groups[2].Month)
		assert.Equal(t, 100, groups[2].Rate)
	})

	t.Run("по месяцу", func(t *testing.T) {
		groups := GroupCompletion(records, domain.GroupByMonth)
		require.Len(t, groups, 2)
		assert.Equal(t, "2024-05", groups[0].Key)
		assert.Equal(t, 4, groups[0].Total)
		assert.Equal(t, 50, groups[0].Rate)
	})

	t.Run("маршрут не указан", func(t *testing.T) {
		groups := GroupCompletion(records[:1], domain.GroupByRoute)
		require.Len(t, groups, 1)
		assert.Equal(t, noRouteLabel, groups[0].Label)
	})

	t.Run("пустой список", func(t *testing.T) {
		assert.Empty(t, GroupCompletion(nil, domain.GroupByVehicle))
	})
}

func TestBuildRoutePerformance(t *testing.T) {
	today := day("2024-05-10")
	morning, evening := uuid.New(), uuid.New()

	records := []*domain.Record{
		{RouteID: &morning, RouteName: "Утренний", ServiceDate: day("2024-05-02"), Status: domain.StatusCompleted, StartTime: clock("08:00"), EndTime: clock("08:40")},
		{RouteID: &morning, RouteName: "Утренний", ServiceDate: day("2024-05-03"), Status: domain.StatusCompleted, StartTime: clock("08:00"), EndTime: clock("08:40")},
		{RouteID: &morning, RouteName: "Утренний", ServiceDate: today, Status: domain.StatusCompleted, StartTime: clock("08:00"), EndTime: clock("09:00")},
		// Не входят в расчет
		{RouteID: &morning, RouteName: "Утренний", ServiceDate: today, Status: domain.StatusInProgress, StartTime: clock("08:00")},
		{RouteID: &morning, RouteName: "Утренний", ServiceDate: day("2024-04-30"), Status: domain.StatusCompleted, StartTime: clock("08:00"), EndTime: clock("10:00")},
		{ServiceDate: today, Status: domain.StatusCompleted, StartTime: clock("08:00"), EndTime: clock("09:00")},
		// Через полночь: 23:30 -> 00:15
		{RouteID: &evening, RouteName: "Вечерний", ServiceDate: day("2024-05-04"), Status: domain.StatusCompleted, StartTime: clock("23:30"), EndTime: clock("00:15")},
	}

	perf := BuildRoutePerformance(records, today)
	require.Len(t, perf, 2)

	evening1 := perf[0]
	assert.Equal(t, "Вечерний", evening1.RouteName)
	assert.InDelta(t, 45, evening1.MonthAvgMinutes, 0.001)
	assert.Nil(t, evening1.TodayAvgMinutes)
	assert.Nil(t, evening1.DeviationPercent)

	m := perf[1]
	assert.Equal(t, morning, m.RouteID)
	assert.Equal(t, 3, m.MonthSamples)
	assert.InDelta(t, 140.0/3, m.MonthAvgMinutes, 0.001)
	require.NotNil(t, m.TodayAvgMinutes)
	assert.InDelta(t, 60, *m.TodayAvgMinutes, 0.001)
	require.NotNil(t, m.DiffMinutes)
	assert.InDelta(t, 60-140.0/3, *m.DiffMinutes, 0.001)
	require.NotNil(t, m.DeviationPercent)
	assert.Equal(t, 29, *m.DeviationPercent)
}

func TestBuildDashboard(t *testing.T) {
	today := day("2024-05-10")
	records := []*domain.Record{
		{ServiceDate: today, Status: domain.StatusCompleted},
		{ServiceDate: today, Status: domain.StatusInProgress},
		{ServiceDate: today, Status: domain.StatusCancelled},
		{ServiceDate: day("2024-05-01"), Status: domain.StatusCompleted},
		{ServiceDate: day("2024-05-02"), Status: domain.StatusPending},
	}
	vehicles := []domain.VehicleOilSummary{
		{Name: "Газель", Status: domain.OilStatusNormal},
		{Name: "Соболь", Status: domain.OilStatusNeedsChange},
		{Name: "Ларгус", Status: domain.OilStatusNeedsChange},
	}

	dash := BuildDashboard(records, vehicles, today)

	assert.Equal(t, "2024-05-10", dash.Date)
	assert.Equal(t, 2, dash.TodayTotal)
	assert.Equal(t, 1, dash.TodayCompleted)
	assert.Equal(t, 50, dash.TodayRate)
	assert.Equal(t, 1, dash.InProgress)
	assert.Equal(t, 4, dash.MonthTotal)
	assert.Equal(t, 2, dash.MonthCompleted)
	assert.Equal(t, 50, dash.MonthRate)
	assert.Equal(t, 2, dash.OilCounts[domain.OilStatusNeedsChange])
	assert.Equal(t, 1, dash.OilCounts[domain.OilStatusNormal])
	assert.Len(t, dash.Vehicles, 3)
}

func TestRecordsTable(t *testing.T) {
	table := RecordsTable([]*domain.Record{
		{
			ServiceDate: day("2024-05-10"), DriverName: "Иванов", VehicleName: "Газель", VehiclePlate: "А123ВС77",
			RouteName: "Утренний", StartTime: clock("09:00"), EndTime: clock("09:45"),
			StartOdometer: km(15000), EndOdometer: km(15042), Status: domain.StatusCompleted, Notes: `сказал "спасибо"`,
		},
		{ServiceDate: day("2024-05-10"), DriverName: "Петров", Status: domain.StatusPending},
	})

	assert.Equal(t, exportHeaders, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{
		"2024-05-10", "Иванов", "Газель", "А123ВС77", "Утренний", "09:00", "09:45",
		"15000", "15042", "42", "45", "completed", `сказал "спасибо"`,
	}, table.Rows[0])
	assert.Equal(t, "", table.Rows[1][9])
	assert.Equal(t, "", table.Rows[1][10])
	for _, row := range table.Rows {
		assert.Len(t, row, len(table.Headers))
	}
}
