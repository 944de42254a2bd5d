package report

import (
	"sort"
	"strconv"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/export"
	"github.com/google/uuid"
)

const monthLayout = "2006-01"

// Метка для записей без маршрута
const noRouteLabel = "Без маршрута"

// GroupCompletion группирует записи по измерению и месяцу
// Отмененные записи в расчет не входят
func GroupCompletion(records []*domain.Record, dim domain.GroupDimension) []domain.CompletionGroup {
	groups := make(map[string]*domain.CompletionGroup)

	for _, rec := range records {
		if rec.Status == domain.StatusCancelled {
			continue
		}

		month := rec.ServiceDate.Format(monthLayout)
		key, label := dimensionKey(rec, dim)
		mapKey := key + "|" + month

		g, ok := groups[mapKey]
		if !ok {
			g = &domain.CompletionGroup{Key: key, Label: label, Month: month}
			groups[mapKey] = g
		}
		g.Total++
		if rec.Status == domain.StatusCompleted {
			g.Completed++
		}
	}

	result := make([]domain.CompletionGroup, 0, len(groups))
	for _, g := range groups {
		g.Rate = domain.CompletionRate(g.Completed, g.Total)
		result = append(result, *g)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Month != result[j].Month {
			return result[i].Month < result[j].Month
		}
		if result[i].Label != result[j].Label {
			return result[i].Label < result[j].Label
		}
		return result[i].Key < result[j].Key
	})

	return result
}

func dimensionKey(rec *domain.Record, dim domain.GroupDimension) (string, string) {
	switch dim {
	case domain.GroupByDriver:
		return rec.DriverID.String(), rec.DriverName
	case domain.GroupByVehicle:
		return rec.VehicleID.String(), rec.VehicleName
	case domain.GroupByRoute:
		if rec.RouteID == nil {
			return uuid.Nil.String(), noRouteLabel
		}
		return rec.RouteID.String(), rec.RouteName
	}
	month := rec.ServiceDate.Format(monthLayout)
	return month, month
}

type durationSamples struct {
	name       string
	monthSum   int
	monthCount int
	todaySum   int
	todayCount int
}

// BuildRoutePerformance считает среднюю длительность маршрутов за месяц и за день today
// Учитываются только завершенные записи с маршрутом и обеими отметками времени
func BuildRoutePerformance(records []*domain.Record, today time.Time) []domain.RoutePerformance {
	monthStart := domain.MonthStart(today)
	byRoute := make(map[uuid.UUID]*durationSamples)

	for _, rec := range records {
		if rec.Status != domain.StatusCompleted || rec.RouteID == nil {
			continue
		}
		if rec.ServiceDate.Before(monthStart) || rec.ServiceDate.After(today) {
			continue
		}
		minutes, ok := rec.DurationMinutes()
		if !ok {
			continue
		}

		s, exists := byRoute[*rec.RouteID]
		if !exists {
			s = &durationSamples{name: rec.RouteName}
			byRoute[*rec.RouteID] = s
		}
		s.monthSum += minutes
		s.monthCount++
		if rec.ServiceDate.Equal(today) {
			s.todaySum += minutes
			s.todayCount++
		}
	}

	result := make([]domain.RoutePerformance, 0, len(byRoute))
	for routeID, s := range byRoute {
		perf := domain.RoutePerformance{
			RouteID:         routeID,
			RouteName:       s.name,
			MonthAvgMinutes: float64(s.monthSum) / float64(s.monthCount),
			MonthSamples:    s.monthCount,
			TodaySamples:    s.todayCount,
		}
		if s.todayCount > 0 {
			todayAvg := float64(s.todaySum) / float64(s.todayCount)
			diff := todayAvg - perf.MonthAvgMinutes
			deviation := domain.DeviationPercent(diff, perf.MonthAvgMinutes)
			perf.TodayAvgMinutes = &todayAvg
			perf.DiffMinutes = &diff
			perf.DeviationPercent = &deviation
		}
		result = append(result, perf)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].RouteName != result[j].RouteName {
			return result[i].RouteName < result[j].RouteName
		}
		return result[i].RouteID.String() < result[j].RouteID.String()
	})

	return result
}

// BuildDashboard собирает сводку по записям месяца и состоянию машин
func BuildDashboard(records []*domain.Record, vehicles []domain.VehicleOilSummary, today time.Time) *domain.Dashboard {
	monthStart := domain.MonthStart(today)
	dash := &domain.Dashboard{
		Date:      today.Format(domain.DateLayout),
		OilCounts: map[domain.OilStatus]int{},
		Vehicles:  vehicles,
	}

	for _, rec := range records {
		if rec.Status == domain.StatusCancelled {
			continue
		}
		if rec.ServiceDate.Before(monthStart) || rec.ServiceDate.After(today) {
			continue
		}

		done := rec.Status == domain.StatusCompleted
		dash.MonthTotal++
		if done {
			dash.MonthCompleted++
		}

		if rec.ServiceDate.Equal(today) {
			dash.TodayTotal++
			if done {
				dash.TodayCompleted++
			}
			if rec.Status == domain.StatusInProgress {
				dash.InProgress++
			}
		}
	}

	dash.TodayRate = domain.CompletionRate(dash.TodayCompleted, dash.TodayTotal)
	dash.MonthRate = domain.CompletionRate(dash.MonthCompleted, dash.MonthTotal)

	for _, v := range vehicles {
		dash.OilCounts[v.Status]++
	}

	return dash
}

// Заголовки выгрузки совпадают с колонками таблицы записей
var exportHeaders = []string{
	"Дата",
	"Водитель",
	"Машина",
	"Гос. номер",
	"Маршрут",
	"Начало",
	"Окончание",
	"Пробег в начале",
	"Пробег в конце",
	"Расстояние, км",
	"Длительность, мин",
	"Статус",
	"Примечание",
}

// RecordsTable строит таблицу выгрузки записей
func RecordsTable(records []*domain.Record) export.Table {
	table := export.Table{Headers: exportHeaders, Rows: make([][]string, 0, len(records))}

	for _, rec := range records {
		distance, duration := "", ""
		if km, ok := rec.DistanceKm(); ok {
			distance = strconv.Itoa(km)
		}
		if minutes, ok := rec.DurationMinutes(); ok {
			duration = strconv.Itoa(minutes)
		}

		table.Rows = append(table.Rows, []string{
			rec.ServiceDate.Format(domain.DateLayout),
			rec.DriverName,
			rec.VehicleName,
			rec.VehiclePlate,
			rec.RouteName,
			stringOrEmpty(rec.StartTime),
			stringOrEmpty(rec.EndTime),
			intOrEmpty(rec.StartOdometer),
			intOrEmpty(rec.EndOdometer),
			distance,
			duration,
			string(rec.Status),
			rec.Notes,
		})
	}

	return table
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
