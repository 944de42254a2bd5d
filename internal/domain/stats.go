package domain

import (
	"math"

	"github.com/google/uuid"
)

// GroupDimension - измерение группировки отчета о выполнении
type GroupDimension string

const (
	GroupByDriver  GroupDimension = "driver"
	GroupByVehicle GroupDimension = "vehicle"
	GroupByRoute   GroupDimension = "route"
	GroupByMonth   GroupDimension = "month"
)

// ParseGroupDimension разбирает измерение; по умолчанию группировка по месяцу
func ParseGroupDimension(value string) (GroupDimension, error) {
	switch GroupDimension(value) {
	case "":
		return GroupByMonth, nil
	case GroupByDriver, GroupByVehicle, GroupByRoute, GroupByMonth:
		return GroupDimension(value), nil
	}
	return "", ErrBadRequest
}

// CompletionRate возвращает процент выполнения, округленный до целого
func CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// DeviationPercent возвращает отклонение в процентах от базового значения
func DeviationPercent(diff, base float64) int {
	if base == 0 {
		return 0
	}
	return int(math.Round(diff / base * 100))
}

// CompletionGroup - строка отчета о выполнении
type CompletionGroup struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Month     string `json:"month"` // YYYY-MM
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Rate      int    `json:"rate"`
}

// RoutePerformance сравнивает среднее время маршрута за месяц и за сегодня
type RoutePerformance struct {
	RouteID          uuid.UUID `json:"route_id"`
	RouteName        string    `json:"route_name"`
	MonthAvgMinutes  float64   `json:"month_avg_minutes"`
	MonthSamples     int       `json:"month_samples"`
	TodayAvgMinutes  *float64  `json:"today_avg_minutes"`
	TodaySamples     int       `json:"today_samples"`
	DiffMinutes      *float64  `json:"diff_minutes"` // сегодня минус месяц
	DeviationPercent *int      `json:"deviation_percent"`
}

// VehicleOilSummary - состояние замены масла для панели
type VehicleOilSummary struct {
	VehicleID        uuid.UUID `json:"vehicle_id"`
	Name             string    `json:"name"`
	LicensePlate     string    `json:"license_plate"`
	CurrentOdometer  int       `json:"current_odometer"`
	KmSinceOilChange int       `json:"km_since_oil_change"`
	Status           OilStatus `json:"status"`
}

// Dashboard - сводка для главной страницы администратора
type Dashboard struct {
	Date           string              `json:"date"`
	TodayTotal     int                 `json:"today_total"`
	TodayCompleted int                 `json:"today_completed"`
	TodayRate      int                 `json:"today_rate"`
	InProgress     int                 `json:"in_progress"`
	MonthTotal     int                 `json:"month_total"`
	MonthCompleted int                 `json:"month_completed"`
	MonthRate      int                 `json:"month_rate"`
	OilCounts      map[OilStatus]int   `json:"oil_counts"`
	Vehicles       []VehicleOilSummary `json:"vehicles"`
}
