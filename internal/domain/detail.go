package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DetailField - поле строки записи
type DetailField string

const (
	FieldArrivalTime   DetailField = "arrival_time"
	FieldDepartureTime DetailField = "departure_time"
	FieldDetailNotes   DetailField = "notes"
)

// Detail - строка записи: точка маршрута (доставка) или пассажир (перевозка)
type Detail struct {
	ID            uuid.UUID  `json:"id"`
	RecordID      uuid.UUID  `json:"record_id"`
	Sequence      int        `json:"sequence"`
	DestinationID *uuid.UUID `json:"destination_id,omitempty"`
	RiderID       *uuid.UUID `json:"rider_id,omitempty"`
	Label         string     `json:"label"`
	ArrivalTime   *string    `json:"arrival_time"`
	DepartureTime *string    `json:"departure_time"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ParseDetailField проверяет имя поля строки
func ParseDetailField(value string) (DetailField, error) {
	field := DetailField(strings.TrimSpace(value))
	switch field {
	case FieldArrivalTime, FieldDepartureTime, FieldDetailNotes:
		return field, nil
	}
	return "", ErrInvalidRecordField
}

// ApplyField записывает значение в поле строки
func (d *Detail) ApplyField(field DetailField, value string) ([]string, error) {
	value = strings.TrimSpace(value)

	switch field {
	case FieldArrivalTime:
		clock, err := optionalClock(value)
		if err != nil {
			return nil, err
		}
		d.ArrivalTime = clock
	case FieldDepartureTime:
		clock, err := optionalClock(value)
		if err != nil {
			return nil, err
		}
		d.DepartureTime = clock
	case FieldDetailNotes:
		d.Notes = value
	default:
		return nil, ErrInvalidRecordField
	}

	return d.Warnings(), nil
}

// Warnings возвращает предупреждение, если отправление раньше прибытия
func (d *Detail) Warnings() []string {
	if d.ArrivalTime == nil || d.DepartureTime == nil {
		return nil
	}
	arrival, err1 := ParseClock(*d.ArrivalTime)
	departure, err2 := ParseClock(*d.DepartureTime)
	if err1 == nil && err2 == nil && departure < arrival {
		return []string{WarningDepartureBeforeArrival}
	}
	return nil
}

// IsFilled проверяет, что отмечены прибытие и отправление
func (d *Detail) IsFilled() bool {
	return d.ArrivalTime != nil && d.DepartureTime != nil
}

// DwellMinutes возвращает время стоянки в точке
func (d *Detail) DwellMinutes() (int, bool) {
	if !d.IsFilled() {
		return 0, false
	}
	minutes, err := ClockDuration(*d.ArrivalTime, *d.DepartureTime)
	if err != nil {
		return 0, false
	}
	return minutes, true
}
