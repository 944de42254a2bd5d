package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecordKind - тип ежедневной записи
type RecordKind string

const (
	RecordKindDelivery       RecordKind = "delivery"       // Доставка по маршруту
	RecordKindTransportation RecordKind = "transportation" // Перевозка пассажиров
)

// ParseRecordKind разбирает тип записи из параметра запроса
func ParseRecordKind(value string) (RecordKind, error) {
	switch RecordKind(strings.ToLower(strings.TrimSpace(value))) {
	case RecordKindDelivery:
		return RecordKindDelivery, nil
	case RecordKindTransportation:
		return RecordKindTransportation, nil
	}
	return "", ErrInvalidRecordKind
}

// RecordStatus - статус записи
type RecordStatus string

const (
	StatusPending    RecordStatus = "pending"
	StatusInProgress RecordStatus = "in_progress"
	StatusCompleted  RecordStatus = "completed"
	StatusCancelled  RecordStatus = "cancelled"
)

// CanTransitionTo проверяет допустимость перехода
// Статус движется только вперед: pending -> in_progress -> completed, или в cancelled
func (s RecordStatus) CanTransitionTo(next RecordStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusInProgress || next == StatusCancelled
	case StatusInProgress:
		return next == StatusCompleted || next == StatusCancelled
	}
	return false
}

// RecordField - поле записи, изменяемое водителем
type RecordField string

const (
	FieldStartTime     RecordField = "start_time"
	FieldEndTime       RecordField = "end_time"
	FieldStartOdometer RecordField = "start_odometer"
	FieldEndOdometer   RecordField = "end_odometer"
	FieldRecordNotes   RecordField = "notes"
)

// Предупреждения при сохранении значений; сохранение не блокируют
const (
	WarningEndOdometerBeforeStart = "end_odometer_before_start"
	WarningDepartureBeforeArrival = "departure_before_arrival"
)

// Record - ежедневная запись водителя (доставка или перевозка)
type Record struct {
	ID               uuid.UUID    `json:"id"`
	Kind             RecordKind   `json:"kind"`
	ManagementCodeID uuid.UUID    `json:"management_code_id"`
	DriverID         uuid.UUID    `json:"driver_id"`
	VehicleID        uuid.UUID    `json:"vehicle_id"`
	RouteID          *uuid.UUID   `json:"route_id,omitempty"` // Обязателен для доставки
	ServiceDate      time.Time    `json:"service_date"`
	StartTime        *string      `json:"start_time"`
	EndTime          *string      `json:"end_time"`
	StartOdometer    *int         `json:"start_odometer"`
	EndOdometer      *int         `json:"end_odometer"`
	Status           RecordStatus `json:"status"`
	Notes            string       `json:"notes,omitempty"`
	CancelReason     string       `json:"cancel_reason,omitempty"`
	CompletedAt      *time.Time   `json:"completed_at,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`

	// Связанные данные (заполняются при чтении)
	DriverName   string    `json:"driver_name,omitempty"`
	VehicleName  string    `json:"vehicle_name,omitempty"`
	VehiclePlate string    `json:"vehicle_plate,omitempty"`
	RouteName    string    `json:"route_name,omitempty"`
	Details      []*Detail `json:"details,omitempty"`
}

// Validate проверяет данные новой записи
func (r *Record) Validate() error {
	if r.ManagementCodeID == uuid.Nil {
		return ErrManagementScopeRequired
	}
	if _, err := ParseRecordKind(string(r.Kind)); err != nil {
		return err
	}
	if r.DriverID == uuid.Nil || r.VehicleID == uuid.Nil || r.ServiceDate.IsZero() {
		return ErrInvalidRecordData
	}
	if r.Kind == RecordKindDelivery && (r.RouteID == nil || *r.RouteID == uuid.Nil) {
		return ErrRouteRequired
	}
	if r.StartOdometer != nil && *r.StartOdometer < 0 {
		return ErrInvalidOdometer
	}
	return nil
}

// ApplyField записывает значение в поле записи
// Проверяются только формат и неотрицательность, порядок значений возвращается предупреждением
// Пустое значение очищает поле, кроме времени и пробега завершенной записи
func (r *Record) ApplyField(field RecordField, value string) ([]string, error) {
	if r.Status == StatusCancelled {
		return nil, ErrRecordClosed
	}

	value = strings.TrimSpace(value)

	// У завершенной записи время и пробег можно исправить, но не стереть
	if value == "" && r.Status == StatusCompleted {
		switch field {
		case FieldStartTime, FieldEndTime, FieldStartOdometer, FieldEndOdometer:
			return nil, ErrCompletedFieldRequired
		}
	}

	switch field {
	case FieldStartTime:
		clock, err := optionalClock(value)
		if err != nil {
			return nil, err
		}
		r.StartTime = clock
	case FieldEndTime:
		clock, err := optionalClock(value)
		if err != nil {
			return nil, err
		}
		r.EndTime = clock
	case FieldStartOdometer:
		km, err := optionalOdometer(value)
		if err != nil {
			return nil, err
		}
		r.StartOdometer = km
	case FieldEndOdometer:
		km, err := optionalOdometer(value)
		if err != nil {
			return nil, err
		}
		r.EndOdometer = km
	case FieldRecordNotes:
		r.Notes = value
	default:
		return nil, ErrInvalidRecordField
	}

	return r.Warnings(), nil
}

// Warnings возвращает рекомендательные предупреждения о порядке значений
func (r *Record) Warnings() []string {
	var warnings []string
	if r.StartOdometer != nil && r.EndOdometer != nil && *r.EndOdometer < *r.StartOdometer {
		warnings = append(warnings, WarningEndOdometerBeforeStart)
	}
	for _, d := range r.Details {
		warnings = append(warnings, d.Warnings()...)
	}
	return warnings
}

// IsFilled проверяет, что заполнены все поля записи и всех ее строк
func (r *Record) IsFilled() bool {
	if r.StartTime == nil || r.EndTime == nil || r.StartOdometer == nil || r.EndOdometer == nil {
		return false
	}
	for _, d := range r.Details {
		if !d.IsFilled() {
			return false
		}
	}
	return true
}

// ShouldAutoComplete сообщает, что последнее незаполненное поле заполнено
func (r *Record) ShouldAutoComplete() bool {
	return r.Status == StatusInProgress && r.IsFilled()
}

// TransitionTo переводит запись в новый статус
func (r *Record) TransitionTo(next RecordStatus, now time.Time) error {
	if !r.Status.CanTransitionTo(next) {
		return ErrInvalidStatusTransition
	}
	r.Status = next
	r.UpdatedAt = now
	if next == StatusCompleted {
		r.CompletedAt = &now
	}
	return nil
}

// DurationMinutes возвращает длительность поездки в минутах
func (r *Record) DurationMinutes() (int, bool) {
	if r.StartTime == nil || r.EndTime == nil {
		return 0, false
	}
	minutes, err := ClockDuration(*r.StartTime, *r.EndTime)
	if err != nil {
		return 0, false
	}
	return minutes, true
}

// DistanceKm возвращает пробег за поездку
func (r *Record) DistanceKm() (int, bool) {
	if r.StartOdometer == nil || r.EndOdometer == nil {
		return 0, false
	}
	return *r.EndOdometer - *r.StartOdometer, true
}

// FindDetail возвращает строку записи по ID
func (r *Record) FindDetail(id uuid.UUID) *Detail {
	for _, d := range r.Details {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// ParseRecordField проверяет имя поля записи
func ParseRecordField(value string) (RecordField, error) {
	field := RecordField(strings.TrimSpace(value))
	switch field {
	case FieldStartTime, FieldEndTime, FieldStartOdometer, FieldEndOdometer, FieldRecordNotes:
		return field, nil
	}
	return "", ErrInvalidRecordField
}

func optionalClock(value string) (*string, error) {
	if value == "" {
		return nil, nil
	}
	clock, err := NormalizeClock(value)
	if err != nil {
		return nil, err
	}
	return &clock, nil
}

func optionalOdometer(value string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	km, err := strconv.Atoi(value)
	if err != nil || km < 0 {
		return nil, ErrInvalidOdometer
	}
	return &km, nil
}

// RecordFilter - параметры выборки записей
type RecordFilter struct {
	ManagementCodeID uuid.UUID
	Kind             RecordKind
	From             *time.Time
	To               *time.Time
	DriverID         *uuid.UUID
	VehicleID        *uuid.UUID
	RouteID          *uuid.UUID
	Status           *RecordStatus
	Limit            int
	Offset           int
}
