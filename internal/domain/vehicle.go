package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FuelType представляет тип топлива
type FuelType string

const (
	FuelGasoline FuelType = "gasoline"
	FuelDiesel   FuelType = "diesel"
	FuelHybrid   FuelType = "hybrid"
	FuelElectric FuelType = "electric"
	FuelLPG      FuelType = "lpg"
)

// Пороги замены масла в километрах
const (
	OilChangeDueSoonKm = 4000
	OilChangeNeededKm  = 5000
)

// OilStatus - состояние машины по пробегу с последней замены масла
type OilStatus string

const (
	OilStatusNormal      OilStatus = "normal"
	OilStatusDueSoon     OilStatus = "due_soon"
	OilStatusNeedsChange OilStatus = "needs_change"
)

// OilChangeStatus вычисляет статус по текущему пробегу и пробегу последней замены
func OilChangeStatus(currentOdometer, lastChangeOdometer int) OilStatus {
	diff := currentOdometer - lastChangeOdometer
	switch {
	case diff >= OilChangeNeededKm:
		return OilStatusNeedsChange
	case diff >= OilChangeDueSoonKm:
		return OilStatusDueSoon
	default:
		return OilStatusNormal
	}
}

// Vehicle - транспортное средство службы перевозки
type Vehicle struct {
	ID                    uuid.UUID  `json:"id"`
	ManagementCodeID      uuid.UUID  `json:"management_code_id"`
	Name                  string     `json:"name"`
	LicensePlate          string     `json:"license_plate"`
	Model                 string     `json:"model,omitempty"`
	Capacity              int        `json:"capacity"`
	FuelType              FuelType   `json:"fuel_type"`
	CurrentOdometer       int        `json:"current_odometer"`
	LastOilChangeOdometer int        `json:"last_oil_change_odometer"`
	LastOilChangeAt       *time.Time `json:"last_oil_change_at,omitempty"`
	IsActive              bool       `json:"is_active"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// NormalizeLicensePlate нормализует номер автомобиля (убирает пробелы, приводит к верхнему регистру)
func NormalizeLicensePlate(plate string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(plate), " ", ""))
}

// KmSinceOilChange возвращает пробег с последней замены масла
func (v *Vehicle) KmSinceOilChange() int {
	return v.CurrentOdometer - v.LastOilChangeOdometer
}

// OilStatus возвращает статус замены масла
func (v *Vehicle) OilStatus() OilStatus {
	return OilChangeStatus(v.CurrentOdometer, v.LastOilChangeOdometer)
}

// Validate проверяет корректность данных автомобиля
func (v *Vehicle) Validate() error {
	if v.ManagementCodeID == uuid.Nil {
		return ErrManagementScopeRequired
	}
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		return ErrInvalidVehicleData
	}
	if v.LicensePlate == "" {
		return ErrInvalidLicensePlate
	}
	v.LicensePlate = NormalizeLicensePlate(v.LicensePlate)
	if len(v.LicensePlate) < 2 || len(v.LicensePlate) > 20 {
		return ErrInvalidLicensePlate
	}
	if v.Capacity < 0 {
		return ErrInvalidVehicleData
	}
	if v.FuelType == "" {
		v.FuelType = FuelGasoline
	}
	switch v.FuelType {
	case FuelGasoline, FuelDiesel, FuelHybrid, FuelElectric, FuelLPG:
	default:
		return ErrInvalidVehicleData
	}
	if v.CurrentOdometer < 0 || v.LastOilChangeOdometer < 0 {
		return ErrInvalidOdometer
	}
	if v.LastOilChangeOdometer > v.CurrentOdometer {
		return ErrInvalidOdometer
	}
	return nil
}

// StartOdometerFor возвращает начальный пробег новой записи:
// конечный пробег последней записи машины, иначе текущий пробег машины
func StartOdometerFor(lastEnd *int, v *Vehicle) int {
	if lastEnd != nil {
		return *lastEnd
	}
	if v != nil {
		return v.CurrentOdometer
	}
	return 0
}
