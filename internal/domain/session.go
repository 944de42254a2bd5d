package domain

import (
	"time"

	"github.com/google/uuid"
)

// DriverSession - состояние смены водителя между входом и выходом
// Хранится на сервере, клиент знает только ID сессии из токена
type DriverSession struct {
	ID               uuid.UUID   `json:"id"`
	ManagementCodeID uuid.UUID   `json:"management_code_id"`
	DriverID         uuid.UUID   `json:"driver_id"`
	DriverName       string      `json:"driver_name"`
	VehicleID        uuid.UUID   `json:"vehicle_id"`
	VehicleName      string      `json:"vehicle_name"`
	RiderIDs         []uuid.UUID `json:"rider_ids"`
	RouteID          *uuid.UUID  `json:"route_id,omitempty"`
	StartedAt        time.Time   `json:"started_at"`
	StartOdometer    int         `json:"start_odometer"`
}

// Validate проверяет обязательные поля сессии
func (s *DriverSession) Validate() error {
	if s.ID == uuid.Nil || s.DriverID == uuid.Nil || s.VehicleID == uuid.Nil || s.ManagementCodeID == uuid.Nil {
		return ErrInvalidSession
	}
	if s.StartOdometer < 0 {
		return ErrInvalidOdometer
	}
	seen := make(map[uuid.UUID]struct{}, len(s.RiderIDs))
	for _, id := range s.RiderIDs {
		if id == uuid.Nil {
			return ErrInvalidSession
		}
		if _, dup := seen[id]; dup {
			return ErrInvalidSession
		}
		seen[id] = struct{}{}
	}
	return nil
}

// LoginOptions - справочники, доступные на экране входа водителя
type LoginOptions struct {
	Drivers  []NamedItem `json:"drivers"`
	Vehicles []NamedItem `json:"vehicles"`
	Riders   []NamedItem `json:"riders"`
	Routes   []NamedItem `json:"routes"`
}

// NamedItem - элемент выпадающего списка
type NamedItem struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
