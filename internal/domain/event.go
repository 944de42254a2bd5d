package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType - тип доменного события
type EventType string

const (
	EventRecordStarted       EventType = "record.started"
	EventRecordCompleted     EventType = "record.completed"
	EventRecordCancelled     EventType = "record.cancelled"
	EventVehicleOilChangeDue EventType = "vehicle.oil_change_due"
)

// Event публикуется после изменения состояния записи или машины
type Event struct {
	Type             EventType              `json:"type"`
	ManagementCodeID uuid.UUID              `json:"management_code_id"`
	EntityID         uuid.UUID              `json:"entity_id"`
	OccurredAt       time.Time              `json:"occurred_at"`
	Data             map[string]interface{} `json:"data,omitempty"`
}
