package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AddressType - тип адреса пассажира
type AddressType string

const (
	AddressHome   AddressType = "home"
	AddressSchool AddressType = "school"
	AddressWork   AddressType = "work"
	AddressOther  AddressType = "other"
)

// IsValid проверяет, что тип адреса известен
func (t AddressType) IsValid() bool {
	switch t {
	case AddressHome, AddressSchool, AddressWork, AddressOther:
		return true
	}
	return false
}

// Rider - пассажир (хранится в таблице users)
type Rider struct {
	ID               uuid.UUID `json:"id"`
	ManagementCodeID uuid.UUID `json:"management_code_id"`
	FullName         string    `json:"full_name"`
	Phone            string    `json:"phone,omitempty"`
	MedicalNotes     string    `json:"medical_notes,omitempty"`
	AssistanceNotes  string    `json:"assistance_notes,omitempty"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Addresses []*Address `json:"addresses,omitempty"`
}

// Address - адрес пассажира; у пассажира ровно один основной адрес
type Address struct {
	ID        uuid.UUID   `json:"id"`
	RiderID   uuid.UUID   `json:"rider_id"`
	Type      AddressType `json:"address_type"`
	Address   string      `json:"address"`
	IsPrimary bool        `json:"is_primary"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// PrimaryAddress возвращает основной адрес или nil
func (r *Rider) PrimaryAddress() *Address {
	for _, a := range r.Addresses {
		if a.IsPrimary {
			return a
		}
	}
	return nil
}

// EnsurePrimary делает первый адрес основным, если основной не выбран,
// и проверяет, что основной адрес ровно один
func EnsurePrimary(addresses []*Address) error {
	if len(addresses) == 0 {
		return nil
	}
	primaries := 0
	for _, a := range addresses {
		if a.IsPrimary {
			primaries++
		}
	}
	switch primaries {
	case 0:
		addresses[0].IsPrimary = true
		return nil
	case 1:
		return nil
	default:
		return ErrPrimaryAddressNeeded
	}
}

// Validate проверяет корректность данных пассажира
func (r *Rider) Validate() error {
	if r.ManagementCodeID == uuid.Nil {
		return ErrManagementScopeRequired
	}
	r.FullName = strings.TrimSpace(r.FullName)
	if r.FullName == "" {
		return ErrInvalidRiderData
	}
	for _, a := range r.Addresses {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return EnsurePrimary(r.Addresses)
}

// Validate проверяет корректность адреса
func (a *Address) Validate() error {
	if a.Type == "" {
		a.Type = AddressHome
	}
	if !a.Type.IsValid() {
		return ErrInvalidAddressType
	}
	a.Address = strings.TrimSpace(a.Address)
	if a.Address == "" {
		return ErrInvalidAddressData
	}
	return nil
}
