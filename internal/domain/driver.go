package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Driver - водитель; входит в приложение по коду управления и табельному номеру
type Driver struct {
	ID               uuid.UUID `json:"id"`
	ManagementCodeID uuid.UUID `json:"management_code_id"`
	FullName         string    `json:"full_name"`
	EmployeeNumber   string    `json:"employee_number"` // Уникален в рамках кода управления
	PasswordHash     string    `json:"-"`
	Phone            string    `json:"phone,omitempty"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NormalizeEmployeeNumber убирает пробелы и приводит номер к верхнему регистру
func NormalizeEmployeeNumber(number string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(number), " ", ""))
}

// Principal возвращает субъект водителя для конкретной сессии
func (d *Driver) Principal(sessionID uuid.UUID) Principal {
	scope := d.ManagementCodeID
	return Principal{
		SubjectID:        d.ID,
		Role:             RoleDriver,
		Name:             d.FullName,
		ManagementCodeID: &scope,
		SessionID:        &sessionID,
	}
}

// Validate проверяет корректность данных водителя
func (d *Driver) Validate() error {
	if d.ManagementCodeID == uuid.Nil {
		return ErrManagementScopeRequired
	}
	d.FullName = strings.TrimSpace(d.FullName)
	if d.FullName == "" {
		return ErrInvalidDriverData
	}
	d.EmployeeNumber = NormalizeEmployeeNumber(d.EmployeeNumber)
	if d.EmployeeNumber == "" || len(d.EmployeeNumber) > 32 {
		return ErrInvalidDriverData
	}
	return nil
}
