package domain

import "github.com/google/uuid"

// Role определяет права субъекта в системе
type Role string

const (
	RoleSuperAdmin Role = "super_admin" // Управляет организациями и кодами
	RoleAdmin      Role = "admin"       // Администратор в рамках кода управления
	RoleDriver     Role = "driver"      // Водитель
)

// IsValid проверяет, что роль известна
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleDriver:
		return true
	}
	return false
}

// Principal - аутентифицированный субъект запроса (администратор или водитель)
type Principal struct {
	SubjectID        uuid.UUID  `json:"subject_id"`
	Role             Role       `json:"role"`
	Name             string     `json:"name"`
	ManagementCodeID *uuid.UUID `json:"management_code_id,omitempty"`
	SessionID        *uuid.UUID `json:"session_id,omitempty"` // Только у водителей
}

// Scope возвращает код управления субъекта
// Все данные водителей, машин, маршрутов и пассажиров видны только в своем коде
func (p *Principal) Scope() (uuid.UUID, error) {
	if p == nil || p.ManagementCodeID == nil || *p.ManagementCodeID == uuid.Nil {
		return uuid.Nil, ErrManagementScopeRequired
	}
	return *p.ManagementCodeID, nil
}

// IsDriver проверяет, является ли субъект водителем
func (p *Principal) IsDriver() bool {
	return p.Role == RoleDriver
}

// IsAdmin проверяет, может ли субъект управлять справочниками
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin || p.Role == RoleSuperAdmin
}
