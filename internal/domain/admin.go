package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Admin - учетная запись администратора
// Суперадминистратор не привязан к коду управления, администратор привязан всегда
type Admin struct {
	ID               uuid.UUID  `json:"id"`
	ManagementCodeID *uuid.UUID `json:"management_code_id,omitempty"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"` // Никогда не возвращаем в JSON
	FullName         string     `json:"full_name"`
	Role             Role       `json:"role"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
}

// NormalizeEmail приводит email к нижнему регистру без пробелов
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Principal возвращает субъект для выпуска токенов
func (a *Admin) Principal() Principal {
	return Principal{
		SubjectID:        a.ID,
		Role:             a.Role,
		Name:             a.FullName,
		ManagementCodeID: a.ManagementCodeID,
	}
}

// Validate проверяет корректность данных администратора
func (a *Admin) Validate() error {
	a.Email = NormalizeEmail(a.Email)
	if _, err := mail.ParseAddress(a.Email); err != nil || a.Email == "" {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(a.FullName) == "" {
		return ErrInvalidAdminData
	}
	switch a.Role {
	case RoleSuperAdmin:
		if a.ManagementCodeID != nil {
			return ErrInvalidAdminData
		}
	case RoleAdmin:
		if a.ManagementCodeID == nil || *a.ManagementCodeID == uuid.Nil {
			return ErrManagementScopeRequired
		}
	default:
		return ErrInvalidRole
	}
	return nil
}
