package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken представляет refresh токен в системе
// Хранится только SHA-256 хеш, при обновлении токен ротируется
type RefreshToken struct {
	ID          uuid.UUID  `json:"id"`
	SubjectID   uuid.UUID  `json:"subject_id"`
	SubjectRole Role       `json:"subject_role"`
	SessionID   *uuid.UUID `json:"session_id,omitempty"` // Смена водителя, для администраторов пусто
	TokenHash   string     `json:"-"` // Не отдаем клиенту
	ExpiresAt   time.Time  `json:"expires_at"`
	CreatedAt   time.Time  `json:"created_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

// IsValid проверяет, действителен ли refresh token на момент now
func (rt *RefreshToken) IsValid(now time.Time) bool {
	if rt.RevokedAt != nil {
		return false
	}
	return now.Before(rt.ExpiresAt)
}
