package domain

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ManagementCodeLength - длина кода управления
const ManagementCodeLength = 6

// managementCodeAlphabet не содержит легко путаемых символов 0/O и 1/I
const managementCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Organization - организация-перевозчик (социальная служба, дом престарелых и т.п.)
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Связанные данные (не хранятся в таблице organizations)
	Codes []*ManagementCode `json:"codes,omitempty"`
}

// Validate проверяет корректность данных организации
func (o *Organization) Validate() error {
	o.Name = strings.TrimSpace(o.Name)
	if o.Name == "" || len(o.Name) > 200 {
		return ErrInvalidOrganizationData
	}
	return nil
}

// ManagementCode - код управления, ограничивающий видимость данных
// Водители, машины, маршруты и пассажиры принадлежат ровно одному коду
type ManagementCode struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	Code           string     `json:"code"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	DeactivatedAt  *time.Time `json:"deactivated_at,omitempty"`
}

// Deactivate выключает код; восстановление не предусмотрено
func (c *ManagementCode) Deactivate(now time.Time) {
	c.IsActive = false
	c.DeactivatedAt = &now
}

// GenerateManagementCode создает случайный код из 6 символов
func GenerateManagementCode() (string, error) {
	max := big.NewInt(int64(len(managementCodeAlphabet)))
	buf := make([]byte, ManagementCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = managementCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// NormalizeManagementCode приводит введенный код к каноническому виду
func NormalizeManagementCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidManagementCode проверяет длину и алфавит кода
func IsValidManagementCode(code string) bool {
	if len(code) != ManagementCodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(managementCodeAlphabet, r) {
			return false
		}
	}
	return true
}
