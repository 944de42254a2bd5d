package repository

import (
	"context"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/google/uuid"
)

// Все методы справочников принимают scope - ID кода управления.
// Запись из чужого кода ведет себя как отсутствующая (NotFound).

// OrganizationRepository определяет методы для работы с организациями
type OrganizationRepository interface {
	// Create создает организацию
	Create(ctx context.Context, org *domain.Organization) error

	// GetByID возвращает организацию по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)

	// List возвращает все организации
	List(ctx context.Context) ([]*domain.Organization, error)
}

// ManagementCodeRepository определяет методы для работы с кодами управления
type ManagementCodeRepository interface {
	// Create сохраняет код; при совпадении кода возвращает ErrManagementCodeExists
	Create(ctx context.Context, code *domain.ManagementCode) error

	// GetByID возвращает код по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ManagementCode, error)

	// GetByCode возвращает код по его значению
	GetByCode(ctx context.Context, code string) (*domain.ManagementCode, error)

	// ListByOrganization возвращает коды организации
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.ManagementCode, error)

	// Deactivate выключает код
	Deactivate(ctx context.Context, id uuid.UUID, at time.Time) error
}

// AdminRepository определяет методы для работы с администраторами
type AdminRepository interface {
	// Create создает администратора; занятый email возвращает ErrAdminAlreadyExists
	Create(ctx context.Context, admin *domain.Admin) error

	// GetByID возвращает администратора по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error)

	// GetByEmail возвращает администратора по email
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)

	// List возвращает администраторов с пагинацией
	List(ctx context.Context, limit, offset int) ([]*domain.Admin, error)

	// CountByRole возвращает число активных учетных записей с ролью
	CountByRole(ctx context.Context, role domain.Role) (int, error)

	// UpdateLastLogin обновляет время последнего входа
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// RefreshTokenRepository определяет методы для работы с refresh токенами
type RefreshTokenRepository interface {
	// Create сохраняет новый refresh token
	Create(ctx context.Context, token *domain.RefreshToken) error

	// GetByTokenHash возвращает refresh token по хешу
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// Revoke отзывает refresh token
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeAllForSubject отзывает все токены субъекта
	RevokeAllForSubject(ctx context.Context, subjectID uuid.UUID) error

	// RevokeSession отзывает токены смены водителя
	RevokeSession(ctx context.Context, sessionID uuid.UUID) error

	// DeleteExpired удаляет токены, истекшие до before
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// DriverRepository определяет методы для работы с водителями
type DriverRepository interface {
	// Create создает водителя; занятый табельный номер возвращает ErrDriverAlreadyExists
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID возвращает водителя по ID в рамках кода
	GetByID(ctx context.Context, scope, id uuid.UUID) (*domain.Driver, error)

	// GetByEmployeeNumber возвращает водителя по табельному номеру
	GetByEmployeeNumber(ctx context.Context, scope uuid.UUID, number string) (*domain.Driver, error)

	// List возвращает водителей кода
	List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Driver, error)

	// Update обновляет данные водителя (включая хеш пароля)
	Update(ctx context.Context, driver *domain.Driver) error

	// Deactivate выключает водителя (мягкое удаление)
	Deactivate(ctx context.Context, scope, id uuid.UUID) error
}

// VehicleRepository определяет методы для работы с машинами
type VehicleRepository interface {
	// Create создает машину; занятый номер возвращает ErrVehicleAlreadyExists
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID возвращает машину по ID в рамках кода
	GetByID(ctx context.Context, scope, id uuid.UUID) (*domain.Vehicle, error)

	// List возвращает машины кода
	List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Vehicle, error)

	// Update обновляет данные машины
	Update(ctx context.Context, vehicle *domain.Vehicle) error

	// Deactivate выключает машину (мягкое удаление)
	Deactivate(ctx context.Context, scope, id uuid.UUID) error

	// RecordOilChange фиксирует замену масла на указанном пробеге
	RecordOilChange(ctx context.Context, scope, id uuid.UUID, odometer int, at time.Time) (*domain.Vehicle, error)
}

// RouteRepository определяет методы для работы с маршрутами и точками
type RouteRepository interface {
	// Create создает маршрут вместе с точками
	Create(ctx context.Context, route *domain.Route) error

	// GetByID возвращает маршрут с точками, упорядоченными по display_order
	GetByID(ctx context.Context, scope, id uuid.UUID) (*domain.Route, error)

	// List возвращает маршруты кода с точками
	List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Route, error)

	// Update обновляет поля маршрута
	Update(ctx context.Context, route *domain.Route) error

	// Delete выключает маршрут; записи по нему сохраняются
	Delete(ctx context.Context, scope, id uuid.UUID) error

	// AddDestination добавляет точку в маршрут
	AddDestination(ctx context.Context, scope uuid.UUID, dest *domain.Destination) error

	// UpdateDestination обновляет точку
	UpdateDestination(ctx context.Context, scope uuid.UUID, dest *domain.Destination) error

	// DeleteDestination удаляет точку
	DeleteDestination(ctx context.Context, scope, routeID, destID uuid.UUID) error

	// ReorderDestinations задает порядок точек по списку ID
	ReorderDestinations(ctx context.Context, scope, routeID uuid.UUID, orderedIDs []uuid.UUID) error
}

// RiderRepository определяет методы для работы с пассажирами и их адресами
type RiderRepository interface {
	// Create создает пассажира вместе с адресами
	Create(ctx context.Context, rider *domain.Rider) error

	// GetByID возвращает пассажира с адресами
	GetByID(ctx context.Context, scope, id uuid.UUID) (*domain.Rider, error)

	// List возвращает пассажиров кода с адресами
	List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Rider, error)

	// ListByIDs возвращает активных пассажиров кода из списка ID
	ListByIDs(ctx context.Context, scope uuid.UUID, ids []uuid.UUID) ([]*domain.Rider, error)

	// Update обновляет поля пассажира
	Update(ctx context.Context, rider *domain.Rider) error

	// Deactivate выключает пассажира
	Deactivate(ctx context.Context, scope, id uuid.UUID) error

	// AddAddress добавляет адрес; основной адрес снимает признак с остальных
	AddAddress(ctx context.Context, scope uuid.UUID, addr *domain.Address) error

	// UpdateAddress обновляет тип и текст адреса
	UpdateAddress(ctx context.Context, scope uuid.UUID, addr *domain.Address) error

	// DeleteAddress удаляет адрес; при удалении основного основным становится самый старый
	DeleteAddress(ctx context.Context, scope, riderID, addressID uuid.UUID) error

	// SetPrimaryAddress делает адрес основным
	SetPrimaryAddress(ctx context.Context, scope, riderID, addressID uuid.UUID) error
}

// RecordRepository определяет методы для работы с ежедневными записями
// Тип записи выбирает пару таблиц (delivery_* или transportation_*)
type RecordRepository interface {
	// Reconcile атомарно возвращает активную запись по естественному ключу или создает новую
	// вместе со строками seeds. Возвращает true, если запись создана.
	Reconcile(ctx context.Context, record *domain.Record, seeds []*domain.Detail) (bool, error)

	// GetByID возвращает запись со строками в рамках кода
	GetByID(ctx context.Context, kind domain.RecordKind, scope, id uuid.UUID) (*domain.Record, error)

	// List возвращает записи по фильтру (без строк)
	List(ctx context.Context, filter domain.RecordFilter) ([]*domain.Record, error)

	// SetRecordField записывает одно поле записи
	SetRecordField(ctx context.Context, record *domain.Record, field domain.RecordField) error

	// SetDetailField записывает одно поле строки
	SetDetailField(ctx context.Context, record *domain.Record, detail *domain.Detail, field domain.DetailField) error

	// Transition сохраняет новый статус, если текущий статус в БД равен from.
	// Для завершенной записи пробег машины поднимается до конечного.
	Transition(ctx context.Context, record *domain.Record, from domain.RecordStatus) error

	// Delete удаляет запись со строками
	Delete(ctx context.Context, kind domain.RecordKind, scope, id uuid.UUID) error

	// LastEndOdometer возвращает конечный пробег последней записи машины не позже даты
	LastEndOdometer(ctx context.Context, vehicleID uuid.UUID, onOrBefore time.Time) (*int, error)
}

// SessionRepository хранит сессии водителей
type SessionRepository interface {
	// Save сохраняет сессию с TTL
	Save(ctx context.Context, session *domain.DriverSession, ttl time.Duration) error

	// Get возвращает сессию; отсутствующая или истекшая дает ErrSessionNotFound
	Get(ctx context.Context, id uuid.UUID) (*domain.DriverSession, error)

	// Delete удаляет сессию
	Delete(ctx context.Context, id uuid.UUID) error
}
