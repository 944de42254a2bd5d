package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const driverColumns = `id, management_code_id, full_name, employee_number, password_hash, phone, is_active, created_at, updated_at`

// driverRepository - PostgreSQL реализация DriverRepository
type driverRepository struct {
	db *pgxpool.Pool
}

// NewDriverRepository создает новый экземпляр driverRepository
func NewDriverRepository(db *pgxpool.Pool) repository.DriverRepository {
	return &driverRepository{db: db}
}

func scanDriver(row pgx.Row) (*domain.Driver, error) {
	d := &domain.Driver{}
	err := row.Scan(
		&d.ID,
		&d.ManagementCodeID,
		&d.FullName,
		&d.EmployeeNumber,
		&d.PasswordHash,
		&d.Phone,
		&d.IsActive,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *driverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, management_code_id, full_name, employee_number, password_hash, phone, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	driver.ID = uuid.New()
	driver.CreatedAt = time.Now()
	driver.UpdatedAt = driver.CreatedAt

	_, err := r.db.Exec(ctx, query,
		driver.ID,
		driver.ManagementCodeID,
		driver.FullName,
		driver.EmployeeNumber,
		driver.PasswordHash,
		driver.Phone,
		driver.IsActive,
		driver.CreatedAt,
		driver.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDriverAlreadyExists
		}
		return err
	}

	return nil
}

func (r *driverRepository) GetByID(ctx context.Context, scope, id uuid.UUID) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1 AND management_code_id = $2`

	d, err := scanDriver(r.db.QueryRow(ctx, query, id, scope))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDriverNotFound
		}
		return nil, err
	}

	return d, nil
}

func (r *driverRepository) GetByEmployeeNumber(ctx context.Context, scope uuid.UUID, number string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE management_code_id = $1 AND employee_number = $2`

	d, err := scanDriver(r.db.QueryRow(ctx, query, scope, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDriverNotFound
		}
		return nil, err
	}

	return d, nil
}

func (r *driverRepository) List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Driver, error) {
	query := `
		SELECT ` + driverColumns + `
		FROM drivers
		WHERE management_code_id = $1 AND ($2 = false OR is_active)
		ORDER BY full_name
	`

	rows, err := r.db.Query(ctx, query, scope, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}

	return drivers, rows.Err()
}

func (r *driverRepository) Update(ctx context.Context, driver *domain.Driver) error {
	query := `
		UPDATE drivers
		SET full_name = $3, employee_number = $4, password_hash = $5, phone = $6, is_active = $7, updated_at = $8
		WHERE id = $1 AND management_code_id = $2
	`

	driver.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx, query,
		driver.ID,
		driver.ManagementCodeID,
		driver.FullName,
		driver.EmployeeNumber,
		driver.PasswordHash,
		driver.Phone,
		driver.IsActive,
		driver.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDriverAlreadyExists
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrDriverNotFound
	}

	return nil
}

func (r *driverRepository) Deactivate(ctx context.Context, scope, id uuid.UUID) error {
	// Мягкое удаление - записи водителя остаются в отчетах
	query := `
		UPDATE drivers
		SET is_active = false, updated_at = $3
		WHERE id = $1 AND management_code_id = $2
	`

	result, err := r.db.Exec(ctx, query, id, scope, time.Now())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrDriverNotFound
	}

	return nil
}
