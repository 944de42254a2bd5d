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

const vehicleColumns = `id, management_code_id, name, license_plate, model, capacity, fuel_type,
	current_odometer, last_oil_change_odometer, last_oil_change_at, is_active, created_at, updated_at`

type vehicleRepository struct {
	db *pgxpool.Pool
}

// NewVehicleRepository создает новый экземпляр vehicleRepository
func NewVehicleRepository(db *pgxpool.Pool) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

func scanVehicle(row pgx.Row) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	err := row.Scan(
		&v.ID,
		&v.ManagementCodeID,
		&v.Name,
		&v.LicensePlate,
		&v.Model,
		&v.Capacity,
		&v.FuelType,
		&v.CurrentOdometer,
		&v.LastOilChangeOdometer,
		&v.LastOilChangeAt,
		&v.IsActive,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, management_code_id, name, license_plate, model, capacity, fuel_type,
			current_odometer, last_oil_change_odometer, last_oil_change_at, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	vehicle.ID = uuid.New()
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = vehicle.CreatedAt

	// Нормализуем номер перед сохранением
	vehicle.LicensePlate = domain.NormalizeLicensePlate(vehicle.LicensePlate)

	_, err := r.db.Exec(ctx, query,
		vehicle.ID,
		vehicle.ManagementCodeID,
		vehicle.Name,
		vehicle.LicensePlate,
		vehicle.Model,
		vehicle.Capacity,
		vehicle.FuelType,
		vehicle.CurrentOdometer,
		vehicle.LastOilChangeOdometer,
		vehicle.LastOilChangeAt,
		vehicle.IsActive,
		vehicle.CreatedAt,
		vehicle.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrVehicleAlreadyExists
		}
		return err
	}

	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, scope, id uuid.UUID) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1 AND management_code_id = $2`

	v, err := scanVehicle(r.db.QueryRow(ctx, query, id, scope))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVehicleNotFound
		}
		return nil, err
	}

	return v, nil
}

func (r *vehicleRepository) List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		WHERE management_code_id = $1 AND ($2 = false OR is_active)
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query, scope, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}

	return vehicles, rows.Err()
}

func (r *vehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		UPDATE vehicles
		SET name = $3, license_plate = $4, model = $5, capacity = $6, fuel_type = $7,
			current_odometer = $8, last_oil_change_odometer = $9, is_active = $10, updated_at = $11
		WHERE id = $1 AND management_code_id = $2
	`

	vehicle.UpdatedAt = time.Now()
	vehicle.LicensePlate = domain.NormalizeLicensePlate(vehicle.LicensePlate)

	result, err := r.db.Exec(ctx, query,
		vehicle.ID,
		vehicle.ManagementCodeID,
		vehicle.Name,
		vehicle.LicensePlate,
		vehicle.Model,
		vehicle.Capacity,
		vehicle.FuelType,
		vehicle.CurrentOdometer,
		vehicle.LastOilChangeOdometer,
		vehicle.IsActive,
		vehicle.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrVehicleAlreadyExists
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrVehicleNotFound
	}

	return nil
}

func (r *vehicleRepository) Deactivate(ctx context.Context, scope, id uuid.UUID) error {
	query := `
		UPDATE vehicles
		SET is_active = false, updated_at = $3
		WHERE id = $1 AND management_code_id = $2
	`

	result, err := r.db.Exec(ctx, query, id, scope, time.Now())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrVehicleNotFound
	}

	return nil
}

func (r *vehicleRepository) RecordOilChange(ctx context.Context, scope, id uuid.UUID, odometer int, at time.Time) (*domain.Vehicle, error) {
	// Пробег машины не может быть меньше пробега замены
	query := `
		UPDATE vehicles
		SET last_oil_change_odometer = $3,
			current_odometer = GREATEST(current_odometer, $3),
			last_oil_change_at = $4,
			updated_at = $4
		WHERE id = $1 AND management_code_id = $2
		RETURNING ` + vehicleColumns

	v, err := scanVehicle(r.db.QueryRow(ctx, query, id, scope, odometer, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVehicleNotFound
		}
		return nil, err
	}

	return v, nil
}
