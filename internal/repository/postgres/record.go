package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// recordTables - пара таблиц и естественный ключ для типа записи
type recordTables struct {
	records  string
	details  string
	conflict string
}

func tablesFor(kind domain.RecordKind) (recordTables, error) {
	switch kind {
	case domain.RecordKindDelivery:
		return recordTables{
			records:  "delivery_records",
			details:  "delivery_details",
			conflict: "(driver_id, vehicle_id, route_id, service_date)",
		}, nil
	case domain.RecordKindTransportation:
		return recordTables{
			records:  "transportation_records",
			details:  "transportation_details",
			conflict: "(driver_id, vehicle_id, service_date)",
		}, nil
	}
	return recordTables{}, domain.ErrInvalidRecordKind
}

const recordSelect = `
	SELECT r.id, r.management_code_id, r.driver_id, r.vehicle_id, r.route_id, r.service_date,
		r.start_time, r.end_time, r.start_odometer, r.end_odometer, r.status, r.notes, r.cancel_reason,
		r.completed_at, r.created_at, r.updated_at,
		d.full_name, v.name, v.license_plate, COALESCE(rt.name, '')
	FROM %s r
	JOIN drivers d ON d.id = r.driver_id
	JOIN vehicles v ON v.id = r.vehicle_id
	LEFT JOIN routes rt ON rt.id = r.route_id
`

const detailColumns = `id, record_id, sequence, destination_id, rider_id, label, arrival_time, departure_time, notes, created_at, updated_at`

// recordRepository - PostgreSQL реализация RecordRepository
type recordRepository struct {
	db *pgxpool.Pool
}

// NewRecordRepository создает новый экземпляр recordRepository
func NewRecordRepository(db *pgxpool.Pool) repository.RecordRepository {
	return &recordRepository{db: db}
}

func scanRecord(row pgx.Row, kind domain.RecordKind) (*domain.Record, error) {
	rec := &domain.Record{Kind: kind}
	err := row.Scan(
		&rec.ID,
		&rec.ManagementCodeID,
		&rec.DriverID,
		&rec.VehicleID,
		&rec.RouteID,
		&rec.ServiceDate,
		&rec.StartTime,
		&rec.EndTime,
		&rec.StartOdometer,
		&rec.EndOdometer,
		&rec.Status,
		&rec.Notes,
		&rec.CancelReason,
		&rec.CompletedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.DriverName,
		&rec.VehicleName,
		&rec.VehiclePlate,
		&rec.RouteName,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func scanDetail(row pgx.Row) (*domain.Detail, error) {
	d := &domain.Detail{}
	err := row.Scan(
		&d.ID,
		&d.RecordID,
		&d.Sequence,
		&d.DestinationID,
		&d.RiderID,
		&d.Label,
		&d.ArrivalTime,
		&d.DepartureTime,
		&d.Notes,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Reconcile выполняет одну условную вставку по естественному ключу.
// Конкурентные вызовы сходятся на одной строке благодаря частичному уникальному индексу.
func (r *recordRepository) Reconcile(ctx context.Context, record *domain.Record, seeds []*domain.Detail) (bool, error) {
	t, err := tablesFor(record.Kind)
	if err != nil {
		return false, err
	}

	now := time.Now()
	newID := uuid.New()
	var created bool

	query := fmt.Sprintf(`
		INSERT INTO %[1]s AS t (id, management_code_id, driver_id, vehicle_id, route_id, service_date,
			start_time, start_odometer, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT %[2]s WHERE status <> 'cancelled'
		DO UPDATE SET updated_at = t.updated_at
		RETURNING t.id, (xmax = 0) AS inserted
	`, t.records, t.conflict)

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var id uuid.UUID
		err := tx.QueryRow(ctx, query,
			newID,
			record.ManagementCodeID,
			record.DriverID,
			record.VehicleID,
			record.RouteID,
			record.ServiceDate,
			record.StartTime,
			record.StartOdometer,
			record.Status,
			now,
		).Scan(&id, &created)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrInvalidRecordData
			}
			return err
		}
		record.ID = id

		if !created {
			return nil
		}

		insert := fmt.Sprintf(`
			INSERT INTO %s (id, record_id, sequence, destination_id, rider_id, label, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		`, t.details)

		for i, seed := range seeds {
			seed.ID = uuid.New()
			seed.RecordID = id
			seed.Sequence = i + 1
			seed.CreatedAt = now
			seed.UpdatedAt = now
			if _, err := tx.Exec(ctx, insert,
				seed.ID,
				seed.RecordID,
				seed.Sequence,
				seed.DestinationID,
				seed.RiderID,
				seed.Label,
				now,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

func (r *recordRepository) GetByID(ctx context.Context, kind domain.RecordKind, scope, id uuid.UUID) (*domain.Record, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(recordSelect, t.records) + ` WHERE r.id = $1 AND r.management_code_id = $2`

	rec, err := scanRecord(r.db.QueryRow(ctx, query, id, scope), kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE record_id = $1 ORDER BY sequence`, detailColumns, t.details),
		rec.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		rec.Details = append(rec.Details, d)
	}

	return rec, rows.Err()
}

// buildRecordFilter строит WHERE и аргументы для выборки записей
func buildRecordFilter(filter domain.RecordFilter) (string, []interface{}) {
	conditions := []string{"r.management_code_id = $1"}
	args := []interface{}{filter.ManagementCodeID}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.From != nil {
		add("r.service_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("r.service_date <= $%d", *filter.To)
	}
	if filter.DriverID != nil {
		add("r.driver_id = $%d", *filter.DriverID)
	}
	if filter.VehicleID != nil {
		add("r.vehicle_id = $%d", *filter.VehicleID)
	}
	if filter.RouteID != nil {
		add("r.route_id = $%d", *filter.RouteID)
	}
	if filter.Status != nil {
		add("r.status = $%d", *filter.Status)
	}

	where := " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY r.service_date DESC, d.full_name, r.created_at"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		where += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		where += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return where, args
}

func (r *recordRepository) List(ctx context.Context, filter domain.RecordFilter) ([]*domain.Record, error) {
	t, err := tablesFor(filter.Kind)
	if err != nil {
		return nil, err
	}

	where, args := buildRecordFilter(filter)
	query := fmt.Sprintf(recordSelect, t.records) + where

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows, filter.Kind)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// recordFieldValue возвращает значение поля записи для сохранения
func recordFieldValue(rec *domain.Record, field domain.RecordField) (interface{}, error) {
	switch field {
	case domain.FieldStartTime:
		return rec.StartTime, nil
	case domain.FieldEndTime:
		return rec.EndTime, nil
	case domain.FieldStartOdometer:
		return rec.StartOdometer, nil
	case domain.FieldEndOdometer:
		return rec.EndOdometer, nil
	case domain.FieldRecordNotes:
		return rec.Notes, nil
	}
	return nil, domain.ErrInvalidRecordField
}

func (r *recordRepository) SetRecordField(ctx context.Context, rec *domain.Record, field domain.RecordField) error {
	t, err := tablesFor(rec.Kind)
	if err != nil {
		return err
	}
	value, err := recordFieldValue(rec, field)
	if err != nil {
		return err
	}

	// Имя поля проверено выше, поэтому подставляется в запрос как имя колонки
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, updated_at = $4
		WHERE id = $1 AND management_code_id = $2 AND status <> 'cancelled'
		RETURNING status
	`, t.records, string(field))

	rec.UpdatedAt = time.Now()

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var status domain.RecordStatus
		err := tx.QueryRow(ctx, query, rec.ID, rec.ManagementCodeID, value, rec.UpdatedAt).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}
			return err
		}

		// Исправление конечного пробега завершенной записи двигает пробег машины
		if field != domain.FieldEndOdometer || status != domain.StatusCompleted || rec.EndOdometer == nil {
			return nil
		}
		return raiseVehicleOdometer(ctx, tx, rec.VehicleID, *rec.EndOdometer, rec.UpdatedAt)
	})
}

// raiseVehicleOdometer поднимает пробег машины; пробег только растет
func raiseVehicleOdometer(ctx context.Context, tx pgx.Tx, vehicleID uuid.UUID, km int, at time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE vehicles
		SET current_odometer = GREATEST(current_odometer, $2), updated_at = $3
		WHERE id = $1
	`, vehicleID, km, at)
	return err
}

func detailFieldValue(d *domain.Detail, field domain.DetailField) (interface{}, error) {
	switch field {
	case domain.FieldArrivalTime:
		return d.ArrivalTime, nil
	case domain.FieldDepartureTime:
		return d.DepartureTime, nil
	case domain.FieldDetailNotes:
		return d.Notes, nil
	}
	return nil, domain.ErrInvalidRecordField
}

func (r *recordRepository) SetDetailField(ctx context.Context, rec *domain.Record, detail *domain.Detail, field domain.DetailField) error {
	t, err := tablesFor(rec.Kind)
	if err != nil {
		return err
	}
	value, err := detailFieldValue(detail, field)
	if err != nil {
		return err
	}

	now := time.Now()
	detail.UpdatedAt = now
	rec.UpdatedAt = now

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`
			UPDATE %[1]s d
			SET %[3]s = $4, updated_at = $5
			FROM %[2]s r
			WHERE d.id = $1 AND d.record_id = $2 AND r.id = d.record_id
				AND r.management_code_id = $3 AND r.status <> 'cancelled'
		`, t.details, t.records, string(field))

		result, err := tx.Exec(ctx, query, detail.ID, rec.ID, rec.ManagementCodeID, value, now)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return domain.ErrDetailNotFound
		}

		// Отметка времени записи тоже обновляется
		_, err = tx.Exec(ctx, fmt.Sprintf(`UPDATE %s SET updated_at = $2 WHERE id = $1`, t.records), rec.ID, now)
		return err
	})
}

func (r *recordRepository) Transition(ctx context.Context, rec *domain.Record, from domain.RecordStatus) error {
	t, err := tablesFor(rec.Kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $4, start_time = $5, end_time = $6, start_odometer = $7, end_odometer = $8,
			cancel_reason = $9, completed_at = $10, updated_at = $11
		WHERE id = $1 AND management_code_id = $2 AND status = $3
	`, t.records)

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query,
			rec.ID,
			rec.ManagementCodeID,
			from,
			rec.Status,
			rec.StartTime,
			rec.EndTime,
			rec.StartOdometer,
			rec.EndOdometer,
			rec.CancelReason,
			rec.CompletedAt,
			rec.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return domain.ErrInvalidStatusTransition
		}

		if rec.Status != domain.StatusCompleted || rec.EndOdometer == nil {
			return nil
		}
		return raiseVehicleOdometer(ctx, tx, rec.VehicleID, *rec.EndOdometer, rec.UpdatedAt)
	})
}

func (r *recordRepository) Delete(ctx context.Context, kind domain.RecordKind, scope, id uuid.UUID) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND management_code_id = $2`, t.records),
		id, scope,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (r *recordRepository) LastEndOdometer(ctx context.Context, vehicleID uuid.UUID, onOrBefore time.Time) (*int, error) {
	query := `
		SELECT end_odometer FROM (
			SELECT end_odometer, service_date, updated_at
			FROM delivery_records
			WHERE vehicle_id = $1 AND end_odometer IS NOT NULL AND status <> 'cancelled' AND service_date <= $2
			UNION ALL
			SELECT end_odometer, service_date, updated_at
			FROM transportation_records
			WHERE vehicle_id = $1 AND end_odometer IS NOT NULL AND status <> 'cancelled' AND service_date <= $2
		) prior
		ORDER BY service_date DESC, updated_at DESC
		LIMIT 1
	`

	var km int
	err := r.db.QueryRow(ctx, query, vehicleID, onOrBefore).Scan(&km)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &km, nil
}
