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

// Пассажиры хранятся в таблице users
const riderColumns = `id, management_code_id, full_name, phone, medical_notes, assistance_notes, is_active, created_at, updated_at`

const addressColumns = `id, user_id, address_type, address, is_primary, created_at, updated_at`

// riderRepository - PostgreSQL реализация RiderRepository
type riderRepository struct {
	db *pgxpool.Pool
}

// NewRiderRepository создает новый экземпляр riderRepository
func NewRiderRepository(db *pgxpool.Pool) repository.RiderRepository {
	return &riderRepository{db: db}
}

func scanRider(row pgx.Row) (*domain.Rider, error) {
	rd := &domain.Rider{}
	err := row.Scan(
		&rd.ID,
		&rd.ManagementCodeID,
		&rd.FullName,
		&rd.Phone,
		&rd.MedicalNotes,
		&rd.AssistanceNotes,
		&rd.IsActive,
		&rd.CreatedAt,
		&rd.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rd, nil
}

func scanAddress(row pgx.Row) (*domain.Address, error) {
	a := &domain.Address{}
	err := row.Scan(&a.ID, &a.RiderID, &a.Type, &a.Address, &a.IsPrimary, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *riderRepository) Create(ctx context.Context, rider *domain.Rider) error {
	rider.ID = uuid.New()
	rider.CreatedAt = time.Now()
	rider.UpdatedAt = rider.CreatedAt

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, management_code_id, full_name, phone, medical_notes, assistance_notes, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			rider.ID,
			rider.ManagementCodeID,
			rider.FullName,
			rider.Phone,
			rider.MedicalNotes,
			rider.AssistanceNotes,
			rider.IsActive,
			rider.CreatedAt,
			rider.UpdatedAt,
		)
		if err != nil {
			return err
		}

		for _, addr := range rider.Addresses {
			addr.RiderID = rider.ID
			if err := insertAddress(ctx, tx, addr); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertAddress(ctx context.Context, tx pgx.Tx, addr *domain.Address) error {
	addr.ID = uuid.New()
	addr.CreatedAt = time.Now()
	addr.UpdatedAt = addr.CreatedAt

	_, err := tx.Exec(ctx, `
		INSERT INTO user_addresses (id, user_id, address_type, address, is_primary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, addr.ID, addr.RiderID, addr.Type, addr.Address, addr.IsPrimary, addr.CreatedAt, addr.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPrimaryAddressNeeded
		}
		return err
	}
	return nil
}

func (r *riderRepository) GetByID(ctx context.Context, scope, id uuid.UUID) (*domain.Rider, error) {
	query := `SELECT ` + riderColumns + ` FROM users WHERE id = $1 AND management_code_id = $2`

	rd, err := scanRider(r.db.QueryRow(ctx, query, id, scope))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRiderNotFound
		}
		return nil, err
	}

	if err := r.attachAddresses(ctx, []*domain.Rider{rd}); err != nil {
		return nil, err
	}

	return rd, nil
}

func (r *riderRepository) List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Rider, error) {
	query := `
		SELECT ` + riderColumns + `
		FROM users
		WHERE management_code_id = $1 AND ($2 = false OR is_active)
		ORDER BY full_name
	`
	return r.list(ctx, query, scope, activeOnly)
}

func (r *riderRepository) ListByIDs(ctx context.Context, scope uuid.UUID, ids []uuid.UUID) ([]*domain.Rider, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + riderColumns + `
		FROM users
		WHERE management_code_id = $1 AND id = ANY($2) AND is_active
		ORDER BY full_name
	`
	return r.list(ctx, query, scope, ids)
}

func (r *riderRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Rider, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var riders []*domain.Rider
	for rows.Next() {
		rd, err := scanRider(rows)
		if err != nil {
			return nil, err
		}
		riders = append(riders, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachAddresses(ctx, riders); err != nil {
		return nil, err
	}

	return riders, nil
}

// attachAddresses загружает адреса пассажиров одним запросом, основной адрес первым
func (r *riderRepository) attachAddresses(ctx context.Context, riders []*domain.Rider) error {
	if len(riders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Rider, len(riders))
	ids := make([]uuid.UUID, 0, len(riders))
	for _, rd := range riders {
		byID[rd.ID] = rd
		ids = append(ids, rd.ID)
	}

	query := `
		SELECT ` + addressColumns + `
		FROM user_addresses
		WHERE user_id = ANY($1)
		ORDER BY user_id, is_primary DESC, created_at
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return err
		}
		if rd, ok := byID[a.RiderID]; ok {
			rd.Addresses = append(rd.Addresses, a)
		}
	}

	return rows.Err()
}

func (r *riderRepository) Update(ctx context.Context, rider *domain.Rider) error {
	query := `
		UPDATE users
		SET full_name = $3, phone = $4, medical_notes = $5, assistance_notes = $6, is_active = $7, updated_at = $8
		WHERE id = $1 AND management_code_id = $2
	`

	rider.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx, query,
		rider.ID,
		rider.ManagementCodeID,
		rider.FullName,
		rider.Phone,
		rider.MedicalNotes,
		rider.AssistanceNotes,
		rider.IsActive,
		rider.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRiderNotFound
	}

	return nil
}

func (r *riderRepository) Deactivate(ctx context.Context, scope, id uuid.UUID) error {
	query := `
		UPDATE users
		SET is_active = false, updated_at = $3
		WHERE id = $1 AND management_code_id = $2
	`

	result, err := r.db.Exec(ctx, query, id, scope, time.Now())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRiderNotFound
	}

	return nil
}

// riderInScope проверяет принадлежность пассажира коду и блокирует строку до конца транзакции
func riderInScope(ctx context.Context, tx pgx.Tx, scope, riderID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx,
		`SELECT id FROM users WHERE id = $1 AND management_code_id = $2 FOR UPDATE`,
		riderID, scope,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRiderNotFound
		}
		return err
	}
	return nil
}

func (r *riderRepository) AddAddress(ctx context.Context, scope uuid.UUID, addr *domain.Address) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := riderInScope(ctx, tx, scope, addr.RiderID); err != nil {
			return err
		}

		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM user_addresses WHERE user_id = $1`, addr.RiderID).Scan(&count); err != nil {
			return err
		}
		// Первый адрес всегда основной
		if count == 0 {
			addr.IsPrimary = true
		}

		if addr.IsPrimary {
			if _, err := tx.Exec(ctx, `UPDATE user_addresses SET is_primary = false WHERE user_id = $1`, addr.RiderID); err != nil {
				return err
			}
		}

		return insertAddress(ctx, tx, addr)
	})
}

func (r *riderRepository) UpdateAddress(ctx context.Context, scope uuid.UUID, addr *domain.Address) error {
	query := `
		UPDATE user_addresses a
		SET address_type = $3, address = $4, updated_at = $5
		FROM users u
		WHERE a.id = $1 AND a.user_id = $2 AND u.id = a.user_id AND u.management_code_id = $6
		RETURNING a.is_primary, a.created_at
	`

	addr.UpdatedAt = time.Now()

	err := r.db.QueryRow(ctx, query,
		addr.ID,
		addr.RiderID,
		addr.Type,
		addr.Address,
		addr.UpdatedAt,
		scope,
	).Scan(&addr.IsPrimary, &addr.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAddressNotFound
		}
		return err
	}

	return nil
}

func (r *riderRepository) DeleteAddress(ctx context.Context, scope, riderID, addressID uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := riderInScope(ctx, tx, scope, riderID); err != nil {
			return err
		}

		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM user_addresses WHERE user_id = $1`, riderID).Scan(&count); err != nil {
			return err
		}

		var wasPrimary bool
		err := tx.QueryRow(ctx, `
			DELETE FROM user_addresses
			WHERE id = $1 AND user_id = $2
			RETURNING is_primary
		`, addressID, riderID).Scan(&wasPrimary)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrAddressNotFound
			}
			return err
		}

		if count <= 1 {
			return domain.ErrLastAddress
		}

		if wasPrimary {
			_, err := tx.Exec(ctx, `
				UPDATE user_addresses
				SET is_primary = true, updated_at = NOW()
				WHERE id = (
					SELECT id FROM user_addresses WHERE user_id = $1 ORDER BY created_at LIMIT 1
				)
			`, riderID)
			return err
		}
		return nil
	})
}

func (r *riderRepository) SetPrimaryAddress(ctx context.Context, scope, riderID, addressID uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := riderInScope(ctx, tx, scope, riderID); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `UPDATE user_addresses SET is_primary = false WHERE user_id = $1 AND id <> $2`, riderID, addressID); err != nil {
			return err
		}

		result, err := tx.Exec(ctx, `
			UPDATE user_addresses
			SET is_primary = true, updated_at = NOW()
			WHERE id = $1 AND user_id = $2
		`, addressID, riderID)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return domain.ErrAddressNotFound
		}
		return nil
	})
}
