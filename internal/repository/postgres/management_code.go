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

const managementCodeColumns = `id, organization_id, code, is_active, created_at, deactivated_at`

// managementCodeRepository - PostgreSQL реализация ManagementCodeRepository
type managementCodeRepository struct {
	db *pgxpool.Pool
}

// NewManagementCodeRepository создает новый экземпляр managementCodeRepository
func NewManagementCodeRepository(db *pgxpool.Pool) repository.ManagementCodeRepository {
	return &managementCodeRepository{db: db}
}

func (r *managementCodeRepository) Create(ctx context.Context, code *domain.ManagementCode) error {
	query := `
		INSERT INTO management_codes (id, organization_id, code, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	code.ID = uuid.New()
	code.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, query, code.ID, code.OrganizationID, code.Code, code.IsActive, code.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrManagementCodeExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrOrganizationNotFound
		}
		return err
	}

	return nil
}

func (r *managementCodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ManagementCode, error) {
	query := `SELECT ` + managementCodeColumns + ` FROM management_codes WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *managementCodeRepository) GetByCode(ctx context.Context, code string) (*domain.ManagementCode, error) {
	query := `SELECT ` + managementCodeColumns + ` FROM management_codes WHERE code = $1`
	return r.getOne(ctx, query, code)
}

func (r *managementCodeRepository) getOne(ctx context.Context, query string, arg interface{}) (*domain.ManagementCode, error) {
	code := &domain.ManagementCode{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&code.ID,
		&code.OrganizationID,
		&code.Code,
		&code.IsActive,
		&code.CreatedAt,
		&code.DeactivatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrManagementCodeNotFound
		}
		return nil, err
	}

	return code, nil
}

func (r *managementCodeRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.ManagementCode, error) {
	query := `
		SELECT ` + managementCodeColumns + `
		FROM management_codes
		WHERE organization_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []*domain.ManagementCode
	for rows.Next() {
		code := &domain.ManagementCode{}
		if err := rows.Scan(
			&code.ID,
			&code.OrganizationID,
			&code.Code,
			&code.IsActive,
			&code.CreatedAt,
			&code.DeactivatedAt,
		); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}

	return codes, rows.Err()
}

func (r *managementCodeRepository) Deactivate(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE management_codes
		SET is_active = false, deactivated_at = $2
		WHERE id = $1 AND is_active
	`

	result, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrManagementCodeNotFound
	}

	return nil
}
