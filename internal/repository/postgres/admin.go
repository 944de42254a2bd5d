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

const adminColumns = `id, management_code_id, email, password_hash, full_name, role, is_active, created_at, updated_at, last_login_at`

// adminRepository - PostgreSQL реализация AdminRepository
type adminRepository struct {
	db *pgxpool.Pool
}

// NewAdminRepository создает новый экземпляр adminRepository
func NewAdminRepository(db *pgxpool.Pool) repository.AdminRepository {
	return &adminRepository{db: db}
}

func scanAdmin(row pgx.Row) (*domain.Admin, error) {
	admin := &domain.Admin{}
	err := row.Scan(
		&admin.ID,
		&admin.ManagementCodeID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.FullName,
		&admin.Role,
		&admin.IsActive,
		&admin.CreatedAt,
		&admin.UpdatedAt,
		&admin.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	query := `
		INSERT INTO admins (id, management_code_id, email, password_hash, full_name, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	admin.ID = uuid.New()
	admin.CreatedAt = time.Now()
	admin.UpdatedAt = admin.CreatedAt

	_, err := r.db.Exec(ctx, query,
		admin.ID,
		admin.ManagementCodeID,
		admin.Email,
		admin.PasswordHash,
		admin.FullName,
		admin.Role,
		admin.IsActive,
		admin.CreatedAt,
		admin.UpdatedAt,
	)

	if err != nil {
		// Проверяем ошибку уникальности email
		if isUniqueViolation(err) {
			return domain.ErrAdminAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrManagementCodeNotFound
		}
		return err
	}

	return nil
}

func (r *adminRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`

	admin, err := scanAdmin(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAdminNotFound
		}
		return nil, err
	}

	return admin, nil
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE email = $1`

	admin, err := scanAdmin(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAdminNotFound
		}
		return nil, err
	}

	return admin, nil
}

func (r *adminRepository) List(ctx context.Context, limit, offset int) ([]*domain.Admin, error) {
	query := `
		SELECT ` + adminColumns + `
		FROM admins
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []*domain.Admin
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, admin)
	}

	return admins, rows.Err()
}

func (r *adminRepository) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	query := `SELECT COUNT(*) FROM admins WHERE role = $1 AND is_active`

	var count int
	if err := r.db.QueryRow(ctx, query, role).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *adminRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE admins
		SET last_login_at = $2, updated_at = $2
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrAdminNotFound
	}

	return nil
}
