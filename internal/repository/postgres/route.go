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

const routeColumns = `id, management_code_id, code, name, description, is_active, created_at, updated_at`

const destinationColumns = `id, route_id, name, address, display_order, created_at, updated_at`

// routeRepository - PostgreSQL реализация RouteRepository
type routeRepository struct {
	db *pgxpool.Pool
}

// NewRouteRepository создает новый экземпляр routeRepository
func NewRouteRepository(db *pgxpool.Pool) repository.RouteRepository {
	return &routeRepository{db: db}
}

func scanRoute(row pgx.Row) (*domain.Route, error) {
	rt := &domain.Route{}
	err := row.Scan(
		&rt.ID,
		&rt.ManagementCodeID,
		&rt.Code,
		&rt.Name,
		&rt.Description,
		&rt.IsActive,
		&rt.CreatedAt,
		&rt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func scanDestination(row pgx.Row) (*domain.Destination, error) {
	d := &domain.Destination{}
	err := row.Scan(&d.ID, &d.RouteID, &d.Name, &d.Address, &d.DisplayOrder, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *routeRepository) Create(ctx context.Context, route *domain.Route) error {
	route.ID = uuid.New()
	route.CreatedAt = time.Now()
	route.UpdatedAt = route.CreatedAt

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO routes (id, management_code_id, code, name, description, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			route.ID,
			route.ManagementCodeID,
			route.Code,
			route.Name,
			route.Description,
			route.IsActive,
			route.CreatedAt,
			route.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrRouteAlreadyExists
			}
			return err
		}

		for _, dest := range route.Destinations {
			dest.RouteID = route.ID
			if err := insertDestination(ctx, tx, dest); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertDestination(ctx context.Context, tx pgx.Tx, dest *domain.Destination) error {
	dest.ID = uuid.New()
	dest.CreatedAt = time.Now()
	dest.UpdatedAt = dest.CreatedAt

	_, err := tx.Exec(ctx, `
		INSERT INTO destinations (id, route_id, name, address, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, dest.ID, dest.RouteID, dest.Name, dest.Address, dest.DisplayOrder, dest.CreatedAt, dest.UpdatedAt)
	return err
}

func (r *routeRepository) GetByID(ctx context.Context, scope, id uuid.UUID) (*domain.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = $1 AND management_code_id = $2`

	rt, err := scanRoute(r.db.QueryRow(ctx, query, id, scope))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRouteNotFound
		}
		return nil, err
	}

	if err := r.attachDestinations(ctx, []*domain.Route{rt}); err != nil {
		return nil, err
	}

	return rt, nil
}

func (r *routeRepository) List(ctx context.Context, scope uuid.UUID, activeOnly bool) ([]*domain.Route, error) {
	query := `
		SELECT ` + routeColumns + `
		FROM routes
		WHERE management_code_id = $1 AND ($2 = false OR is_active)
		ORDER BY code
	`

	rows, err := r.db.Query(ctx, query, scope, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []*domain.Route
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachDestinations(ctx, routes); err != nil {
		return nil, err
	}

	return routes, nil
}

// attachDestinations загружает точки всех маршрутов одним запросом
func (r *routeRepository) attachDestinations(ctx context.Context, routes []*domain.Route) error {
	if len(routes) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Route, len(routes))
	ids := make([]uuid.UUID, 0, len(routes))
	for _, rt := range routes {
		byID[rt.ID] = rt
		ids = append(ids, rt.ID)
	}

	query := `
		SELECT ` + destinationColumns + `
		FROM destinations
		WHERE route_id = ANY($1)
		ORDER BY route_id, display_order, name
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return err
		}
		if rt, ok := byID[d.RouteID]; ok {
			rt.Destinations = append(rt.Destinations, d)
		}
	}

	return rows.Err()
}

func (r *routeRepository) Update(ctx context.Context, route *domain.Route) error {
	query := `
		UPDATE routes
		SET code = $3, name = $4, description = $5, is_active = $6, updated_at = $7
		WHERE id = $1 AND management_code_id = $2
	`

	route.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx, query,
		route.ID,
		route.ManagementCodeID,
		route.Code,
		route.Name,
		route.Description,
		route.IsActive,
		route.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrRouteAlreadyExists
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRouteNotFound
	}

	return nil
}

func (r *routeRepository) Delete(ctx context.Context, scope, id uuid.UUID) error {
	// Мягкое удаление - записи доставки ссылаются на маршрут
	query := `
		UPDATE routes
		SET is_active = false, updated_at = $3
		WHERE id = $1 AND management_code_id = $2
	`

	result, err := r.db.Exec(ctx, query, id, scope, time.Now())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRouteNotFound
	}

	return nil
}

// routeInScope проверяет принадлежность маршрута коду внутри транзакции
func routeInScope(ctx context.Context, tx pgx.Tx, scope, routeID uuid.UUID) error {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM routes WHERE id = $1 AND management_code_id = $2)`,
		routeID, scope,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrRouteNotFound
	}
	return nil
}

func (r *routeRepository) AddDestination(ctx context.Context, scope uuid.UUID, dest *domain.Destination) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := routeInScope(ctx, tx, scope, dest.RouteID); err != nil {
			return err
		}
		return insertDestination(ctx, tx, dest)
	})
}

func (r *routeRepository) UpdateDestination(ctx context.Context, scope uuid.UUID, dest *domain.Destination) error {
	query := `
		UPDATE destinations d
		SET name = $3, address = $4, display_order = $5, updated_at = $6
		FROM routes r
		WHERE d.id = $1 AND d.route_id = $2 AND r.id = d.route_id AND r.management_code_id = $7
	`

	dest.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx, query,
		dest.ID,
		dest.RouteID,
		dest.Name,
		dest.Address,
		dest.DisplayOrder,
		dest.UpdatedAt,
		scope,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrDestinationNotFound
	}

	return nil
}

func (r *routeRepository) DeleteDestination(ctx context.Context, scope, routeID, destID uuid.UUID) error {
	query := `
		DELETE FROM destinations d
		USING routes r
		WHERE d.id = $1 AND d.route_id = $2 AND r.id = d.route_id AND r.management_code_id = $3
	`

	result, err := r.db.Exec(ctx, query, destID, routeID, scope)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrDestinationNotFound
	}

	return nil
}

func (r *routeRepository) ReorderDestinations(ctx context.Context, scope, routeID uuid.UUID, orderedIDs []uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := routeInScope(ctx, tx, scope, routeID); err != nil {
			return err
		}

		now := time.Now()
		for i, id := range orderedIDs {
			result, err := tx.Exec(ctx, `
				UPDATE destinations
				SET display_order = $3, updated_at = $4
				WHERE id = $1 AND route_id = $2
			`, id, routeID, i+1, now)
			if err != nil {
				return err
			}
			if result.RowsAffected() == 0 {
				return domain.ErrDestinationNotFound
			}
		}
		return nil
	})
}
