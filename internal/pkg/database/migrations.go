package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migrationStatements выполняются по порядку; каждая инструкция идемпотентна
var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS management_codes (
		id               UUID PRIMARY KEY,
		organization_id  UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		code             VARCHAR(6) NOT NULL UNIQUE,
		is_active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deactivated_at   TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_management_codes_org ON management_codes(organization_id);`,
	`CREATE TABLE IF NOT EXISTS admins (
		id                  UUID PRIMARY KEY,
		management_code_id  UUID REFERENCES management_codes(id),
		email               TEXT NOT NULL UNIQUE,
		password_hash       TEXT NOT NULL,
		full_name           TEXT NOT NULL,
		role                VARCHAR(16) NOT NULL,
		is_active           BOOLEAN NOT NULL DEFAULT TRUE,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_login_at       TIMESTAMPTZ
	);`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		subject_id    UUID NOT NULL,
		subject_role  VARCHAR(16) NOT NULL,
		session_id    UUID,
		token_hash    TEXT NOT NULL UNIQUE,
		expires_at    TIMESTAMPTZ NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		revoked_at    TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_subject ON refresh_tokens(subject_id);`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_session ON refresh_tokens(session_id) WHERE session_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_expires ON refresh_tokens(expires_at);`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id                  UUID PRIMARY KEY,
		management_code_id  UUID NOT NULL REFERENCES management_codes(id),
		full_name           TEXT NOT NULL,
		employee_number     VARCHAR(32) NOT NULL,
		password_hash       TEXT NOT NULL,
		phone               TEXT NOT NULL DEFAULT '',
		is_active           BOOLEAN NOT NULL DEFAULT TRUE,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (management_code_id, employee_number)
	);`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id                        UUID PRIMARY KEY,
		management_code_id        UUID NOT NULL REFERENCES management_codes(id),
		name                      TEXT NOT NULL,
		license_plate             VARCHAR(20) NOT NULL,
		model                     TEXT NOT NULL DEFAULT '',
		capacity                  INTEGER NOT NULL DEFAULT 0,
		fuel_type                 VARCHAR(16) NOT NULL DEFAULT 'gasoline',
		current_odometer          INTEGER NOT NULL DEFAULT 0 CHECK (current_odometer >= 0),
		last_oil_change_odometer  INTEGER NOT NULL DEFAULT 0 CHECK (last_oil_change_odometer >= 0),
		last_oil_change_at        TIMESTAMPTZ,
		is_active                 BOOLEAN NOT NULL DEFAULT TRUE,
		created_at                TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at                TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (management_code_id, license_plate)
	);`,
	`CREATE TABLE IF NOT EXISTS routes (
		id                  UUID PRIMARY KEY,
		management_code_id  UUID NOT NULL REFERENCES management_codes(id),
		code                VARCHAR(32) NOT NULL,
		name                TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		is_active           BOOLEAN NOT NULL DEFAULT TRUE,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (management_code_id, code)
	);`,
	`CREATE TABLE IF NOT EXISTS destinations (
		id             UUID PRIMARY KEY,
		route_id       UUID NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
		name           TEXT NOT NULL,
		address        TEXT NOT NULL DEFAULT '',
		display_order  INTEGER NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_destinations_route ON destinations(route_id, display_order);`,
	`CREATE TABLE IF NOT EXISTS users (
		id                  UUID PRIMARY KEY,
		management_code_id  UUID NOT NULL REFERENCES management_codes(id),
		full_name           TEXT NOT NULL,
		phone               TEXT NOT NULL DEFAULT '',
		medical_notes       TEXT NOT NULL DEFAULT '',
		assistance_notes    TEXT NOT NULL DEFAULT '',
		is_active           BOOLEAN NOT NULL DEFAULT TRUE,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS user_addresses (
		id            UUID PRIMARY KEY,
		user_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		address_type  VARCHAR(16) NOT NULL,
		address       TEXT NOT NULL,
		is_primary    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_user_addresses_primary ON user_addresses(user_id) WHERE is_primary;`,
	recordTableDDL("delivery_records"),
	recordTableDDL("transportation_records"),
	detailTableDDL("delivery_details", "delivery_records"),
	detailTableDDL("transportation_details", "transportation_records"),
	// Не более одной активной записи на водителя, машину, маршрут и дату
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_delivery_records_active
		ON delivery_records(driver_id, vehicle_id, route_id, service_date)
		WHERE status <> 'cancelled';`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_transportation_records_active
		ON transportation_records(driver_id, vehicle_id, service_date)
		WHERE status <> 'cancelled';`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_records_scope_date ON delivery_records(management_code_id, service_date);`,
	`CREATE INDEX IF NOT EXISTS idx_transportation_records_scope_date ON transportation_records(management_code_id, service_date);`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_records_vehicle ON delivery_records(vehicle_id, service_date DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_transportation_records_vehicle ON transportation_records(vehicle_id, service_date DESC);`,
}

func recordTableDDL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id                  UUID PRIMARY KEY,
		management_code_id  UUID NOT NULL REFERENCES management_codes(id),
		driver_id           UUID NOT NULL REFERENCES drivers(id),
		vehicle_id          UUID NOT NULL REFERENCES vehicles(id),
		route_id            UUID REFERENCES routes(id),
		service_date        DATE NOT NULL,
		start_time          VARCHAR(5),
		end_time            VARCHAR(5),
		start_odometer      INTEGER CHECK (start_odometer >= 0),
		end_odometer        INTEGER CHECK (end_odometer >= 0),
		status              VARCHAR(16) NOT NULL DEFAULT 'pending',
		notes               TEXT NOT NULL DEFAULT '',
		cancel_reason       TEXT NOT NULL DEFAULT '',
		completed_at        TIMESTAMPTZ,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`, table)
}

func detailTableDDL(table, recordTable string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id              UUID PRIMARY KEY,
		record_id       UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
		sequence        INTEGER NOT NULL,
		destination_id  UUID,
		rider_id        UUID,
		label           TEXT NOT NULL DEFAULT '',
		arrival_time    VARCHAR(5),
		departure_time  VARCHAR(5),
		notes           TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (record_id, sequence)
	);`, table, recordTable)
}

// Migrate применяет схему базы данных
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrationStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
