package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema holds the idempotent DDL for all tracker tables. It runs on
// startup; CREATE IF NOT EXISTS keeps repeated runs harmless.
const schema = `
CREATE TABLE IF NOT EXISTS products (
	id                    BIGSERIAL PRIMARY KEY,
	url                   TEXT NOT NULL UNIQUE,
	domain                TEXT NOT NULL,
	name                  TEXT,
	image_url             TEXT,
	current_price         DOUBLE PRECISION,
	currency              TEXT NOT NULL DEFAULT 'EUR',
	target_price          DOUBLE PRECISION,
	check_interval_hours  INTEGER NOT NULL DEFAULT 24,
	status                TEXT NOT NULL DEFAULT 'active',
	tags                  TEXT,
	notes                 TEXT,
	consecutive_failures  INTEGER NOT NULL DEFAULT 0,
	last_error_message    TEXT,
	last_checked_at       TIMESTAMPTZ,
	last_success_at       TIMESTAMPTZ,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_products_due
	ON products (status, last_checked_at);
CREATE INDEX IF NOT EXISTS idx_products_domain
	ON products (domain);

CREATE TABLE IF NOT EXISTS price_observations (
	id                BIGSERIAL PRIMARY KEY,
	product_id        BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	price             DOUBLE PRECISION,
	currency          TEXT NOT NULL DEFAULT 'EUR',
	is_promo          BOOLEAN NOT NULL DEFAULT FALSE,
	promo_percentage  DOUBLE PRECISION,
	source            TEXT NOT NULL DEFAULT 'scheduler',
	fetch_duration_ms BIGINT NOT NULL DEFAULT 0,
	recorded_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_observations_product_time
	ON price_observations (product_id, recorded_at DESC);

CREATE TABLE IF NOT EXISTS alerts (
	id               BIGSERIAL PRIMARY KEY,
	product_id       BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	type             TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'unread',
	old_price        DOUBLE PRECISION,
	new_price        DOUBLE PRECISION NOT NULL,
	drop_percentage  DOUBLE PRECISION,
	message          TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	read_at          TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_alerts_product_type_time
	ON alerts (product_id, type, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_alerts_status
	ON alerts (status);

CREATE TABLE IF NOT EXISTS parser_configs (
	id                      BIGSERIAL PRIMARY KEY,
	domain                  TEXT NOT NULL UNIQUE,
	requires_browser        BOOLEAN NOT NULL DEFAULT FALSE,
	price_selectors         JSONB NOT NULL DEFAULT '{}',
	name_selectors          JSONB NOT NULL DEFAULT '{}',
	image_selectors         JSONB NOT NULL DEFAULT '{}',
	availability_selectors  JSONB NOT NULL DEFAULT '{}',
	rate_limit_seconds      INTEGER NOT NULL DEFAULT 0,
	max_retries             INTEGER NOT NULL DEFAULT 0,
	is_active               BOOLEAN NOT NULL DEFAULT TRUE,
	created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
