package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const schema = `
CREATE TABLE IF NOT EXISTS dj_bindings (
	discord_id TEXT PRIMARY KEY,
	persona_id INTEGER NOT NULL UNIQUE,
	bound_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate applies the schema on a plain connection. It must run before the
// pool is created because the pool prepares statements referencing these
// tables on every new connection.
func Migrate(ctx context.Context, databaseURL string) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect for migration: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
