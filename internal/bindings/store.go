// Package bindings links Discord accounts to their DJ persona on the
// playlist metadata service.
package bindings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wvrb/airmon/internal/db"
)

var (
	// ErrNotFound is returned when no binding exists for the given key.
	ErrNotFound = errors.New("bindings: not found")
	// ErrUnavailable is returned by a nil store, when the service runs
	// without a database.
	ErrUnavailable = errors.New("bindings: store unavailable")
)

// Binding pairs a Discord account with a DJ persona.
type Binding struct {
	DiscordID string    `json:"discord_id"`
	PersonaID int       `json:"persona_id"`
	BoundAt   time.Time `json:"bound_at"`
}

// Store persists bindings in Postgres. A nil store is valid and reports
// ErrUnavailable from every method.
type Store struct {
	pool *db.Pool
}

func NewStore(pool *db.Pool) *Store {
	if pool == nil {
		return nil
	}
	return &Store{pool: pool}
}

// Bind creates or replaces the binding for a Discord account.
func (s *Store) Bind(ctx context.Context, discordID string, personaID int) error {
	if s == nil {
		return ErrUnavailable
	}
	if _, err := s.pool.Exec(ctx, "binding_upsert", discordID, personaID); err != nil {
		return fmt.Errorf("upsert binding: %w", err)
	}
	return nil
}

// Unbind removes the binding for a Discord account.
func (s *Store) Unbind(ctx context.Context, discordID string) error {
	if s == nil {
		return ErrUnavailable
	}
	tag, err := s.pool.Exec(ctx, "binding_delete", discordID)
	if err != nil {
		return fmt.Errorf("delete binding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Whois resolves a Discord account to its persona.
func (s *Store) Whois(ctx context.Context, discordID string) (int, error) {
	if s == nil {
		return 0, ErrUnavailable
	}
	var personaID int
	err := s.pool.QueryRow(ctx, "binding_by_discord", discordID).Scan(&personaID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup binding: %w", err)
	}
	return personaID, nil
}

// ByPersona resolves a persona to the Discord account bound to it.
func (s *Store) ByPersona(ctx context.Context, personaID int) (string, error) {
	if s == nil {
		return "", ErrUnavailable
	}
	var discordID string
	err := s.pool.QueryRow(ctx, "binding_by_persona", personaID).Scan(&discordID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup binding: %w", err)
	}
	return discordID, nil
}

// List returns all bindings in the order they were created.
func (s *Store) List(ctx context.Context) ([]Binding, error) {
	if s == nil {
		return nil, ErrUnavailable
	}
	rows, err := s.pool.Query(ctx, "binding_list")
	if err != nil {
		return nil, fmt.Errorf("list bindings: %w", err)
	}
	defer rows.Close()

	var out []Binding
	for rows.Next() {
		var b Binding
		if err := rows.Scan(&b.DiscordID, &b.PersonaID, &b.BoundAt); err != nil {
			return nil, fmt.Errorf("scan binding: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Clean removes the bindings for personas that no longer exist upstream and
// returns how many were dropped.
func (s *Store) Clean(ctx context.Context, stalePersonaIDs []int) (int, error) {
	if s == nil {
		return 0, ErrUnavailable
	}
	if len(stalePersonaIDs) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, "binding_clean", stalePersonaIDs)
	if err != nil {
		return 0, fmt.Errorf("clean bindings: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
