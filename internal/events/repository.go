// Package events implements the shared event-suggestion board: listing,
// creation, and owner-only deletion.
package events

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reindeer-games/backend/internal/models"
)

// ErrNotFound is returned when the referenced event does not exist.
var ErrNotFound = errors.New("event not found")

// Repository is the event persistence contract. The Postgres implementation
// is the real store; tests use in-memory fakes.
type Repository interface {
	// List returns all events, newest first.
	List(ctx context.Context) ([]models.Event, error)
	// Insert persists a new event with a server-assigned id and timestamp.
	Insert(ctx context.Context, ownerID, name, description string) (*models.Event, error)
	// GetOwner returns the owner id of an event, or ErrNotFound.
	GetOwner(ctx context.Context, id string) (string, error)
	// Delete removes an event. The owner filter is re-applied in the delete
	// itself, closing the window between the ownership check and the delete.
	Delete(ctx context.Context, id, ownerID string) error
	// LookupDisplayNames resolves display names for a set of owner ids.
	// Best effort: missing users are simply absent from the result.
	LookupDisplayNames(ctx context.Context, ownerIDs []string) (map[string]string, error)
}

// PostgresRepository implements Repository over a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the Postgres-backed event repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns all events ordered by creation time descending.
func (r *PostgresRepository) List(ctx context.Context) ([]models.Event, error) {
	const q = `SELECT id, user_id, name, description, created_at
		FROM possible_events ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Insert persists a new event row.
func (r *PostgresRepository) Insert(ctx context.Context, ownerID, name, description string) (*models.Event, error) {
	const q = `INSERT INTO possible_events (id, user_id, name, description)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at`
	e := models.Event{UserID: ownerID, Name: name, Description: description}
	if err := r.pool.QueryRow(ctx, q, ownerID, name, description).Scan(&e.ID, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetOwner returns the stored owner id for an event.
func (r *PostgresRepository) GetOwner(ctx context.Context, id string) (string, error) {
	const q = `SELECT user_id FROM possible_events WHERE id = $1`
	var ownerID string
	if err := r.pool.QueryRow(ctx, q, id).Scan(&ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return ownerID, nil
}

// Delete removes an event, filtering on owner as well as id.
func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID string) error {
	const q = `DELETE FROM possible_events WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LookupDisplayNames resolves display names from the local identity store
// metadata for the given owner ids.
func (r *PostgresRepository) LookupDisplayNames(ctx context.Context, ownerIDs []string) (map[string]string, error) {
	if len(ownerIDs) == 0 {
		return map[string]string{}, nil
	}
	const q = `SELECT id::text, COALESCE(metadata->>'name', metadata->>'full_name', '')
		FROM identity_users WHERE id::text = ANY($1)`
	rows, err := r.pool.Query(ctx, q, ownerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]string, len(ownerIDs))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		if name != "" {
			names[id] = name
		}
	}
	return names, rows.Err()
}
