package favoriterepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yanqian/weather-dashboard/internal/domain/favorites"
)

// DB is the subset of pgxpool.Pool the repository relies on.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresRepository persists favorites in Postgres.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns the client's cities ordered by insertion.
func (r *PostgresRepository) List(ctx context.Context, clientID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT city
		FROM favorites
		WHERE client_id = $1
		ORDER BY id
	`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := make([]string, 0)
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, err
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

// Add inserts the city unless present. Adds for one client are serialized by a
// transaction-scoped advisory lock so the count guard cannot be raced past max.
func (r *PostgresRepository) Add(ctx context.Context, clientID, city string, max int) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := rollback(ctx, tx); rbErr != nil {
			err = errors.Join(err, rbErr)
		}
	}()

	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, clientID); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
		INSERT INTO favorites (client_id, city)
		SELECT $1, $2
		WHERE $3 <= 0 OR (SELECT count(*) FROM favorites WHERE client_id = $1) < $3
		ON CONFLICT (client_id, city) DO NOTHING
	`, clientID, city, max)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err = tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM favorites WHERE client_id = $1 AND city = $2)
		`, clientID, city).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return favorites.ErrLimitReached
		}
	}
	return tx.Commit(ctx)
}

// Remove deletes the city if present.
func (r *PostgresRepository) Remove(ctx context.Context, clientID, city string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM favorites
		WHERE client_id = $1 AND city = $2
	`, clientID, city)
	return err
}

func rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

var _ favorites.Repository = (*PostgresRepository)(nil)
