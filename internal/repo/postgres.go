package repo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/nexustask/internal/model"
)

const schema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		namespace  TEXT PRIMARY KEY,
		payload    JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresRepo stores the snapshot as one JSONB row keyed by namespace.
type PostgresRepo struct {
	pool      *pgxpool.Pool
	namespace string
}

func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{
		pool:      pool,
		namespace: Namespace,
	}
}

func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return r.mapError(err)
}

func (r *PostgresRepo) Load(ctx context.Context) ([]json.RawMessage, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `
		SELECT payload FROM snapshots WHERE namespace = $1
	`, r.namespace).Scan(&payload)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, r.mapError(err)
	}
	return decodeSnapshot(payload)
}

func (r *PostgresRepo) Save(ctx context.Context, tasks []model.Task) error {
	payload, err := encodeSnapshot(tasks)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO snapshots (namespace, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (namespace) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = now()
	`, r.namespace, payload)
	return r.mapError(err)
}

func (r *PostgresRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// undefined_table: the schema was never created
		if pgErr.Code == "42P01" {
			return errors.Join(ErrorUnavailable, err)
		}
	}
	return err
}
