package history

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/textcraft/internal/domain/generation"
	"github.com/yanqian/textcraft/internal/domain/textcraft"
)

const schema = `
CREATE TABLE IF NOT EXISTS generation_runs (
	id             UUID PRIMARY KEY,
	operation      TEXT NOT NULL,
	source         TEXT NOT NULL,
	filename       TEXT,
	model          TEXT NOT NULL,
	model_source   TEXT NOT NULL,
	input_chars    INTEGER NOT NULL,
	output_chars   INTEGER NOT NULL,
	length_factor  DOUBLE PRECISION,
	cached         BOOLEAN NOT NULL DEFAULT FALSE,
	latency_ms     BIGINT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS generation_runs_created_at_idx ON generation_runs (created_at DESC);
`

// PostgresRepository persists runs using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the runs table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

func (r *PostgresRepository) Append(ctx context.Context, run textcraft.Run) error {
	id, err := uuid.Parse(run.ID)
	if err != nil {
		return err
	}
	var filename *string
	if run.Filename != "" {
		filename = &run.Filename
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO generation_runs (id, operation, source, filename, model, model_source, input_chars, output_chars, length_factor, cached, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, id, string(run.Operation), string(run.Source), filename, run.Model, string(run.ModelSource),
		run.InputChars, run.OutputChars, run.LengthFactor, run.Cached, run.LatencyMs, run.CreatedAt)
	return err
}

func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]textcraft.Run, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, operation, source, filename, model, model_source, input_chars, output_chars, length_factor, cached, latency_ms, created_at
		FROM generation_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []textcraft.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func scanRun(row pgx.Row) (textcraft.Run, error) {
	var (
		run                            textcraft.Run
		id                             uuid.UUID
		operation, source, modelSource string
		filename                       *string
	)
	if err := row.Scan(&id, &operation, &source, &filename, &run.Model, &modelSource,
		&run.InputChars, &run.OutputChars, &run.LengthFactor, &run.Cached, &run.LatencyMs, &run.CreatedAt); err != nil {
		return textcraft.Run{}, err
	}
	run.ID = id.String()
	run.Operation = generation.Operation(operation)
	run.Source = textcraft.InputSource(source)
	run.ModelSource = generation.Source(modelSource)
	if filename != nil {
		run.Filename = *filename
	}
	return run, nil
}

var _ textcraft.HistoryRepository = (*PostgresRepository)(nil)
