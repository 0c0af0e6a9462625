package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// RecordJob inserts one completed job.
func (s *PostgresStore) RecordJob(ctx context.Context, job *JobRecord) error {
	paramsJSON, err := json.Marshal(job.Params)
	if err != nil {
		return fmt.Errorf("marshal job params: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO jobs (id, kind, params, saved_files, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		job.ID, job.Kind, paramsJSON, job.SavedFiles, job.DurationMS, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("record job: %w", err)
	}
	return nil
}

// ListRecentJobs returns the newest jobs first.
func (s *PostgresStore) ListRecentJobs(ctx context.Context, limit int) ([]*JobRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, kind, params, saved_files, duration_ms, created_at
		 FROM jobs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*JobRecord
	for rows.Next() {
		var job JobRecord
		var paramsJSON []byte
		if err := rows.Scan(&job.ID, &job.Kind, &paramsJSON, &job.SavedFiles,
			&job.DurationMS, &job.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		if err := json.Unmarshal(paramsJSON, &job.Params); err != nil {
			return nil, fmt.Errorf("unmarshal job params: %w", err)
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}
