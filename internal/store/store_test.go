package store_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"genforge/internal/store"
)

// migrationsDir returns the absolute path to the migrations directory.
func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// setupTestDB spins up a Postgres container, runs migrations, and returns a pool + cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("genforge_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	err = store.RunMigrations(connStr, migrationsDir())
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return pool
}

func TestRecordJob_AndListRecent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	job := &store.JobRecord{
		ID:   uuid.New(),
		Kind: "sdxl",
		Params: map[string]any{
			"prompt": "a mountain lake at dawn",
			"width":  float64(1024),
			"height": float64(1024),
		},
		SavedFiles: []string{"output/1700000000.png"},
		DurationMS: 4215,
		CreatedAt:  now,
	}
	require.NoError(t, s.RecordJob(ctx, job))

	jobs, err := s.ListRecentJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	got := jobs[0]
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, "sdxl", got.Kind)
	assert.Equal(t, "a mountain lake at dawn", got.Params["prompt"])
	assert.Equal(t, float64(1024), got.Params["width"])
	assert.Equal(t, []string{"output/1700000000.png"}, got.SavedFiles)
	assert.Equal(t, int64(4215), got.DurationMS)
	assert.Equal(t, now, got.CreatedAt.UTC().Truncate(time.Microsecond))
}

func TestListRecentJobs_NewestFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Microsecond)
	kinds := []string{"sdxl", "wan", "sdxl-upscale"}
	for i, kind := range kinds {
		require.NoError(t, s.RecordJob(ctx, &store.JobRecord{
			ID:         uuid.New(),
			Kind:       kind,
			Params:     map[string]any{},
			SavedFiles: []string{},
			DurationMS: int64(i),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	jobs, err := s.ListRecentJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "sdxl-upscale", jobs[0].Kind)
	assert.Equal(t, "wan", jobs[1].Kind)
	assert.Equal(t, "sdxl", jobs[2].Kind)
}

func TestListRecentJobs_Limit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordJob(ctx, &store.JobRecord{
			ID:         uuid.New(),
			Kind:       "sdxl",
			Params:     map[string]any{"seed": float64(i)},
			SavedFiles: []string{},
			DurationMS: 1,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}))
	}

	jobs, err := s.ListRecentJobs(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestListRecentJobs_Empty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	jobs, err := s.ListRecentJobs(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestPing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	err := s.Ping(context.Background())
	assert.NoError(t, err)
}
