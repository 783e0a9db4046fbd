//go:build integration

// Package integration exercises the signoff lifecycle end to end against a
// real PostgreSQL instance started with testcontainers.
//
// Run with: go test -tags integration ./test/integration/...
package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/application/signoff"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/config"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/domain/schedule"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/database/postgres"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/database/postgres/repositories"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/errors"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/types/common"
)

type env struct {
	pool *pgxpool.Pool
	svc  signoff.Service
	repo *repositories.SignoffRepository
}

func startPostgres(t *testing.T) (config.DatabaseConfig, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "arctecfox_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	_, thisFile, _, _ := runtime.Caller(0)
	migrationPath := filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations")

	cfg := config.DatabaseConfig{
		Host:          host,
		Port:          port.Int(),
		User:          "postgres",
		Password:      "postgres",
		DBName:        "arctecfox_test",
		SSLMode:       "disable",
		MaxConns:      5,
		MigrationPath: migrationPath,
	}
	return cfg, func() { _ = container.Terminate(ctx) }
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	logger := logging.NewNopLogger()

	cfg, terminate := startPostgres(t)
	t.Cleanup(terminate)

	require.NoError(t, postgres.Migrate(cfg, logger))

	conn, err := postgres.NewConnection(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	pool := conn.Pool()
	repo := repositories.NewSignoffRepository(pool, logger)
	svc := signoff.NewService(
		repositories.NewPlanRepository(pool, logger),
		repositories.NewTaskRepository(pool, logger),
		repo,
		schedule.NewCalculator(logger, nil),
		nil,
		nil,
		signoff.Metrics{},
		0,
		logger,
	)
	return &env{pool: pool, svc: svc, repo: repo}
}

func (e *env) createPlan(t *testing.T, startDate string, intervals ...string) (common.ID, []common.ID) {
	t.Helper()
	ctx := context.Background()

	var assetID string
	err := e.pool.QueryRow(ctx,
		`INSERT INTO child_assets (name, plan_start_date) VALUES ($1, $2) RETURNING id`,
		"pump-7", startDate).Scan(&assetID)
	require.NoError(t, err)

	var planID string
	err = e.pool.QueryRow(ctx,
		`INSERT INTO pm_plans (child_asset_id, title) VALUES ($1, $2) RETURNING id`,
		assetID, "pump-7 PM plan").Scan(&planID)
	require.NoError(t, err)

	taskIDs := make([]common.ID, 0, len(intervals))
	for i, interval := range intervals {
		var taskID string
		err = e.pool.QueryRow(ctx,
			`INSERT INTO pm_tasks (pm_plan_id, name, maintenance_interval) VALUES ($1, $2, $3) RETURNING id`,
			planID, fmt.Sprintf("task-%d", i), interval).Scan(&taskID)
		require.NoError(t, err)
		taskIDs = append(taskIDs, common.ID(taskID))
	}
	return common.ID(planID), taskIDs
}

func TestLifecycle_SeedCompleteAdvance(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	planID, taskIDs := e.createPlan(t, "2024-06-15", "Annually", "Monthly", "as needed")

	// Seed: two recurring tasks get pending signoffs, the third is skipped.
	result, err := e.svc.CreateInitialSignoffs(ctx, &signoff.SeedInput{PlanID: planID, UserID: "op-1"})
	require.NoError(t, err)
	assert.Len(t, result.Signoffs, 2)
	assert.Equal(t, 1, result.Skipped)

	views, err := e.svc.ListPendingSignoffs(ctx)
	require.NoError(t, err)
	assert.Len(t, views, 2)

	// The annual task lands on Sunday 2025-06-15 and is pulled to Friday,
	// attributed to the seeding user.
	annual, err := e.repo.GetPendingByTask(ctx, taskIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "2025-06-13", annual.DueDate.Format("2006-01-02"))
	require.NotNil(t, annual.CreatedBy)
	assert.Equal(t, common.UserID("op-1"), *annual.CreatedBy)

	// Complete the monthly task; the next occurrence is scheduled from the
	// completion date.
	completion, err := e.svc.AdvanceOnCompletion(ctx, &signoff.CompleteInput{
		TaskID:         taskIDs[1],
		CompletionDate: "2024-07-20",
		Notes:          "replaced filter",
		UserID:         "op-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", completion.Completed.Status)
	require.NotNil(t, completion.Next)
	// 2024-07-20 + 1 month = 2024-08-20 (Tuesday).
	assert.Equal(t, "2024-08-20", completion.Next.DueDate.Format("2006-01-02"))

	// Still exactly one pending signoff for that task.
	pending, err := e.repo.GetPendingByTask(ctx, taskIDs[1])
	require.NoError(t, err)
	assert.Equal(t, completion.Next.ID, pending.ID)

	// Completing again without a fresh pending for the annual task works too.
	_, err = e.svc.AdvanceOnCompletion(ctx, &signoff.CompleteInput{TaskID: taskIDs[0], UserID: "op-1"})
	require.NoError(t, err)
}

func TestLifecycle_DuplicatePendingRejectedByIndex(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, taskIDs := e.createPlan(t, "2024-06-15", "Monthly")
	taskID := taskIDs[0]

	first := schedule.NewPendingSignoff(taskID, time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC), "op-1")
	require.NoError(t, e.repo.InsertBatch(ctx, []*schedule.TaskSignoff{first}))

	second := schedule.NewPendingSignoff(taskID, time.Date(2024, time.August, 15, 0, 0, 0, 0, time.UTC), "op-1")
	err := e.repo.InsertBatch(ctx, []*schedule.TaskSignoff{second})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDuplicatePendingSignoff))
}

func TestLifecycle_UpdateDueDateUpsert(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, taskIDs := e.createPlan(t, "2024-06-15", "Quarterly")
	taskID := taskIDs[0]

	// No pending signoff yet: the update inserts one attributed to the caller.
	created, err := e.svc.UpdateDueDate(ctx, &signoff.UpdateDueDateInput{
		TaskID:     taskID,
		NewDueDate: "2024-09-02",
		UserID:     "op-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-09-02", created.DueDate.Format("2006-01-02"))
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, common.UserID("op-1"), *created.CreatedBy)

	// A second update moves the same row instead of inserting another and
	// overwrites updated_by.
	moved, err := e.svc.UpdateDueDate(ctx, &signoff.UpdateDueDateInput{
		TaskID:     taskID,
		NewDueDate: "2024-09-16",
		UserID:     "op-2",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, moved.ID)
	assert.Equal(t, "2024-09-16", moved.DueDate.Format("2006-01-02"))
	require.NotNil(t, moved.UpdatedBy)
	assert.Equal(t, common.UserID("op-2"), *moved.UpdatedBy)
}
