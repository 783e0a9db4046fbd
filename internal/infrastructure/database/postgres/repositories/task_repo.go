package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/domain/schedule"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/errors"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/types/common"
)

// TaskRepository implements schedule.TaskRepository on PostgreSQL.
type TaskRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewTaskRepository creates a PostgreSQL-backed task repository.
func NewTaskRepository(pool *pgxpool.Pool, log logging.Logger) *TaskRepository {
	return &TaskRepository{pool: pool, logger: log}
}

const taskColumns = `id, pm_plan_id, name, maintenance_interval, instructions,
       est_minutes, created_at, updated_at`

// GetTask returns a single task by ID.
func (r *TaskRepository) GetTask(ctx context.Context, taskID common.ID) (*schedule.PMTask, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM pm_tasks WHERE id = $1`, taskID.String())

	task, err := scanTask(row)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.New(errors.ErrCodeTaskNotFound, "task not found").
				WithDetail("task_id=" + taskID.String())
		}
		return nil, wrapDB(err, "failed to load task")
	}
	return task, nil
}

// ListTasksByPlan returns every task of a plan in creation order.
func (r *TaskRepository) ListTasksByPlan(ctx context.Context, planID common.ID) ([]*schedule.PMTask, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM pm_tasks WHERE pm_plan_id = $1 ORDER BY created_at, id`,
		planID.String())
	if err != nil {
		return nil, wrapDB(err, "failed to list tasks")
	}
	defer rows.Close()

	tasks := make([]*schedule.PMTask, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, wrapDB(err, "failed to scan task")
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB(err, "failed to iterate tasks")
	}
	return tasks, nil
}

func scanTask(row pgx.Row) (*schedule.PMTask, error) {
	var (
		task       schedule.PMTask
		id, planID string
	)
	err := row.Scan(&id, &planID, &task.Name, &task.MaintenanceInterval,
		&task.Instructions, &task.EstimatedMinutes, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	task.ID = common.ID(id)
	task.PlanID = common.ID(planID)
	return &task, nil
}
