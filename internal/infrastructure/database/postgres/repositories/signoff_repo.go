package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/domain/schedule"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/errors"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/types/common"
)

// SignoffRepository implements schedule.SignoffRepository on PostgreSQL.
// The task_signoff table carries a partial unique index on (task_id) WHERE
// status = 'pending'; every write path here maps violations of it to
// ErrCodeDuplicatePendingSignoff.
type SignoffRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewSignoffRepository creates a PostgreSQL-backed signoff repository.
func NewSignoffRepository(pool *pgxpool.Pool, log logging.Logger) *SignoffRepository {
	return &SignoffRepository{pool: pool, logger: log}
}

const signoffColumns = `id, task_id, due_date, status, completed_at, completed_by,
       created_by, updated_by, notes, created_at, updated_at`

const insertSignoffQuery = `
INSERT INTO task_signoff (id, task_id, due_date, status, created_by, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// InsertBatch inserts all signoffs in a single transaction.  If any row
// violates the one-pending-per-task constraint the whole batch rolls back.
func (r *SignoffRepository) InsertBatch(ctx context.Context, signoffs []*schedule.TaskSignoff) error {
	if len(signoffs) == 0 {
		return nil
	}
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, s := range signoffs {
			if err := insertSignoff(ctx, tx, s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.logger.Debug("inserted signoff batch", logging.Int("count", len(signoffs)))
	return nil
}

// GetPendingByTask returns the open signoff for taskID.
func (r *SignoffRepository) GetPendingByTask(ctx context.Context, taskID common.ID) (*schedule.TaskSignoff, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+signoffColumns+` FROM task_signoff WHERE task_id = $1 AND status = 'pending'`,
		taskID.String())

	signoff, err := scanSignoff(row)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.New(errors.ErrCodeSignoffNotFound, "no pending signoff for task").
				WithDetail("task_id=" + taskID.String())
		}
		return nil, wrapDB(err, "failed to load pending signoff")
	}
	return signoff, nil
}

// UpsertPendingDueDate moves the open signoff of taskID to dueDate, creating
// one when the task has none.  Update and insert run in one transaction so a
// concurrent seeder cannot slip a second pending row in between.  The moved
// row records updatedBy; a fresh row records it as created_by.
func (r *SignoffRepository) UpsertPendingDueDate(ctx context.Context, taskID common.ID, dueDate time.Time, updatedBy common.UserID) (*schedule.TaskSignoff, error) {
	var by *string
	if !updatedBy.IsZero() {
		s := updatedBy.String()
		by = &s
	}

	var result *schedule.TaskSignoff
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
UPDATE task_signoff SET due_date = $2, updated_by = $3, updated_at = $4
WHERE task_id = $1 AND status = 'pending'
RETURNING `+signoffColumns,
			taskID.String(), dueDate, by, time.Now().UTC())

		signoff, err := scanSignoff(row)
		if err == nil {
			result = signoff
			return nil
		}
		if !isNoRows(err) {
			return wrapDB(err, "failed to update due date")
		}

		// No open signoff yet; create one at the requested date.
		fresh := schedule.NewPendingSignoff(taskID, dueDate, updatedBy)
		if err := insertSignoff(ctx, tx, fresh); err != nil {
			return err
		}
		result = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CompleteAndInsertNext marks signoffID completed and, when next is non-nil,
// inserts the following occurrence in the same transaction.
func (r *SignoffRepository) CompleteAndInsertNext(ctx context.Context, signoffID common.ID, completedBy common.UserID, completedAt time.Time, notes string, next *schedule.TaskSignoff) (*schedule.TaskSignoff, error) {
	var by *string
	if !completedBy.IsZero() {
		s := completedBy.String()
		by = &s
	}

	var completed *schedule.TaskSignoff
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
UPDATE task_signoff
SET status = 'completed', completed_at = $2, completed_by = $3, notes = $4, updated_at = $5
WHERE id = $1 AND status = 'pending'
RETURNING `+signoffColumns,
			signoffID.String(), completedAt, by, notes, time.Now().UTC())

		signoff, err := scanSignoff(row)
		if err != nil {
			if isNoRows(err) {
				return errors.New(errors.ErrCodeSignoffNotFound, "signoff is not pending").
					WithDetail("signoff_id=" + signoffID.String())
			}
			return wrapDB(err, "failed to complete signoff")
		}
		completed = signoff

		if next != nil {
			if err := insertSignoff(ctx, tx, next); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

const listPendingQuery = `
SELECT s.id, s.task_id, t.name, p.id, p.title, ca.id, ca.name, s.due_date, s.created_at
FROM task_signoff s
JOIN pm_tasks t ON t.id = s.task_id
JOIN pm_plans p ON p.id = t.pm_plan_id
JOIN child_assets ca ON ca.id = p.child_asset_id
WHERE s.status = 'pending'
ORDER BY s.due_date, s.created_at`

// ListPending returns the joined pending-signoff view ordered by due date.
func (r *SignoffRepository) ListPending(ctx context.Context) ([]*schedule.PendingSignoffView, error) {
	rows, err := r.pool.Query(ctx, listPendingQuery)
	if err != nil {
		return nil, wrapDB(err, "failed to list pending signoffs")
	}
	defer rows.Close()

	views := make([]*schedule.PendingSignoffView, 0)
	for rows.Next() {
		var (
			v                                  schedule.PendingSignoffView
			signoffID, taskID, planID, assetID string
		)
		err := rows.Scan(&signoffID, &taskID, &v.TaskName, &planID, &v.PlanTitle,
			&assetID, &v.AssetName, &v.DueDate, &v.CreatedAt)
		if err != nil {
			return nil, wrapDB(err, "failed to scan pending signoff")
		}
		v.SignoffID = common.ID(signoffID)
		v.TaskID = common.ID(taskID)
		v.PlanID = common.ID(planID)
		v.AssetID = common.ID(assetID)
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB(err, "failed to iterate pending signoffs")
	}
	return views, nil
}

// insertSignoff writes one signoff row, translating unique-index violations
// into the domain conflict error.
func insertSignoff(ctx context.Context, q queryer, s *schedule.TaskSignoff) error {
	var createdBy *string
	if s.CreatedBy != nil {
		v := s.CreatedBy.String()
		createdBy = &v
	}
	_, err := q.Exec(ctx, insertSignoffQuery,
		s.ID.String(), s.TaskID.String(), s.DueDate, string(s.Status), createdBy,
		s.Notes, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.New(errors.ErrCodeDuplicatePendingSignoff,
				"a pending signoff already exists for this task").
				WithDetail("task_id=" + s.TaskID.String()).WithCause(err)
		}
		return wrapDB(err, "failed to insert signoff")
	}
	return nil
}

func scanSignoff(row pgx.Row) (*schedule.TaskSignoff, error) {
	var (
		s           schedule.TaskSignoff
		id, taskID  string
		status      string
		completedBy *string
		createdBy   *string
		updatedBy   *string
		notes       *string
	)
	err := row.Scan(&id, &taskID, &s.DueDate, &status, &s.CompletedAt,
		&completedBy, &createdBy, &updatedBy, &notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.ID = common.ID(id)
	s.TaskID = common.ID(taskID)
	s.Status = schedule.SignoffStatus(status)
	if completedBy != nil {
		uid := common.UserID(*completedBy)
		s.CompletedBy = &uid
	}
	if createdBy != nil {
		uid := common.UserID(*createdBy)
		s.CreatedBy = &uid
	}
	if updatedBy != nil {
		uid := common.UserID(*updatedBy)
		s.UpdatedBy = &uid
	}
	if notes != nil {
		s.Notes = *notes
	}
	return &s, nil
}
