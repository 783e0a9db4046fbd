package schedule

import (
	"context"
	"time"

	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/types/common"
)

// PlanRepository loads PM plans together with their scheduling anchor.
type PlanRepository interface {
	// GetPlan returns the plan with the owning asset's start date populated.
	// Returns ErrCodePlanNotFound when no such plan exists.
	GetPlan(ctx context.Context, planID common.ID) (*PMPlan, error)
}

// TaskRepository loads the recurring tasks of a plan.
type TaskRepository interface {
	// GetTask returns a single task.  Returns ErrCodeTaskNotFound when no
	// such task exists.
	GetTask(ctx context.Context, taskID common.ID) (*PMTask, error)

	// ListTasksByPlan returns every task belonging to planID, in creation
	// order.  An empty slice is not an error.
	ListTasksByPlan(ctx context.Context, planID common.ID) ([]*PMTask, error)
}

// SignoffRepository persists task signoffs.  Implementations must run each
// multi-row method in a single transaction and surface violations of the
// one-pending-per-task constraint as ErrCodeDuplicatePendingSignoff.
type SignoffRepository interface {
	// InsertBatch inserts all signoffs atomically.
	InsertBatch(ctx context.Context, signoffs []*TaskSignoff) error

	// GetPendingByTask returns the open signoff for taskID, or
	// ErrCodeSignoffNotFound when the task has none.
	GetPendingByTask(ctx context.Context, taskID common.ID) (*TaskSignoff, error)

	// UpsertPendingDueDate moves the open signoff of taskID to dueDate,
	// recording updatedBy on the moved row, or creates one attributed to
	// updatedBy when none exists.  Returns the affected signoff.
	UpsertPendingDueDate(ctx context.Context, taskID common.ID, dueDate time.Time, updatedBy common.UserID) (*TaskSignoff, error)

	// CompleteAndInsertNext marks signoffID completed and, when next is
	// non-nil, inserts the following occurrence in the same transaction.
	CompleteAndInsertNext(ctx context.Context, signoffID common.ID, completedBy common.UserID, completedAt time.Time, notes string, next *TaskSignoff) (*TaskSignoff, error)

	// ListPending returns the joined pending-signoff view ordered by due
	// date ascending.
	ListPending(ctx context.Context) ([]*PendingSignoffView, error)
}
