// Package schedule contains the preventive-maintenance scheduling core:
// interval parsing, business-day calendar math, due-date calculation, and the
// entities the signoff lifecycle operates on.
package schedule

import (
	"time"

	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/types/common"
)

// SignoffStatus enumerates the lifecycle states of a task signoff.
type SignoffStatus string

const (
	// SignoffStatusPending marks the single open occurrence of a task.
	SignoffStatusPending SignoffStatus = "pending"
	// SignoffStatusCompleted marks a closed occurrence.
	SignoffStatusCompleted SignoffStatus = "completed"
)

// PMPlan is a preventive-maintenance plan attached to a child asset.
// AssetStartDate comes from the owning asset and is the scheduling anchor
// when the plan itself has no start date.
type PMPlan struct {
	ID             common.ID
	ChildAssetID   common.ID
	Title          string
	StartDate      *time.Time
	AssetStartDate *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EffectiveStartDate resolves the date initial signoffs are seeded from:
// the plan's own start date, else the owning asset's, else zero time.
func (p *PMPlan) EffectiveStartDate() (time.Time, bool) {
	if p.StartDate != nil {
		return *p.StartDate, true
	}
	if p.AssetStartDate != nil {
		return *p.AssetStartDate, true
	}
	return time.Time{}, false
}

// PMTask is a recurring maintenance task belonging to a plan.
// MaintenanceInterval is free-text operator input ("Monthly", "every 3
// months", "0.5", ...) interpreted by ParseInterval.
type PMTask struct {
	ID                  common.ID
	PlanID              common.ID
	Name                string
	MaintenanceInterval string
	Instructions        string
	EstimatedMinutes    int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TaskSignoff is one scheduled occurrence of a task.  At most one pending
// signoff may exist per task; the database enforces this with a partial
// unique index.
type TaskSignoff struct {
	ID          common.ID
	TaskID      common.ID
	DueDate     time.Time
	Status      SignoffStatus
	CompletedAt *time.Time
	CompletedBy *common.UserID
	CreatedBy   *common.UserID
	UpdatedBy   *common.UserID
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsPending reports whether the signoff is still open.
func (s *TaskSignoff) IsPending() bool { return s.Status == SignoffStatusPending }

// NewPendingSignoff constructs an open signoff for taskID due on dueDate,
// attributed to createdBy when known.
func NewPendingSignoff(taskID common.ID, dueDate time.Time, createdBy common.UserID) *TaskSignoff {
	now := time.Now().UTC()
	s := &TaskSignoff{
		ID:        common.NewID(),
		TaskID:    taskID,
		DueDate:   dueDate,
		Status:    SignoffStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !createdBy.IsZero() {
		s.CreatedBy = &createdBy
	}
	return s
}

// PendingSignoffView is the denormalised read model served to dashboards:
// each open signoff joined with its task, plan, and asset names.
type PendingSignoffView struct {
	SignoffID common.ID `json:"signoff_id"`
	TaskID    common.ID `json:"task_id"`
	TaskName  string    `json:"task_name"`
	PlanID    common.ID `json:"plan_id"`
	PlanTitle string    `json:"plan_title"`
	AssetID   common.ID `json:"asset_id"`
	AssetName string    `json:"asset_name"`
	DueDate   time.Time `json:"due_date"`
	CreatedAt time.Time `json:"created_at"`
}
