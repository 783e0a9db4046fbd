package signoff

import (
	"context"
	"time"

	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/types/common"
)

// Lifecycle event types published to the message bus.
const (
	EventTypeSeeded         = "signoff.seeded"
	EventTypeDueDateChanged = "signoff.due_date_changed"
	EventTypeCompleted      = "signoff.completed"
)

// Event is a task-signoff lifecycle notification.  Events are advisory:
// publishing failures never roll back the database transaction that
// produced them.
type Event struct {
	Type        string        `json:"type"`
	OccurredAt  time.Time     `json:"occurred_at"`
	PlanID      common.ID     `json:"plan_id,omitempty"`
	TaskID      common.ID     `json:"task_id,omitempty"`
	SignoffID   common.ID     `json:"signoff_id,omitempty"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	NextDueDate *time.Time    `json:"next_due_date,omitempty"`
	ActorID     common.UserID `json:"actor_id,omitempty"`
	SeededCount int           `json:"seeded_count,omitempty"`
}

// EventPublisher delivers lifecycle events to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

// NewNopPublisher returns an EventPublisher that discards all events.  Used
// when Kafka is disabled and in tests.
func NewNopPublisher() EventPublisher { return nopPublisher{} }
