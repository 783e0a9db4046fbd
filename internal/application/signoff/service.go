// Package signoff provides the application-level service for the task
// signoff lifecycle.  This package serves as the interface between HTTP
// handlers and the scheduling domain logic.
package signoff

import (
	"context"
	"strings"
	"time"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/domain/schedule"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/errors"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/types/common"
)

// Service defines the signoff lifecycle operations.
type Service interface {
	// CreateInitialSignoffs seeds one pending signoff per recurring task of
	// a newly created plan, all in a single transaction.
	CreateInitialSignoffs(ctx context.Context, input *SeedInput) (*SeedResult, error)

	// UpdateDueDate moves a task's open signoff to a new date, creating the
	// signoff when the task has none.
	UpdateDueDate(ctx context.Context, input *UpdateDueDateInput) (*Signoff, error)

	// AdvanceOnCompletion closes a task's open signoff and, for recurring
	// tasks, schedules the next occurrence from the completion date.
	AdvanceOnCompletion(ctx context.Context, input *CompleteInput) (*CompleteResult, error)

	// ListPendingSignoffs returns every open signoff joined with its task,
	// plan, and asset, ordered by due date.
	ListPendingSignoffs(ctx context.Context) ([]*schedule.PendingSignoffView, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Inputs and DTOs
// ─────────────────────────────────────────────────────────────────────────────

// SeedInput contains input for seeding a plan's initial signoffs.
type SeedInput struct {
	PlanID common.ID
	UserID common.UserID
}

// SeedResult reports the outcome of a seeding run.
type SeedResult struct {
	PlanID   common.ID  `json:"plan_id"`
	Signoffs []*Signoff `json:"signoffs"`
	Skipped  int        `json:"skipped"`
}

// UpdateDueDateInput contains input for a manual due-date change.
// NewDueDate is the wire-format date supplied by the caller.
type UpdateDueDateInput struct {
	TaskID     common.ID
	NewDueDate string
	UserID     common.UserID
}

// CompleteInput contains input for completing a task's open signoff.
// CompletionDate defaults to today when empty.
type CompleteInput struct {
	TaskID         common.ID
	CompletionDate string
	Notes          string
	UserID         common.UserID
}

// CompleteResult carries the closed signoff and, for recurring tasks, the
// newly scheduled occurrence.
type CompleteResult struct {
	Completed *Signoff `json:"completed"`
	Next      *Signoff `json:"next,omitempty"`
}

// Signoff is the application-level signoff DTO.
type Signoff struct {
	ID          common.ID      `json:"id"`
	TaskID      common.ID      `json:"task_id"`
	DueDate     time.Time      `json:"due_date"`
	Status      string         `json:"status"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CompletedBy *common.UserID `json:"completed_by,omitempty"`
	CreatedBy   *common.UserID `json:"created_by,omitempty"`
	UpdatedBy   *common.UserID `json:"updated_by,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func domainToDTO(s *schedule.TaskSignoff) *Signoff {
	if s == nil {
		return nil
	}
	return &Signoff{
		ID:          s.ID,
		TaskID:      s.TaskID,
		DueDate:     s.DueDate,
		Status:      string(s.Status),
		CompletedAt: s.CompletedAt,
		CompletedBy: s.CompletedBy,
		CreatedBy:   s.CreatedBy,
		UpdatedBy:   s.UpdatedBy,
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Collaborator contracts
// ─────────────────────────────────────────────────────────────────────────────

// PendingCache is a best-effort read cache for the pending-signoff view.
// Implementations handle their own failures; a broken cache must behave
// like an empty one.
type PendingCache interface {
	GetPending(ctx context.Context) ([]*schedule.PendingSignoffView, bool)
	SetPending(ctx context.Context, views []*schedule.PendingSignoffView)
	InvalidatePending(ctx context.Context)
}

type nopCache struct{}

func (nopCache) GetPending(context.Context) ([]*schedule.PendingSignoffView, bool) {
	return nil, false
}
func (nopCache) SetPending(context.Context, []*schedule.PendingSignoffView) {}
func (nopCache) InvalidatePending(context.Context)                          {}

// NewNopCache returns a PendingCache that never hits.
func NewNopCache() PendingCache { return nopCache{} }

// Counter is the subset of prometheus.Counter the service needs.
type Counter interface {
	Inc()
	Add(float64)
}

// Metrics groups the service's counters.  Any field may be nil.
type Metrics struct {
	Seeded        Counter
	Advanced      Counter
	PendingRaces  Counter
	ParseFailures Counter
	CacheHits     Counter
	CacheMisses   Counter
}

func inc(c Counter) {
	if c != nil {
		c.Inc()
	}
}

func add(c Counter, n float64) {
	if c != nil {
		c.Add(n)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Service implementation
// ─────────────────────────────────────────────────────────────────────────────

// DefaultQueryTimeout bounds store access per request when no explicit
// timeout is configured.
const DefaultQueryTimeout = 5 * time.Second

type serviceImpl struct {
	plans        schedule.PlanRepository
	tasks        schedule.TaskRepository
	signoffs     schedule.SignoffRepository
	calc         *schedule.Calculator
	cache        PendingCache
	publisher    EventPublisher
	metrics      Metrics
	queryTimeout time.Duration
	logger       logging.Logger
	now          func() time.Time
}

// NewService creates the signoff lifecycle service.  cache and publisher may
// be nil; no-op implementations are substituted.  queryTimeout bounds the
// store calls of each operation; zero selects DefaultQueryTimeout.
func NewService(
	plans schedule.PlanRepository,
	tasks schedule.TaskRepository,
	signoffs schedule.SignoffRepository,
	calc *schedule.Calculator,
	cache PendingCache,
	publisher EventPublisher,
	metrics Metrics,
	queryTimeout time.Duration,
	logger logging.Logger,
) Service {
	if cache == nil {
		cache = NewNopCache()
	}
	if publisher == nil {
		publisher = NewNopPublisher()
	}
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}
	return &serviceImpl{
		plans:        plans,
		tasks:        tasks,
		signoffs:     signoffs,
		calc:         calc,
		cache:        cache,
		publisher:    publisher,
		metrics:      metrics,
		queryTimeout: queryTimeout,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// storeCtx derives the deadline-bounded context every store call runs under,
// so a hung connection fails the request instead of pinning the handler.
func (s *serviceImpl) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.queryTimeout)
}

func (s *serviceImpl) CreateInitialSignoffs(ctx context.Context, input *SeedInput) (*SeedResult, error) {
	if input.PlanID.IsZero() {
		return nil, errors.InvalidParam("plan_id is required")
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	plan, err := s.plans.GetPlan(ctx, input.PlanID)
	if err != nil {
		return nil, err
	}

	startDate, ok := plan.EffectiveStartDate()
	if !ok {
		startDate = s.today()
		s.logger.Warn("plan has no start date, seeding from today",
			logging.String("plan_id", plan.ID.String()),
			logging.Time("start_date", startDate),
		)
	}

	tasks, err := s.tasks.ListTasksByPlan(ctx, input.PlanID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, errors.New(errors.ErrCodePlanNoTasks, "no tasks found for plan").
			WithDetail("plan_id=" + input.PlanID.String())
	}

	result := &SeedResult{PlanID: input.PlanID}
	var records []*schedule.TaskSignoff
	for _, task := range tasks {
		months := s.parseInterval(task)
		if months <= 0 {
			result.Skipped++
			continue
		}
		due := s.calc.DueDate(startDate, months)
		records = append(records, schedule.NewPendingSignoff(task.ID, due, input.UserID))
	}

	if len(records) > 0 {
		if err := s.signoffs.InsertBatch(ctx, records); err != nil {
			if errors.IsConflict(err) {
				inc(s.metrics.PendingRaces)
			}
			return nil, err
		}
		add(s.metrics.Seeded, float64(len(records)))
		s.cache.InvalidatePending(ctx)
	}

	for _, r := range records {
		result.Signoffs = append(result.Signoffs, domainToDTO(r))
	}

	s.logger.Info("seeded initial signoffs",
		logging.String("plan_id", input.PlanID.String()),
		logging.Int("created", len(records)),
		logging.Int("skipped", result.Skipped),
	)
	s.publish(ctx, Event{
		Type:        EventTypeSeeded,
		OccurredAt:  s.now(),
		PlanID:      input.PlanID,
		ActorID:     input.UserID,
		SeededCount: len(records),
	})
	return result, nil
}

func (s *serviceImpl) UpdateDueDate(ctx context.Context, input *UpdateDueDateInput) (*Signoff, error) {
	if input.TaskID.IsZero() {
		return nil, errors.InvalidParam("task_id is required")
	}

	due, err := schedule.ParseDate(input.NewDueDate)
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidDueDate, "invalid due date").
			WithDetail(input.NewDueDate).WithCause(err)
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	task, err := s.tasks.GetTask(ctx, input.TaskID)
	if err != nil {
		return nil, err
	}

	updated, err := s.signoffs.UpsertPendingDueDate(ctx, task.ID, due, input.UserID)
	if err != nil {
		if errors.IsConflict(err) {
			inc(s.metrics.PendingRaces)
		}
		return nil, err
	}

	s.cache.InvalidatePending(ctx)
	s.logger.Info("updated task due date",
		logging.String("task_id", task.ID.String()),
		logging.Time("due_date", due),
	)
	s.publish(ctx, Event{
		Type:       EventTypeDueDateChanged,
		OccurredAt: s.now(),
		TaskID:     task.ID,
		SignoffID:  updated.ID,
		DueDate:    &updated.DueDate,
		ActorID:    input.UserID,
	})
	return domainToDTO(updated), nil
}

func (s *serviceImpl) AdvanceOnCompletion(ctx context.Context, input *CompleteInput) (*CompleteResult, error) {
	if input.TaskID.IsZero() {
		return nil, errors.InvalidParam("task_id is required")
	}

	completionDate := s.today()
	if input.CompletionDate != "" {
		parsed, err := schedule.ParseDate(input.CompletionDate)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidDueDate, "invalid completion date").
				WithDetail(input.CompletionDate).WithCause(err)
		}
		completionDate = parsed
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	task, err := s.tasks.GetTask(ctx, input.TaskID)
	if err != nil {
		return nil, err
	}

	current, err := s.signoffs.GetPendingByTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	var next *schedule.TaskSignoff
	if months := s.parseInterval(task); months > 0 {
		next = schedule.NewPendingSignoff(task.ID, s.calc.DueDate(completionDate, months), input.UserID)
	}

	completed, err := s.signoffs.CompleteAndInsertNext(ctx, current.ID, input.UserID, completionDate, input.Notes, next)
	if err != nil && errors.IsConflict(err) && next != nil {
		// Another writer already scheduled the next occurrence; record the
		// completion on its own.
		inc(s.metrics.PendingRaces)
		s.logger.Warn("next signoff already exists, completing without insert",
			logging.String("task_id", task.ID.String()),
			logging.String("signoff_id", current.ID.String()),
		)
		next = nil
		completed, err = s.signoffs.CompleteAndInsertNext(ctx, current.ID, input.UserID, completionDate, input.Notes, nil)
	}
	if err != nil {
		return nil, err
	}

	inc(s.metrics.Advanced)
	s.cache.InvalidatePending(ctx)

	event := Event{
		Type:       EventTypeCompleted,
		OccurredAt: s.now(),
		TaskID:     task.ID,
		SignoffID:  completed.ID,
		ActorID:    input.UserID,
	}
	if next != nil {
		event.NextDueDate = &next.DueDate
	}
	s.publish(ctx, event)

	s.logger.Info("completed signoff",
		logging.String("task_id", task.ID.String()),
		logging.String("signoff_id", completed.ID.String()),
		logging.Bool("recurring", next != nil),
	)
	return &CompleteResult{
		Completed: domainToDTO(completed),
		Next:      domainToDTO(next),
	}, nil
}

func (s *serviceImpl) ListPendingSignoffs(ctx context.Context) ([]*schedule.PendingSignoffView, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if views, ok := s.cache.GetPending(ctx); ok {
		inc(s.metrics.CacheHits)
		return views, nil
	}
	inc(s.metrics.CacheMisses)

	views, err := s.signoffs.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetPending(ctx, views)
	return views, nil
}

// parseInterval resolves a task's interval to months.  A blank interval is a
// legitimate non-recurring marker; only unrecognized text is logged and
// counted as a parse failure.
func (s *serviceImpl) parseInterval(task *schedule.PMTask) float64 {
	if strings.TrimSpace(task.MaintenanceInterval) == "" {
		return 0
	}
	months, ok := schedule.ParseInterval(task.MaintenanceInterval)
	if !ok {
		inc(s.metrics.ParseFailures)
		s.logger.Warn("unable to parse maintenance interval",
			logging.String("task_id", task.ID.String()),
			logging.String("interval", task.MaintenanceInterval),
		)
	}
	return months
}

func (s *serviceImpl) publish(ctx context.Context, event Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish lifecycle event",
			logging.String("event_type", event.Type),
			logging.Err(err),
		)
	}
}

func (s *serviceImpl) today() time.Time {
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}
