package signoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/domain/schedule"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/errors"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/types/common"
)

// mockPlanRepository is a mock implementation of schedule.PlanRepository.
type mockPlanRepository struct {
	mock.Mock
}

func (m *mockPlanRepository) GetPlan(ctx context.Context, planID common.ID) (*schedule.PMPlan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.PMPlan), args.Error(1)
}

// mockTaskRepository is a mock implementation of schedule.TaskRepository.
type mockTaskRepository struct {
	mock.Mock
}

func (m *mockTaskRepository) GetTask(ctx context.Context, taskID common.ID) (*schedule.PMTask, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.PMTask), args.Error(1)
}

func (m *mockTaskRepository) ListTasksByPlan(ctx context.Context, planID common.ID) ([]*schedule.PMTask, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schedule.PMTask), args.Error(1)
}

// mockSignoffRepository is a mock implementation of schedule.SignoffRepository.
type mockSignoffRepository struct {
	mock.Mock
}

func (m *mockSignoffRepository) InsertBatch(ctx context.Context, signoffs []*schedule.TaskSignoff) error {
	args := m.Called(ctx, signoffs)
	return args.Error(0)
}

func (m *mockSignoffRepository) GetPendingByTask(ctx context.Context, taskID common.ID) (*schedule.TaskSignoff, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.TaskSignoff), args.Error(1)
}

func (m *mockSignoffRepository) UpsertPendingDueDate(ctx context.Context, taskID common.ID, dueDate time.Time, updatedBy common.UserID) (*schedule.TaskSignoff, error) {
	args := m.Called(ctx, taskID, dueDate, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.TaskSignoff), args.Error(1)
}

func (m *mockSignoffRepository) CompleteAndInsertNext(ctx context.Context, signoffID common.ID, completedBy common.UserID, completedAt time.Time, notes string, next *schedule.TaskSignoff) (*schedule.TaskSignoff, error) {
	args := m.Called(ctx, signoffID, completedBy, completedAt, notes, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.TaskSignoff), args.Error(1)
}

func (m *mockSignoffRepository) ListPending(ctx context.Context) ([]*schedule.PendingSignoffView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schedule.PendingSignoffView), args.Error(1)
}

// mockPublisher records published events.
type mockPublisher struct {
	events []Event
}

func (m *mockPublisher) Publish(_ context.Context, e Event) error {
	m.events = append(m.events, e)
	return nil
}

// memoryCache is a trivial PendingCache for tests.
type memoryCache struct {
	views       []*schedule.PendingSignoffView
	populated   bool
	invalidated int
}

func (c *memoryCache) GetPending(context.Context) ([]*schedule.PendingSignoffView, bool) {
	return c.views, c.populated
}

func (c *memoryCache) SetPending(_ context.Context, v []*schedule.PendingSignoffView) {
	c.views, c.populated = v, true
}

func (c *memoryCache) InvalidatePending(context.Context) {
	c.views, c.populated = nil, false
	c.invalidated++
}

type fixture struct {
	plans     *mockPlanRepository
	tasks     *mockTaskRepository
	signoffs  *mockSignoffRepository
	cache     *memoryCache
	publisher *mockPublisher
	svc       Service
}

func newFixture() *fixture {
	f := &fixture{
		plans:     &mockPlanRepository{},
		tasks:     &mockTaskRepository{},
		signoffs:  &mockSignoffRepository{},
		cache:     &memoryCache{},
		publisher: &mockPublisher{},
	}
	calc := schedule.NewCalculator(logging.NewNopLogger(), nil)
	f.svc = NewService(f.plans, f.tasks, f.signoffs, calc, f.cache, f.publisher, Metrics{}, 0, logging.NewNopLogger())
	return f
}

// countingCounter counts Inc/Add calls for metric assertions.
type countingCounter struct{ n float64 }

func (c *countingCounter) Inc()          { c.n++ }
func (c *countingCounter) Add(v float64) { c.n += v }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateInitialSignoffs_SeedsRecurringTasks(t *testing.T) {
	f := newFixture()
	planID := common.NewID()
	start := date(2024, time.June, 15)
	plan := &schedule.PMPlan{ID: planID, StartDate: &start}
	tasks := []*schedule.PMTask{
		{ID: common.NewID(), PlanID: planID, Name: "inspect", MaintenanceInterval: "Annually"},
		{ID: common.NewID(), PlanID: planID, Name: "lube", MaintenanceInterval: "Monthly"},
		{ID: common.NewID(), PlanID: planID, Name: "one-off", MaintenanceInterval: "whenever"},
	}

	f.plans.On("GetPlan", mock.Anything, planID).Return(plan, nil)
	f.tasks.On("ListTasksByPlan", mock.Anything, planID).Return(tasks, nil)

	var inserted []*schedule.TaskSignoff
	f.signoffs.On("InsertBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).([]*schedule.TaskSignoff)
		}).
		Return(nil)

	result, err := f.svc.CreateInitialSignoffs(context.Background(), &SeedInput{PlanID: planID, UserID: "user-1"})
	require.NoError(t, err)

	require.Len(t, result.Signoffs, 2)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, inserted, 2)
	// 2024-06-15 + 12 months = 2025-06-15 (Sunday) → Friday the 13th.
	assert.Equal(t, date(2025, time.June, 13), inserted[0].DueDate)
	// 2024-06-15 + 1 month = 2024-07-15 (Monday).
	assert.Equal(t, date(2024, time.July, 15), inserted[1].DueDate)
	for _, s := range inserted {
		assert.Equal(t, schedule.SignoffStatusPending, s.Status)
		require.NotNil(t, s.CreatedBy)
		assert.Equal(t, common.UserID("user-1"), *s.CreatedBy)
	}

	assert.Equal(t, 1, f.cache.invalidated)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, EventTypeSeeded, f.publisher.events[0].Type)
	assert.Equal(t, 2, f.publisher.events[0].SeededCount)
}

func TestCreateInitialSignoffs_PlanNotFound(t *testing.T) {
	f := newFixture()
	planID := common.NewID()
	f.plans.On("GetPlan", mock.Anything, planID).
		Return(nil, errors.New(errors.ErrCodePlanNotFound, "missing"))

	_, err := f.svc.CreateInitialSignoffs(context.Background(), &SeedInput{PlanID: planID})
	assert.True(t, errors.IsNotFound(err))
}

func TestCreateInitialSignoffs_NoTasks(t *testing.T) {
	f := newFixture()
	planID := common.NewID()
	start := date(2024, time.January, 1)
	f.plans.On("GetPlan", mock.Anything, planID).
		Return(&schedule.PMPlan{ID: planID, StartDate: &start}, nil)
	f.tasks.On("ListTasksByPlan", mock.Anything, planID).
		Return([]*schedule.PMTask{}, nil)

	_, err := f.svc.CreateInitialSignoffs(context.Background(), &SeedInput{PlanID: planID})
	assert.True(t, errors.IsCode(err, errors.ErrCodePlanNoTasks))
	f.signoffs.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestCreateInitialSignoffs_AllNonRecurringSkipsInsert(t *testing.T) {
	f := newFixture()
	planID := common.NewID()
	start := date(2024, time.January, 1)
	f.plans.On("GetPlan", mock.Anything, planID).
		Return(&schedule.PMPlan{ID: planID, StartDate: &start}, nil)
	f.tasks.On("ListTasksByPlan", mock.Anything, planID).
		Return([]*schedule.PMTask{{ID: common.NewID(), MaintenanceInterval: "as needed"}}, nil)

	result, err := f.svc.CreateInitialSignoffs(context.Background(), &SeedInput{PlanID: planID})
	require.NoError(t, err)
	assert.Empty(t, result.Signoffs)
	assert.Equal(t, 1, result.Skipped)
	f.signoffs.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestUpdateDueDate_MovesExistingPending(t *testing.T) {
	f := newFixture()
	taskID := common.NewID()
	task := &schedule.PMTask{ID: taskID, MaintenanceInterval: "Monthly"}
	updated := &schedule.TaskSignoff{
		ID:      common.NewID(),
		TaskID:  taskID,
		DueDate: date(2024, time.August, 1),
		Status:  schedule.SignoffStatusPending,
	}

	f.tasks.On("GetTask", mock.Anything, taskID).Return(task, nil)
	f.signoffs.On("UpsertPendingDueDate", mock.Anything, taskID, date(2024, time.August, 1), common.UserID("user-1")).
		Return(updated, nil)

	got, err := f.svc.UpdateDueDate(context.Background(), &UpdateDueDateInput{
		TaskID:     taskID,
		NewDueDate: "2024-08-01",
		UserID:     "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, updated.ID, got.ID)
	assert.Equal(t, 1, f.cache.invalidated)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, EventTypeDueDateChanged, f.publisher.events[0].Type)
}

func TestUpdateDueDate_RejectsBadDate(t *testing.T) {
	f := newFixture()
	_, err := f.svc.UpdateDueDate(context.Background(), &UpdateDueDateInput{
		TaskID:     common.NewID(),
		NewDueDate: "next tuesday",
	})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidDueDate))
}

func TestAdvanceOnCompletion_SchedulesNextOccurrence(t *testing.T) {
	f := newFixture()
	taskID := common.NewID()
	task := &schedule.PMTask{ID: taskID, MaintenanceInterval: "Quarterly"}
	current := &schedule.TaskSignoff{
		ID:     common.NewID(),
		TaskID: taskID,
		Status: schedule.SignoffStatusPending,
	}
	completedAt := date(2024, time.March, 1)
	completedBy := common.UserID("user-1")
	completed := &schedule.TaskSignoff{
		ID:          current.ID,
		TaskID:      taskID,
		Status:      schedule.SignoffStatusCompleted,
		CompletedAt: &completedAt,
		CompletedBy: &completedBy,
	}

	f.tasks.On("GetTask", mock.Anything, taskID).Return(task, nil)
	f.signoffs.On("GetPendingByTask", mock.Anything, taskID).Return(current, nil)

	var next *schedule.TaskSignoff
	f.signoffs.On("CompleteAndInsertNext", mock.Anything, current.ID, completedBy, completedAt, "", mock.Anything).
		Run(func(args mock.Arguments) {
			next = args.Get(5).(*schedule.TaskSignoff)
		}).
		Return(completed, nil)

	result, err := f.svc.AdvanceOnCompletion(context.Background(), &CompleteInput{
		TaskID:         taskID,
		CompletionDate: "2024-03-01",
		UserID:         completedBy,
	})
	require.NoError(t, err)

	assert.Equal(t, string(schedule.SignoffStatusCompleted), result.Completed.Status)
	require.NotNil(t, result.Next)
	require.NotNil(t, next)
	// 2024-03-01 + 3 months = 2024-06-01 (Saturday) → May 31.
	assert.Equal(t, date(2024, time.May, 31), next.DueDate)
	require.NotNil(t, next.CreatedBy)
	assert.Equal(t, completedBy, *next.CreatedBy)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, EventTypeCompleted, f.publisher.events[0].Type)
	require.NotNil(t, f.publisher.events[0].NextDueDate)
}

func TestAdvanceOnCompletion_NonRecurringTaskCompletesOnly(t *testing.T) {
	f := newFixture()
	taskID := common.NewID()
	task := &schedule.PMTask{ID: taskID, MaintenanceInterval: "one time"}
	current := &schedule.TaskSignoff{ID: common.NewID(), TaskID: taskID, Status: schedule.SignoffStatusPending}
	completed := &schedule.TaskSignoff{ID: current.ID, TaskID: taskID, Status: schedule.SignoffStatusCompleted}

	f.tasks.On("GetTask", mock.Anything, taskID).Return(task, nil)
	f.signoffs.On("GetPendingByTask", mock.Anything, taskID).Return(current, nil)
	f.signoffs.On("CompleteAndInsertNext", mock.Anything, current.ID, common.UserID(""), mock.Anything, "", (*schedule.TaskSignoff)(nil)).
		Return(completed, nil)

	result, err := f.svc.AdvanceOnCompletion(context.Background(), &CompleteInput{TaskID: taskID})
	require.NoError(t, err)
	assert.Nil(t, result.Next)
}

func TestAdvanceOnCompletion_RetriesWithoutNextOnRace(t *testing.T) {
	f := newFixture()
	taskID := common.NewID()
	task := &schedule.PMTask{ID: taskID, MaintenanceInterval: "Monthly"}
	current := &schedule.TaskSignoff{ID: common.NewID(), TaskID: taskID, Status: schedule.SignoffStatusPending}
	completed := &schedule.TaskSignoff{ID: current.ID, TaskID: taskID, Status: schedule.SignoffStatusCompleted}

	f.tasks.On("GetTask", mock.Anything, taskID).Return(task, nil)
	f.signoffs.On("GetPendingByTask", mock.Anything, taskID).Return(current, nil)
	// First attempt carries the next occurrence and hits the unique index.
	f.signoffs.On("CompleteAndInsertNext", mock.Anything, current.ID, common.UserID(""), mock.Anything, "", mock.MatchedBy(func(n *schedule.TaskSignoff) bool { return n != nil })).
		Return(nil, errors.New(errors.ErrCodeDuplicatePendingSignoff, "dup")).Once()
	// Retry completes without inserting.
	f.signoffs.On("CompleteAndInsertNext", mock.Anything, current.ID, common.UserID(""), mock.Anything, "", (*schedule.TaskSignoff)(nil)).
		Return(completed, nil).Once()

	result, err := f.svc.AdvanceOnCompletion(context.Background(), &CompleteInput{TaskID: taskID})
	require.NoError(t, err)
	assert.Nil(t, result.Next)
	f.signoffs.AssertExpectations(t)
}

func TestAdvanceOnCompletion_NoPendingSignoff(t *testing.T) {
	f := newFixture()
	taskID := common.NewID()
	f.tasks.On("GetTask", mock.Anything, taskID).
		Return(&schedule.PMTask{ID: taskID, MaintenanceInterval: "Monthly"}, nil)
	f.signoffs.On("GetPendingByTask", mock.Anything, taskID).
		Return(nil, errors.New(errors.ErrCodeSignoffNotFound, "none"))

	_, err := f.svc.AdvanceOnCompletion(context.Background(), &CompleteInput{TaskID: taskID})
	assert.True(t, errors.IsNotFound(err))
}

func TestCreateInitialSignoffs_BlankIntervalIsNotAParseFailure(t *testing.T) {
	f := newFixture()
	failures := &countingCounter{}
	calc := schedule.NewCalculator(logging.NewNopLogger(), nil)
	svc := NewService(f.plans, f.tasks, f.signoffs, calc, f.cache, f.publisher,
		Metrics{ParseFailures: failures}, 0, logging.NewNopLogger())

	planID := common.NewID()
	start := date(2024, time.January, 1)
	f.plans.On("GetPlan", mock.Anything, planID).
		Return(&schedule.PMPlan{ID: planID, StartDate: &start}, nil)
	f.tasks.On("ListTasksByPlan", mock.Anything, planID).
		Return([]*schedule.PMTask{
			{ID: common.NewID(), MaintenanceInterval: ""},
			{ID: common.NewID(), MaintenanceInterval: "   "},
			{ID: common.NewID(), MaintenanceInterval: "whenever"},
		}, nil)

	result, err := svc.CreateInitialSignoffs(context.Background(), &SeedInput{PlanID: planID})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Skipped)
	// Only the unrecognized text counts; blank intervals mark non-recurring
	// tasks and pass silently.
	assert.Equal(t, float64(1), failures.n)
}

func TestStoreCallsCarryDeadline(t *testing.T) {
	f := newFixture()
	planID := common.NewID()

	var deadlineSet bool
	f.plans.On("GetPlan", mock.Anything, planID).
		Run(func(args mock.Arguments) {
			_, deadlineSet = args.Get(0).(context.Context).Deadline()
		}).
		Return(nil, errors.New(errors.ErrCodePlanNotFound, "missing"))

	_, _ = f.svc.CreateInitialSignoffs(context.Background(), &SeedInput{PlanID: planID})
	assert.True(t, deadlineSet, "repository context must be bounded by the query timeout")
}

func TestListPendingSignoffs_CacheMissThenHit(t *testing.T) {
	f := newFixture()
	views := []*schedule.PendingSignoffView{
		{SignoffID: common.NewID(), TaskName: "inspect", DueDate: date(2024, time.July, 1)},
	}
	f.signoffs.On("ListPending", mock.Anything).Return(views, nil).Once()

	got, err := f.svc.ListPendingSignoffs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, views, got)

	// Second call must be served from the cache.
	got, err = f.svc.ListPendingSignoffs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, views, got)
	f.signoffs.AssertNumberOfCalls(t, "ListPending", 1)
}
