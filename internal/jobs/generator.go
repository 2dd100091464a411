package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/domain"
)

// AutoTitlePrefix marks tasks created by the periodic job.
const AutoTitlePrefix = "[AUTO] "

// autoTimestampLayout formats the generation time appended to periodic task descriptions.
const autoTimestampLayout = "2006-01-02 15:04:05"

var randomTitles = []string{
	"Complete project documentation",
	"Review code changes",
	"Update database schema",
	"Fix authentication bug",
	"Implement new feature",
	"Optimize database queries",
	"Write unit tests",
	"Deploy to production",
	"Backup database",
	"Update dependencies",
	"Refactor legacy code",
	"Create API endpoint",
	"Update user interface",
	"Monitor system performance",
	"Security audit review",
}

var randomDescriptions = []string{
	"This task needs to be completed as soon as possible",
	"Low priority task that can be done when time permits",
	"Critical task that affects system functionality",
	"Maintenance task for keeping the system healthy",
	"Enhancement task to improve user experience",
	"Bug fix to resolve reported issues",
	"Documentation update for better clarity",
	"Performance improvement task",
	"Security-related task requiring attention",
	"Integration task with external services",
}

// TaskCreator creates tasks on behalf of a user.
type TaskCreator interface {
	Create(ctx context.Context, owner uuid.UUID, fields domain.TaskFields) (*domain.Task, error)
}

// UserLister lists the users eligible for generated tasks.
type UserLister interface {
	ListActive(ctx context.Context) ([]*domain.User, error)
}

// TaskGenerator builds the task-generation jobs and knows how to restore them.
type TaskGenerator struct {
	tasks  TaskCreator
	users  UserLister
	intn   func(n int) int
	logger *slog.Logger
}

// NewTaskGenerator creates a TaskGenerator choosing titles with math/rand/v2.
func NewTaskGenerator(tasks TaskCreator, users UserLister, logger *slog.Logger) *TaskGenerator {
	return &TaskGenerator{
		tasks:  tasks,
		users:  users,
		intn:   rand.IntN,
		logger: logger.With("component", "task_generator"),
	}
}

// WithPicker replaces the random index source. Intended for tests.
func (g *TaskGenerator) WithPicker(intn func(n int) int) *TaskGenerator {
	cp := *g
	cp.intn = intn
	return &cp
}

// Register installs factories for every job type built by g.
func (g *TaskGenerator) Register(reg *Registry) {
	reg.Register(TypeRandomTask, func(id uuid.UUID, payload []byte) (Job, error) {
		var p randomTaskPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", TypeRandomTask, err)
		}
		return &randomTaskJob{baseJob: baseJob{id: id, payload: payload}, userID: p.UserID, gen: g}, nil
	})
	reg.Register(TypePeriodicRandomTasks, func(id uuid.UUID, payload []byte) (Job, error) {
		var p periodicPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", TypePeriodicRandomTasks, err)
		}
		return &periodicJob{baseJob: baseJob{id: id, payload: payload}, scheduledAt: p.ScheduledAt, gen: g}, nil
	})
}

// RandomTaskJob returns a job creating one random task for user.
func (g *TaskGenerator) RandomTaskJob(user uuid.UUID) (Job, error) {
	if user == uuid.Nil {
		return nil, errors.New("random task job requires a user")
	}
	payload, err := json.Marshal(randomTaskPayload{UserID: user})
	if err != nil {
		return nil, err
	}
	return &randomTaskJob{baseJob: baseJob{id: uuid.New(), payload: payload}, userID: user, gen: g}, nil
}

// PeriodicJob returns a job creating an "[AUTO]" task for every active user,
// stamped with scheduledAt.
func (g *TaskGenerator) PeriodicJob(scheduledAt time.Time) (Job, error) {
	payload, err := json.Marshal(periodicPayload{ScheduledAt: scheduledAt.UTC()})
	if err != nil {
		return nil, err
	}
	return &periodicJob{baseJob: baseJob{id: uuid.New(), payload: payload}, scheduledAt: scheduledAt.UTC(), gen: g}, nil
}

func (g *TaskGenerator) pick() (title, description string) {
	return randomTitles[g.intn(len(randomTitles))], randomDescriptions[g.intn(len(randomDescriptions))]
}

type baseJob struct {
	id      uuid.UUID
	payload []byte
}

func (j *baseJob) ID() uuid.UUID   { return j.id }
func (j *baseJob) Payload() []byte { return j.payload }

type randomTaskPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

type randomTaskJob struct {
	baseJob
	userID uuid.UUID
	gen    *TaskGenerator
}

func (j *randomTaskJob) Type() string { return TypeRandomTask }

func (j *randomTaskJob) Execute(ctx context.Context) error {
	title, description := j.gen.pick()

	task, err := j.gen.tasks.Create(ctx, j.userID, domain.TaskFields{
		Title:       title,
		Description: description,
	})
	if err != nil {
		return fmt.Errorf("failed to create random task for user %s: %w", j.userID, err)
	}

	j.gen.logger.Info("random task created",
		"user_id", j.userID,
		"task_id", task.ID,
		"title", task.Title)
	return nil
}

type periodicPayload struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

type periodicJob struct {
	baseJob
	scheduledAt time.Time
	gen         *TaskGenerator
}

func (j *periodicJob) Type() string { return TypePeriodicRandomTasks }

// Execute creates one task per active user. A failure for one user does not
// stop the others; all failures are returned together.
func (j *periodicJob) Execute(ctx context.Context) error {
	users, err := j.gen.users.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active users: %w", err)
	}

	stamp := j.scheduledAt.Format(autoTimestampLayout)
	var errs []error
	created := 0

	for _, u := range users {
		title, description := j.gen.pick()
		_, err := j.gen.tasks.Create(ctx, u.ID, domain.TaskFields{
			Title:       AutoTitlePrefix + title,
			Description: description + " - Auto-generated at " + stamp,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", u.ID, err))
			continue
		}
		created++
	}

	j.gen.logger.Info("periodic random tasks added",
		"scheduled_at", stamp,
		"created", created,
		"failed", len(errs))
	return errors.Join(errs...)
}
