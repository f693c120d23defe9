// Package tracker is the authorization boundary for projects and tasks.
// Every read goes through ScopeProjects/ScopeTasks or an owner-checked
// lookup, and every write validates and persists inside one transaction.
// The acting user is always passed in explicitly.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tracker/internal/models"
	"tracker/internal/repository"
)

// ErrNoActor is returned when an operation is attempted without an authenticated user.
var ErrNoActor = errors.New("no authenticated user")

// ErrNotFound aliases the repository sentinel so callers need one import.
var ErrNotFound = repository.ErrNotFound

// Service implements the project and task operations.
type Service struct {
	store  repository.Store
	logger *slog.Logger
	now    func() time.Time
}

// New builds a Service over store.
func New(store repository.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock replaces the time source used for due date validation.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// today is the current calendar day in UTC.
func (s *Service) today() models.Date {
	return models.DateOf(s.now().UTC())
}

// ProjectDetail is a project together with its tasks.
type ProjectDetail struct {
	Project models.ProjectStats
	Tasks   []models.TaskWithRefs
}

// ScopeProjects lists exactly the projects created by actor. The owner in
// q is always overwritten with actor.
func (s *Service) ScopeProjects(ctx context.Context, actor models.User, q repository.ProjectQuery) ([]models.ProjectStats, int64, error) {
	if actor.ID == 0 {
		return nil, 0, ErrNoActor
	}
	q.OwnerID = actor.ID
	return s.store.FindProjectsByOwner(ctx, q)
}

// ScopeTasks lists exactly the tasks of projects created by actor.
func (s *Service) ScopeTasks(ctx context.Context, actor models.User, q repository.TaskQuery) ([]models.TaskWithRefs, int64, error) {
	if actor.ID == 0 {
		return nil, 0, ErrNoActor
	}
	q.OwnerID = actor.ID
	return s.store.FindTasksByOwner(ctx, q)
}

// GetProject returns a project in actor's scope with its tasks, or ErrNotFound.
func (s *Service) GetProject(ctx context.Context, actor models.User, id int64) (ProjectDetail, error) {
	if actor.ID == 0 {
		return ProjectDetail{}, ErrNoActor
	}
	return loadProjectDetail(ctx, s.store, actor.ID, id)
}

// GetTask returns a task in actor's scope, or ErrNotFound.
func (s *Service) GetTask(ctx context.Context, actor models.User, id int64) (models.TaskWithRefs, error) {
	if actor.ID == 0 {
		return models.TaskWithRefs{}, ErrNoActor
	}
	return s.store.FindOwnedTask(ctx, actor.ID, id)
}

func loadProjectDetail(ctx context.Context, repo repository.Repository, ownerID, id int64) (ProjectDetail, error) {
	p, err := repo.FindOwnedProject(ctx, ownerID, id)
	if err != nil {
		return ProjectDetail{}, err
	}
	tasks, _, err := repo.FindTasksByOwner(ctx, repository.TaskQuery{OwnerID: ownerID, ProjectID: &id})
	if err != nil {
		return ProjectDetail{}, err
	}
	return ProjectDetail{Project: p, Tasks: tasks}, nil
}
