package repository

import (
	"context"
	"errors"

	"tracker/internal/models"
)

var (
	// ErrNotFound is returned when a row does not exist or is outside the caller's scope.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate")
)

// Page selects a window of a result set. Zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

// Order is a single sort key.
type Order struct {
	Field string
	Desc  bool
}

// ProjectQuery filters the projects of one owner.
type ProjectQuery struct {
	OwnerID int64
	Search  string
	OrderBy []Order
	Page    Page
}

// TaskQuery filters tasks whose project belongs to OwnerID.
type TaskQuery struct {
	OwnerID      int64
	ProjectID    *int64
	AssignedToID *int64
	Status       string
	Priority     string
	Search       string
	OrderBy      []Order
	Page         Page
}

// UserRepository persists accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, username, passwordHash string) (models.User, error)
	FindUserByID(ctx context.Context, id int64) (models.User, error)
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
}

// ProjectRepository persists projects. Methods taking ownerID only see that owner's rows.
type ProjectRepository interface {
	FindProjectByID(ctx context.Context, id int64) (models.Project, error)
	FindOwnedProject(ctx context.Context, ownerID, id int64) (models.ProjectStats, error)
	FindProjectsByOwner(ctx context.Context, q ProjectQuery) ([]models.ProjectStats, int64, error)
	SaveProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, ownerID, id int64) error
}

// TaskRepository persists tasks. Every lookup is restricted to tasks of OwnerID's projects.
type TaskRepository interface {
	FindOwnedTask(ctx context.Context, ownerID, id int64) (models.TaskWithRefs, error)
	FindTasksByOwner(ctx context.Context, q TaskQuery) ([]models.TaskWithRefs, int64, error)
	SaveTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, ownerID, id int64) error
}

// Repository is the full set of persistence operations.
type Repository interface {
	UserRepository
	ProjectRepository
	TaskRepository
}

// Store is a Repository that can run a function inside a transaction.
// The Repository passed to fn is bound to the transaction; returning an
// error from fn rolls it back.
type Store interface {
	Repository
	WithTx(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
}
