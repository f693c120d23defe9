package models

import "time"

// User is an account known to the identity store.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Project groups tasks and belongs to exactly one user.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedByID int64     `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectStats is a project joined with its owner and task counters.
type ProjectStats struct {
	Project
	Owner          User
	TaskCount      int64
	CompletedTasks int64
}

// PendingTasks counts every task that is not done.
func (p ProjectStats) PendingTasks() int64 {
	return p.TaskCount - p.CompletedTasks
}

// Task is a unit of work inside a project.
type Task struct {
	ID           int64     `json:"id"`
	ProjectID    int64     `json:"project_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	AssignedToID *int64    `json:"assigned_to_id"`
	Status       string    `json:"status"`
	Priority     string    `json:"priority"`
	DueDate      *Date     `json:"due_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TaskWithRefs carries the task together with the rows it references.
type TaskWithRefs struct {
	Task
	Project  Project
	Assignee *User
}

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidTaskStatuses enumerates the accepted task statuses.
var ValidTaskStatuses = map[string]struct{}{
	StatusTodo:       {},
	StatusInProgress: {},
	StatusDone:       {},
}

// ValidTaskPriorities enumerates the accepted task priorities.
var ValidTaskPriorities = map[string]struct{}{
	PriorityLow:    {},
	PriorityMedium: {},
	PriorityHigh:   {},
}
