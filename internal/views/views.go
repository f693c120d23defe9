// Package views shapes stored entities into the JSON documents served by
// the API. Read views are fixed struct types; counters are taken from the
// scoped query that loaded the project, never from a cached column.
package views

import (
	"time"

	"tracker/internal/models"
)

// UserRef is the public face of a user.
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// ProjectRef is the project summary embedded in a task.
type ProjectRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TaskView is the single task shape used by every task response.
type TaskView struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Project     ProjectRef   `json:"project"`
	AssignedTo  *UserRef     `json:"assigned_to"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority"`
	DueDate     *models.Date `json:"due_date"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ProjectListView is the summary shape used in project listings.
type ProjectListView struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	CreatedBy      UserRef   `json:"created_by"`
	TaskCount      int64     `json:"task_count"`
	CompletedTasks int64     `json:"completed_tasks"`
	PendingTasks   int64     `json:"pending_tasks"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProjectDetailView adds the project's tasks to the summary.
type ProjectDetailView struct {
	ProjectListView
	Tasks []TaskView `json:"tasks"`
}

// Page is the envelope of every list response.
type Page[T any] struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []T   `json:"results"`
}

// User renders an account.
func User(u models.User) UserRef {
	return UserRef{ID: u.ID, Username: u.Username}
}

// Task renders a task with its project and assignee expanded.
func Task(t models.TaskWithRefs) TaskView {
	v := TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Project:     ProjectRef{ID: t.Project.ID, Name: t.Project.Name},
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Assignee != nil {
		ref := User(*t.Assignee)
		v.AssignedTo = &ref
	}
	return v
}

// Tasks renders a slice of tasks; the result is never nil.
func Tasks(ts []models.TaskWithRefs) []TaskView {
	out := make([]TaskView, 0, len(ts))
	for _, t := range ts {
		out = append(out, Task(t))
	}
	return out
}

// ProjectList renders the summary view of a project.
func ProjectList(p models.ProjectStats) ProjectListView {
	return ProjectListView{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		CreatedBy:      User(p.Owner),
		TaskCount:      p.TaskCount,
		CompletedTasks: p.CompletedTasks,
		PendingTasks:   p.PendingTasks(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// ProjectLists renders a slice of project summaries; the result is never nil.
func ProjectLists(ps []models.ProjectStats) []ProjectListView {
	out := make([]ProjectListView, 0, len(ps))
	for _, p := range ps {
		out = append(out, ProjectList(p))
	}
	return out
}

// ProjectDetail renders a project with its tasks.
func ProjectDetail(p models.ProjectStats, tasks []models.TaskWithRefs) ProjectDetailView {
	return ProjectDetailView{
		ProjectListView: ProjectList(p),
		Tasks:           Tasks(tasks),
	}
}
