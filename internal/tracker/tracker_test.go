package tracker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"tracker/internal/models"
	"tracker/internal/repository"
	"tracker/internal/storage/sqlite"
	"tracker/internal/tracker"
	"tracker/internal/validate"
	"tracker/internal/views"
)

var fixedNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *tracker.Service
	store *sqlite.Store
	alice models.User
	bob   models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "tracker.db"), logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	alice, err := store.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := store.CreateUser(ctx, "bob", "hash")
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}

	svc := tracker.New(store, logger)
	svc.SetClock(func() time.Time { return fixedNow })
	return &fixture{svc: svc, store: store, alice: alice, bob: bob}
}

func (f *fixture) project(t *testing.T, owner models.User, name string) models.ProjectStats {
	t.Helper()
	d, err := f.svc.CreateProject(context.Background(), owner, views.ProjectWrite{Name: models.Some(name)})
	if err != nil {
		t.Fatalf("create project %q: %v", name, err)
	}
	return d.Project
}

func (f *fixture) task(t *testing.T, owner models.User, projectID int64, title, status string) models.TaskWithRefs {
	t.Helper()
	task, err := f.svc.CreateTask(context.Background(), owner, views.TaskWrite{
		Title:     models.Some(title),
		ProjectID: models.Some(projectID),
		Status:    models.Some(status),
	})
	if err != nil {
		t.Fatalf("create task %q: %v", title, err)
	}
	return task
}

func fieldErrors(t *testing.T, err error) validate.FieldErrors {
	t.Helper()
	var fe validate.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected field errors, got %v", err)
	}
	return fe
}

func TestScopeIsolatesOwners(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.project(t, f.alice, "Alice project")
	task := f.task(t, f.alice, p.ID, "Alice task", models.StatusTodo)

	projects, total, err := f.svc.ScopeProjects(ctx, f.bob, repository.ProjectQuery{OwnerID: f.alice.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 0 || total != 0 {
		t.Fatalf("bob sees %d projects; owner override ignored", len(projects))
	}
	tasks, _, err := f.svc.ScopeTasks(ctx, f.bob, repository.TaskQuery{OwnerID: f.alice.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 0 {
		t.Fatalf("bob sees %d tasks", len(tasks))
	}

	if _, err := f.svc.GetProject(ctx, f.bob, p.ID); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("GetProject as bob: %v", err)
	}
	if _, err := f.svc.GetTask(ctx, f.bob, task.ID); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("GetTask as bob: %v", err)
	}
	if _, err := f.svc.UpdateProject(ctx, f.bob, p.ID, views.ProjectWrite{Name: models.Some("Hijacked")}, true); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("UpdateProject as bob: %v", err)
	}
	if _, err := f.svc.UpdateTask(ctx, f.bob, task.ID, views.TaskWrite{Status: models.Some(models.StatusDone)}, true); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("UpdateTask as bob: %v", err)
	}
	if err := f.svc.DeleteTask(ctx, f.bob, task.ID); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("DeleteTask as bob: %v", err)
	}
	if err := f.svc.DeleteProject(ctx, f.bob, p.ID); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("DeleteProject as bob: %v", err)
	}

	projects, _, err = f.svc.ScopeProjects(ctx, f.alice, repository.ProjectQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 || projects[0].Name != "Alice project" {
		t.Fatalf("alice projects = %+v", projects)
	}
}

func TestAnonymousActorRejected(t *testing.T) {
	f := newFixture(t)
	if _, _, err := f.svc.ScopeProjects(context.Background(), models.User{}, repository.ProjectQuery{}); !errors.Is(err, tracker.ErrNoActor) {
		t.Fatalf("got %v, want ErrNoActor", err)
	}
}

func TestProjectNameUniquePerOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.project(t, f.alice, "Foo")

	_, err := f.svc.CreateProject(ctx, f.alice, views.ProjectWrite{Name: models.Some("foo")})
	fe := fieldErrors(t, err)
	if !fe.Has("name") {
		t.Fatalf("expected name error, got %v", fe)
	}

	if _, err := f.svc.CreateProject(ctx, f.bob, views.ProjectWrite{Name: models.Some("foo")}); err != nil {
		t.Fatalf("other owner may reuse the name: %v", err)
	}

	// Renaming a project to a different casing of its own name is allowed.
	if _, err := f.svc.UpdateProject(ctx, f.alice, first.ID, views.ProjectWrite{Name: models.Some("FOO")}, true); err != nil {
		t.Fatalf("self rename: %v", err)
	}

	second := f.project(t, f.alice, "Bar")
	_, err = f.svc.UpdateProject(ctx, f.alice, second.ID, views.ProjectWrite{Name: models.Some(" foo ")}, true)
	if fe := fieldErrors(t, err); !fe.Has("name") {
		t.Fatalf("rename onto existing name: %v", fe)
	}
}

func TestProjectNameRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"", "  ", "ab"} {
		_, err := f.svc.CreateProject(ctx, f.alice, views.ProjectWrite{Name: models.Some(name)})
		if fe := fieldErrors(t, err); !fe.Has("name") {
			t.Fatalf("name %q accepted", name)
		}
	}

	_, err := f.svc.CreateProject(ctx, f.alice, views.ProjectWrite{Description: models.Some("no name")})
	if fe := fieldErrors(t, err); fe["name"][0] != "This field is required." {
		t.Fatalf("missing name: %v", fe)
	}

	d, err := f.svc.CreateProject(ctx, f.alice, views.ProjectWrite{Name: models.Some(" Abc "), Description: models.Some("desc")})
	if err != nil {
		t.Fatal(err)
	}
	if d.Project.Name != "Abc" || d.Project.Description != "desc" || d.Project.Owner.ID != f.alice.ID {
		t.Fatalf("stored project = %+v", d.Project)
	}

	// PUT without a name is rejected, PATCH without one keeps it.
	if _, err := f.svc.UpdateProject(ctx, f.alice, d.Project.ID, views.ProjectWrite{Description: models.Some("x")}, false); err == nil {
		t.Fatal("full update without name accepted")
	}
	up, err := f.svc.UpdateProject(ctx, f.alice, d.Project.ID, views.ProjectWrite{Description: models.Some("x")}, true)
	if err != nil {
		t.Fatal(err)
	}
	if up.Project.Name != "Abc" || up.Project.Description != "x" {
		t.Fatalf("partial update = %+v", up.Project)
	}
}

func TestCountersPartitionTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.project(t, f.alice, "Counters")
	f.task(t, f.alice, p.ID, "one", models.StatusTodo)
	f.task(t, f.alice, p.ID, "two", models.StatusInProgress)
	f.task(t, f.alice, p.ID, "three", models.StatusDone)
	f.task(t, f.alice, p.ID, "four", models.StatusDone)

	d, err := f.svc.GetProject(ctx, f.alice, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if d.Project.TaskCount != 4 || d.Project.CompletedTasks != 2 || d.Project.PendingTasks() != 2 {
		t.Fatalf("counters = %d/%d/%d", d.Project.TaskCount, d.Project.CompletedTasks, d.Project.PendingTasks())
	}
	if len(d.Tasks) != 4 {
		t.Fatalf("detail has %d tasks", len(d.Tasks))
	}
	if d.Project.CompletedTasks+d.Project.PendingTasks() != d.Project.TaskCount {
		t.Fatal("partition broken")
	}
}

func TestTaskDueDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.alice, "Dates")

	today := models.DateOf(fixedNow)
	yesterday := today.AddDays(-1)

	_, err := f.svc.CreateTask(ctx, f.alice, views.TaskWrite{
		Title: models.Some("late"), ProjectID: models.Some(p.ID), DueDate: models.Some(yesterday),
	})
	if fe := fieldErrors(t, err); fe["due_date"][0] != "Due date cannot be in the past." {
		t.Fatalf("due_date errors = %v", fe)
	}

	task, err := f.svc.CreateTask(ctx, f.alice, views.TaskWrite{Title: models.Some("no date"), ProjectID: models.Some(p.ID)})
	if err != nil {
		t.Fatalf("task without due date: %v", err)
	}
	if task.DueDate != nil || task.Status != models.StatusTodo || task.Priority != models.PriorityMedium {
		t.Fatalf("defaults = %+v", task.Task)
	}

	task, err = f.svc.UpdateTask(ctx, f.alice, task.ID, views.TaskWrite{DueDate: models.Some(today)}, true)
	if err != nil {
		t.Fatalf("due today: %v", err)
	}
	if task.DueDate == nil || *task.DueDate != today {
		t.Fatalf("due_date = %v", task.DueDate)
	}

	task, err = f.svc.UpdateTask(ctx, f.alice, task.ID, views.TaskWrite{DueDate: models.Null[models.Date]()}, true)
	if err != nil {
		t.Fatal(err)
	}
	if task.DueDate != nil {
		t.Fatal("explicit null should clear the due date")
	}
}

func TestTaskInForeignProjectRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bobs := f.project(t, f.bob, "Bob project")

	_, err := f.svc.CreateTask(ctx, f.alice, views.TaskWrite{Title: models.Some("sneaky"), ProjectID: models.Some(bobs.ID)})
	fe := fieldErrors(t, err)
	if fe["project_id"][0] != "You can only create tasks in your own project." {
		t.Fatalf("project_id errors = %v", fe)
	}

	for _, who := range []models.User{f.alice, f.bob} {
		tasks, total, err := f.svc.ScopeTasks(ctx, who, repository.TaskQuery{})
		if err != nil {
			t.Fatal(err)
		}
		if total != 0 || len(tasks) != 0 {
			t.Fatalf("task persisted for %s", who.Username)
		}
	}

	// Moving an owned task into a foreign project is rejected as well.
	mine := f.project(t, f.alice, "Mine")
	task := f.task(t, f.alice, mine.ID, "movable", models.StatusTodo)
	_, err = f.svc.UpdateTask(ctx, f.alice, task.ID, views.TaskWrite{ProjectID: models.Some(bobs.ID)}, true)
	if fe := fieldErrors(t, err); !fe.Has("project_id") {
		t.Fatalf("move errors = %v", fe)
	}
	got, err := f.svc.GetTask(ctx, f.alice, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ProjectID != mine.ID {
		t.Fatalf("task moved to %d", got.ProjectID)
	}
}

func TestTaskCollectsAllFieldErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateTask(ctx, f.alice, views.TaskWrite{
		Title:        models.Some("x"),
		ProjectID:    models.Some(int64(999)),
		AssignedToID: models.Some(int64(999)),
		Status:       models.Some("blocked"),
		Priority:     models.Some("urgent"),
	})
	fe := fieldErrors(t, err)
	for _, field := range []string{"title", "project_id", "assigned_to_id", "status", "priority"} {
		if !fe.Has(field) {
			t.Fatalf("missing %s error in %v", field, fe)
		}
	}

	_, err = f.svc.CreateTask(ctx, f.alice, views.TaskWrite{})
	fe = fieldErrors(t, err)
	if !fe.Has("title") || !fe.Has("project_id") {
		t.Fatalf("required fields not reported: %v", fe)
	}
}

func TestExplicitNullIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.alice, "Nulls")

	_, err := f.svc.UpdateProject(ctx, f.alice, p.ID, views.ProjectWrite{Name: models.Null[string]()}, true)
	if fe := fieldErrors(t, err); len(fe["name"]) != 1 || fe["name"][0] != "This field may not be null." {
		t.Fatalf("null name: %v", fe)
	}
	got, err := f.svc.GetProject(ctx, f.alice, p.ID)
	if err != nil || got.Project.Name != "Nulls" {
		t.Fatalf("project changed: %+v, %v", got.Project, err)
	}

	_, err = f.svc.CreateTask(ctx, f.alice, views.TaskWrite{
		Title:     models.Some("abc"),
		ProjectID: models.Some(p.ID),
		Status:    models.Null[string](),
		Priority:  models.Null[string](),
	})
	fe := fieldErrors(t, err)
	if !fe.Has("status") || !fe.Has("priority") || fe.Has("title") {
		t.Fatalf("null enums: %v", fe)
	}

	_, err = f.svc.CreateTask(ctx, f.alice, views.TaskWrite{Title: models.Null[string](), ProjectID: models.Null[int64]()})
	fe = fieldErrors(t, err)
	if len(fe["title"]) != 1 || fe["title"][0] != "This field may not be null." || len(fe["project_id"]) != 1 {
		t.Fatalf("null required fields: %v", fe)
	}

	if tasks, _, _ := f.svc.ScopeTasks(ctx, f.alice, repository.TaskQuery{}); len(tasks) != 0 {
		t.Fatalf("null writes persisted %d tasks", len(tasks))
	}
}

func TestTaskAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.alice, "Assign")

	task, err := f.svc.CreateTask(ctx, f.alice, views.TaskWrite{
		Title: models.Some("shared"), ProjectID: models.Some(p.ID), AssignedToID: models.Some(f.bob.ID),
	})
	if err != nil {
		t.Fatal(err)
	}
	if task.Assignee == nil || task.Assignee.Username != "bob" {
		t.Fatalf("assignee = %+v", task.Assignee)
	}

	// Assignment does not give bob access to the task.
	if _, err := f.svc.GetTask(ctx, f.bob, task.ID); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("assignee sees task: %v", err)
	}

	task, err = f.svc.UpdateTask(ctx, f.alice, task.ID, views.TaskWrite{AssignedToID: models.Null[int64]()}, true)
	if err != nil {
		t.Fatal(err)
	}
	if task.Assignee != nil || task.AssignedToID != nil {
		t.Fatal("assignment not cleared")
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.alice, "Doomed")
	task := f.task(t, f.alice, p.ID, "goes too", models.StatusTodo)

	if err := f.svc.DeleteProject(ctx, f.alice, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.GetTask(ctx, f.alice, task.ID); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("task survived project delete: %v", err)
	}
	if err := f.svc.DeleteProject(ctx, f.alice, p.ID); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestStatusRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.project(t, f.alice, "Flow")
	task := f.task(t, f.alice, p.ID, "flip", models.StatusTodo)

	list, _, err := f.svc.ScopeProjects(ctx, f.alice, repository.ProjectQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if list[0].TaskCount != 1 || list[0].CompletedTasks != 0 || list[0].PendingTasks() != 1 {
		t.Fatalf("before: %+v", list[0])
	}

	if _, err := f.svc.UpdateTask(ctx, f.alice, task.ID, views.TaskWrite{Status: models.Some(models.StatusDone)}, true); err != nil {
		t.Fatal(err)
	}

	list, _, err = f.svc.ScopeProjects(ctx, f.alice, repository.ProjectQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if list[0].CompletedTasks != 1 || list[0].PendingTasks() != 0 {
		t.Fatalf("after: %+v", list[0])
	}
}
