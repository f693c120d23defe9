package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tracker/internal/models"
	"tracker/internal/repository"
)

// Tasks are joined with their project and assignee so detail views need no
// further lookups.
const taskSelect = `SELECT t.id, t.project_id, t.title, t.description, t.assigned_to, t.status, t.priority, t.due_date, t.created_at, t.updated_at,
        p.id, p.name, p.description, p.created_by, p.created_at, p.updated_at,
        a.id, a.username, a.created_at
    FROM tasks t
    JOIN projects p ON p.id = t.project_id
    LEFT JOIN users a ON a.id = t.assigned_to`

const taskFrom = ` FROM tasks t JOIN projects p ON p.id = t.project_id`

var taskOrderColumns = map[string]string{
	"created_at": "t.created_at",
	"due_date":   "t.due_date",
	"priority":   "CASE t.priority WHEN 'low' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END",
}

func scanTask(row rowScanner) (models.TaskWithRefs, error) {
	var (
		t        models.TaskWithRefs
		aID      sql.NullInt64
		aName    sql.NullString
		aCreated sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.AssignedToID, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
		&t.Project.ID, &t.Project.Name, &t.Project.Description, &t.Project.CreatedByID, &t.Project.CreatedAt, &t.Project.UpdatedAt,
		&aID, &aName, &aCreated,
	)
	if err != nil {
		return models.TaskWithRefs{}, err
	}
	if aID.Valid {
		t.Assignee = &models.User{ID: aID.Int64, Username: aName.String, CreatedAt: aCreated.Time}
	}
	return t, nil
}

// FindOwnedTask fetches a task whose project ownerID owns.
func (r *Repo) FindOwnedTask(ctx context.Context, ownerID, id int64) (models.TaskWithRefs, error) {
	t, err := scanTask(r.q.QueryRowContext(ctx, taskSelect+` WHERE t.id = ? AND p.created_by = ?`, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.TaskWithRefs{}, repository.ErrNotFound
	}
	if err != nil {
		return models.TaskWithRefs{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// FindTasksByOwner lists tasks across the owner's projects and the total match count.
func (r *Repo) FindTasksByOwner(ctx context.Context, q repository.TaskQuery) ([]models.TaskWithRefs, int64, error) {
	where := ` WHERE p.created_by = ?`
	args := []any{q.OwnerID}
	if q.ProjectID != nil {
		where += ` AND t.project_id = ?`
		args = append(args, *q.ProjectID)
	}
	if q.AssignedToID != nil {
		where += ` AND t.assigned_to = ?`
		args = append(args, *q.AssignedToID)
	}
	if q.Status != "" {
		where += ` AND t.status = ?`
		args = append(args, q.Status)
	}
	if q.Priority != "" {
		where += ` AND t.priority = ?`
		args = append(args, q.Priority)
	}
	if q.Search != "" {
		pattern := containsPattern(q.Search)
		where += ` AND (t.title LIKE ? ESCAPE '\' OR t.description LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}

	var total int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*)`+taskFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	limit, listArgs := limitClause(q.Page, args)
	rows, err := r.q.QueryContext(ctx, taskSelect+where+orderClause(q.OrderBy, taskOrderColumns, "t.id")+limit, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.TaskWithRefs{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, total, rows.Err()
}

// SaveTask inserts t when it has no id, otherwise overwrites its mutable columns.
func (r *Repo) SaveTask(ctx context.Context, t *models.Task) error {
	now := r.now()
	if t.ID == 0 {
		res, err := r.q.ExecContext(ctx, `INSERT INTO tasks(project_id, title, description, assigned_to, status, priority, due_date, created_at, updated_at)
            VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ProjectID, t.Title, t.Description, t.AssignedToID, t.Status, t.Priority, t.DueDate, now, now)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("task id: %w", err)
		}
		t.ID = id
		t.CreatedAt = now
		t.UpdatedAt = now
		return nil
	}

	res, err := r.q.ExecContext(ctx, `UPDATE tasks SET project_id = ?, title = ?, description = ?, assigned_to = ?, status = ?, priority = ?, due_date = ?, updated_at = ?
        WHERE id = ?`,
		t.ProjectID, t.Title, t.Description, t.AssignedToID, t.Status, t.Priority, t.DueDate, now, t.ID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if err := affectedOne(res); err != nil {
		return err
	}
	t.UpdatedAt = now
	return nil
}

// DeleteTask removes a task of one of ownerID's projects.
func (r *Repo) DeleteTask(ctx context.Context, ownerID, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND project_id IN (SELECT id FROM projects WHERE created_by = ?)`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return affectedOne(res)
}
