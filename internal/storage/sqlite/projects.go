package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tracker/internal/models"
	"tracker/internal/repository"
)

const projectStatsSelect = `SELECT p.id, p.name, p.description, p.created_by, p.created_at, p.updated_at,
        u.id, u.username, u.created_at,
        (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id),
        (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id AND t.status = 'done')
    FROM projects p JOIN users u ON u.id = p.created_by`

var projectOrderColumns = map[string]string{
	"created_at": "p.created_at",
	"name":       "p.name COLLATE NOCASE",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProjectStats(row rowScanner) (models.ProjectStats, error) {
	var p models.ProjectStats
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.CreatedByID, &p.CreatedAt, &p.UpdatedAt,
		&p.Owner.ID, &p.Owner.Username, &p.Owner.CreatedAt,
		&p.TaskCount, &p.CompletedTasks,
	)
	return p, err
}

// FindProjectByID fetches a project regardless of owner. Callers must
// check ownership before exposing it.
func (r *Repo) FindProjectByID(ctx context.Context, id int64) (models.Project, error) {
	var p models.Project
	err := r.q.QueryRowContext(ctx, `SELECT id, name, description, created_by, created_at, updated_at FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedByID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, repository.ErrNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// FindOwnedProject fetches a project with counters if ownerID owns it.
func (r *Repo) FindOwnedProject(ctx context.Context, ownerID, id int64) (models.ProjectStats, error) {
	row := r.q.QueryRowContext(ctx, projectStatsSelect+` WHERE p.id = ? AND p.created_by = ?`, id, ownerID)
	p, err := scanProjectStats(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ProjectStats{}, repository.ErrNotFound
	}
	if err != nil {
		return models.ProjectStats{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// FindProjectsByOwner lists the owner's projects and the total match count.
func (r *Repo) FindProjectsByOwner(ctx context.Context, q repository.ProjectQuery) ([]models.ProjectStats, int64, error) {
	where := ` WHERE p.created_by = ?`
	args := []any{q.OwnerID}
	if q.Search != "" {
		pattern := containsPattern(q.Search)
		where += ` AND (p.name LIKE ? ESCAPE '\' OR p.description LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}

	var total int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects p`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	limit, listArgs := limitClause(q.Page, args)
	rows, err := r.q.QueryContext(ctx, projectStatsSelect+where+orderClause(q.OrderBy, projectOrderColumns, "p.id")+limit, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.ProjectStats{}
	for rows.Next() {
		p, err := scanProjectStats(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, total, rows.Err()
}

// SaveProject inserts p when it has no id, otherwise updates name and
// description of the row p.CreatedByID owns. A clash with another project
// name of the same owner yields repository.ErrDuplicate.
func (r *Repo) SaveProject(ctx context.Context, p *models.Project) error {
	now := r.now()
	if p.ID == 0 {
		res, err := r.q.ExecContext(ctx, `INSERT INTO projects(name, description, created_by, created_at, updated_at) VALUES(?, ?, ?, ?, ?)`,
			p.Name, p.Description, p.CreatedByID, now, now)
		if err != nil {
			return wrapProjectWrite("insert project", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("project id: %w", err)
		}
		p.ID = id
		p.CreatedAt = now
		p.UpdatedAt = now
		return nil
	}

	res, err := r.q.ExecContext(ctx, `UPDATE projects SET name = ?, description = ?, updated_at = ? WHERE id = ? AND created_by = ?`,
		p.Name, p.Description, now, p.ID, p.CreatedByID)
	if err != nil {
		return wrapProjectWrite("update project", err)
	}
	if err := affectedOne(res); err != nil {
		return err
	}
	p.UpdatedAt = now
	return nil
}

func wrapProjectWrite(op string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, repository.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// DeleteProject removes a project along with its tasks.
func (r *Repo) DeleteProject(ctx context.Context, ownerID, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND created_by = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return affectedOne(res)
}
