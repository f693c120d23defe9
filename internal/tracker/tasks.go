package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tracker/internal/models"
	"tracker/internal/repository"
	"tracker/internal/validate"
	"tracker/internal/views"
)

const (
	fieldRequired = "This field is required."
	fieldNotNull  = "This field may not be null."
)

// nonNull returns the value carried by o. An explicit null is recorded
// under field and reported as absent.
func nonNull[T any](fe validate.FieldErrors, field string, o models.Optional[T]) (T, bool) {
	if o.Set && o.Value == nil {
		fe.Addf(field, fieldNotNull)
	}
	if o.Value == nil {
		var zero T
		return zero, false
	}
	return *o.Value, true
}

func invalidPK(id int64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

// CreateTask validates w and stores a task under a project actor owns.
// Nothing is written when any field fails.
func (s *Service) CreateTask(ctx context.Context, actor models.User, w views.TaskWrite) (models.TaskWithRefs, error) {
	if actor.ID == 0 {
		return models.TaskWithRefs{}, ErrNoActor
	}

	var out models.TaskWithRefs
	err := s.store.WithTx(ctx, func(repo repository.Repository) error {
		t := models.Task{Status: models.StatusTodo, Priority: models.PriorityMedium}
		if err := s.applyTaskWrite(ctx, repo, actor, &t, w, false); err != nil {
			return err
		}
		if err := repo.SaveTask(ctx, &t); err != nil {
			return err
		}
		saved, err := repo.FindOwnedTask(ctx, actor.ID, t.ID)
		out = saved
		return err
	})
	if err != nil {
		return models.TaskWithRefs{}, err
	}

	s.logger.InfoContext(ctx, "task created",
		slog.Int64("task_id", out.ID), slog.Int64("project_id", out.ProjectID), slog.Int64("owner_id", actor.ID))
	return out, nil
}

// UpdateTask changes a task in actor's scope. With partial set only the
// fields present in w are validated and applied.
func (s *Service) UpdateTask(ctx context.Context, actor models.User, id int64, w views.TaskWrite, partial bool) (models.TaskWithRefs, error) {
	if actor.ID == 0 {
		return models.TaskWithRefs{}, ErrNoActor
	}

	var out models.TaskWithRefs
	err := s.store.WithTx(ctx, func(repo repository.Repository) error {
		current, err := repo.FindOwnedTask(ctx, actor.ID, id)
		if err != nil {
			return err
		}
		t := current.Task
		if err := s.applyTaskWrite(ctx, repo, actor, &t, w, partial); err != nil {
			return err
		}
		if err := repo.SaveTask(ctx, &t); err != nil {
			return err
		}
		saved, err := repo.FindOwnedTask(ctx, actor.ID, id)
		out = saved
		return err
	})
	if err != nil {
		return models.TaskWithRefs{}, err
	}

	s.logger.InfoContext(ctx, "task updated", slog.Int64("task_id", id), slog.Int64("owner_id", actor.ID))
	return out, nil
}

// DeleteTask removes a task in actor's scope.
func (s *Service) DeleteTask(ctx context.Context, actor models.User, id int64) error {
	if actor.ID == 0 {
		return ErrNoActor
	}
	if err := s.store.DeleteTask(ctx, actor.ID, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "task deleted", slog.Int64("task_id", id), slog.Int64("owner_id", actor.ID))
	return nil
}

// applyTaskWrite validates every field of w, collecting all failures, and
// copies accepted values onto t only when the whole write is valid.
func (s *Service) applyTaskWrite(ctx context.Context, repo repository.Repository, actor models.User, t *models.Task, w views.TaskWrite, partial bool) error {
	fe := validate.FieldErrors{}
	next := *t

	if raw, ok := nonNull(fe, "title", w.Title); ok {
		title, err := validate.Title(raw)
		fe.Add("title", err)
		next.Title = title
	} else if !partial && !w.Title.Set {
		fe.Addf("title", fieldRequired)
	}

	if desc, ok := nonNull(fe, "description", w.Description); ok {
		next.Description = desc
	}

	if projectID, ok := nonNull(fe, "project_id", w.ProjectID); ok {
		project, err := repo.FindProjectByID(ctx, projectID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			fe.Addf("project_id", invalidPK(projectID))
		case err != nil:
			return err
		default:
			fe.Add("project_id", validate.ProjectOwnership(project, actor))
			next.ProjectID = project.ID
		}
	} else if !partial && !w.ProjectID.Set {
		fe.Addf("project_id", fieldRequired)
	}

	if w.AssignedToID.Set {
		if w.AssignedToID.Value == nil {
			next.AssignedToID = nil
		} else {
			uid := *w.AssignedToID.Value
			_, err := repo.FindUserByID(ctx, uid)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				fe.Addf("assigned_to_id", invalidPK(uid))
			case err != nil:
				return err
			default:
				next.AssignedToID = &uid
			}
		}
	}

	if status, ok := nonNull(fe, "status", w.Status); ok {
		fe.Add("status", validate.Status(status))
		next.Status = status
	}
	if priority, ok := nonNull(fe, "priority", w.Priority); ok {
		fe.Add("priority", validate.Priority(priority))
		next.Priority = priority
	}

	if w.DueDate.Set {
		fe.Add("due_date", validate.DueDate(w.DueDate.Value, s.today()))
		next.DueDate = w.DueDate.Value
	}

	if err := fe.Err(); err != nil {
		return err
	}
	*t = next
	return nil
}
