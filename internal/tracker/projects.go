package tracker

import (
	"context"
	"errors"
	"log/slog"

	"tracker/internal/models"
	"tracker/internal/repository"
	"tracker/internal/validate"
	"tracker/internal/views"
)

// CreateProject validates w and stores a new project owned by actor.
func (s *Service) CreateProject(ctx context.Context, actor models.User, w views.ProjectWrite) (ProjectDetail, error) {
	if actor.ID == 0 {
		return ProjectDetail{}, ErrNoActor
	}

	var out ProjectDetail
	err := s.store.WithTx(ctx, func(repo repository.Repository) error {
		p := models.Project{CreatedByID: actor.ID}
		if err := applyProjectWrite(ctx, repo, &p, w, false); err != nil {
			return err
		}
		if err := saveProject(ctx, repo, &p); err != nil {
			return err
		}
		detail, err := loadProjectDetail(ctx, repo, actor.ID, p.ID)
		out = detail
		return err
	})
	if err != nil {
		return ProjectDetail{}, err
	}

	s.logger.InfoContext(ctx, "project created", slog.Int64("project_id", out.Project.ID), slog.Int64("owner_id", actor.ID))
	return out, nil
}

// UpdateProject changes a project in actor's scope. With partial set only
// the fields present in w are validated and applied.
func (s *Service) UpdateProject(ctx context.Context, actor models.User, id int64, w views.ProjectWrite, partial bool) (ProjectDetail, error) {
	if actor.ID == 0 {
		return ProjectDetail{}, ErrNoActor
	}

	var out ProjectDetail
	err := s.store.WithTx(ctx, func(repo repository.Repository) error {
		current, err := repo.FindOwnedProject(ctx, actor.ID, id)
		if err != nil {
			return err
		}
		p := current.Project
		if err := applyProjectWrite(ctx, repo, &p, w, partial); err != nil {
			return err
		}
		if err := saveProject(ctx, repo, &p); err != nil {
			return err
		}
		detail, err := loadProjectDetail(ctx, repo, actor.ID, id)
		out = detail
		return err
	})
	if err != nil {
		return ProjectDetail{}, err
	}

	s.logger.InfoContext(ctx, "project updated", slog.Int64("project_id", id), slog.Int64("owner_id", actor.ID))
	return out, nil
}

// DeleteProject removes a project in actor's scope and its tasks.
func (s *Service) DeleteProject(ctx context.Context, actor models.User, id int64) error {
	if actor.ID == 0 {
		return ErrNoActor
	}
	if err := s.store.DeleteProject(ctx, actor.ID, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "project deleted", slog.Int64("project_id", id), slog.Int64("owner_id", actor.ID))
	return nil
}

// applyProjectWrite validates w and copies accepted values onto p.
// p.CreatedByID must already be set; it scopes the uniqueness check.
func applyProjectWrite(ctx context.Context, repo repository.Repository, p *models.Project, w views.ProjectWrite, partial bool) error {
	fe := validate.FieldErrors{}

	raw, hasName := nonNull(fe, "name", w.Name)
	switch {
	case hasName:
		name, err := validate.Title(raw)
		if err != nil {
			fe.Add("name", err)
			break
		}
		owned, _, err := repo.FindProjectsByOwner(ctx, repository.ProjectQuery{OwnerID: p.CreatedByID})
		if err != nil {
			return err
		}
		existing := make([]models.Project, 0, len(owned))
		for _, o := range owned {
			existing = append(existing, o.Project)
		}
		if err := validate.ProjectNameUnique(name, existing, p.ID); err != nil {
			fe.Add("name", err)
			break
		}
		p.Name = name
	case !partial && !w.Name.Set:
		fe.Addf("name", fieldRequired)
	}

	if desc, ok := nonNull(fe, "description", w.Description); ok {
		p.Description = desc
	}

	return fe.Err()
}

// saveProject persists p, reporting a lost uniqueness race as a field error.
func saveProject(ctx context.Context, repo repository.Repository, p *models.Project) error {
	err := repo.SaveProject(ctx, p)
	if errors.Is(err, repository.ErrDuplicate) {
		fe := validate.FieldErrors{}
		fe.Add("name", validate.ErrDuplicateName)
		return fe
	}
	return err
}
