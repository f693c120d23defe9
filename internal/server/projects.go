package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tracker/internal/repository"
	"tracker/internal/tracker"
	"tracker/internal/views"
)

// handleListProjects returns the caller's projects as summaries.
func (s *Server) handleListProjects(c *gin.Context) {
	params, ok := parseListParams(c)
	if !ok {
		return
	}

	projects, total, err := s.tracker.ScopeProjects(c.Request.Context(), actor(c), repository.ProjectQuery{
		Search:  params.search,
		OrderBy: params.ordering,
		Page:    params.window(),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	if params.outOfRange(c, total) {
		return
	}
	respondSuccess(c, http.StatusOK, views.Page[views.ProjectListView]{
		Count:    total,
		Page:     params.page,
		PageSize: params.pageSize,
		Results:  views.ProjectLists(projects),
	})
}

// handleGetProject returns one project with its tasks.
func (s *Server) handleGetProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	detail, err := s.tracker.GetProject(c.Request.Context(), actor(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, projectDetail(detail))
}

// handleCreateProject creates a project owned by the caller.
func (s *Server) handleCreateProject(c *gin.Context) {
	var req views.ProjectWrite
	if !bindJSON(c, &req) {
		return
	}

	detail, err := s.tracker.CreateProject(c.Request.Context(), actor(c), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, projectDetail(detail))
}

// handleUpdateProject serves PUT (partial=false) and PATCH (partial=true).
func (s *Server) handleUpdateProject(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		var req views.ProjectWrite
		if !bindJSON(c, &req) {
			return
		}

		detail, err := s.tracker.UpdateProject(c.Request.Context(), actor(c), id, req, partial)
		if err != nil {
			s.respondError(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, projectDetail(detail))
	}
}

// handleDeleteProject removes a project and all related tasks.
func (s *Server) handleDeleteProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.tracker.DeleteProject(c.Request.Context(), actor(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}

func projectDetail(d tracker.ProjectDetail) views.ProjectDetailView {
	return views.ProjectDetail(d.Project, d.Tasks)
}
