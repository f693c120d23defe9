package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tracker/internal/repository"
	"tracker/internal/validate"
	"tracker/internal/views"
)

// handleListTasks returns the caller's tasks, filtered by the query string.
func (s *Server) handleListTasks(c *gin.Context) {
	params, ok := parseListParams(c)
	if !ok {
		return
	}

	fields := validate.FieldErrors{}
	q := repository.TaskQuery{
		Status:       c.Query("status"),
		Priority:     c.Query("priority"),
		ProjectID:    queryID(c, "project", fields),
		AssignedToID: queryID(c, "assigned_to", fields),
		Search:       params.search,
		OrderBy:      params.ordering,
		Page:         params.window(),
	}
	if q.Status != "" {
		fields.Add("status", validate.Status(q.Status))
	}
	if q.Priority != "" {
		fields.Add("priority", validate.Priority(q.Priority))
	}
	if err := fields.Err(); err != nil {
		s.respondError(c, err)
		return
	}

	tasks, total, err := s.tracker.ScopeTasks(c.Request.Context(), actor(c), q)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if params.outOfRange(c, total) {
		return
	}
	respondSuccess(c, http.StatusOK, views.Page[views.TaskView]{
		Count:    total,
		Page:     params.page,
		PageSize: params.pageSize,
		Results:  views.Tasks(tasks),
	})
}

// handleGetTask returns one task.
func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := s.tracker.GetTask(c.Request.Context(), actor(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, views.Task(task))
}

// handleCreateTask inserts a task into one of the caller's projects.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req views.TaskWrite
	if !bindJSON(c, &req) {
		return
	}

	task, err := s.tracker.CreateTask(c.Request.Context(), actor(c), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, views.Task(task))
}

// handleUpdateTask serves PUT (partial=false) and PATCH (partial=true).
func (s *Server) handleUpdateTask(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		var req views.TaskWrite
		if !bindJSON(c, &req) {
			return
		}

		task, err := s.tracker.UpdateTask(c.Request.Context(), actor(c), id, req, partial)
		if err != nil {
			s.respondError(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, views.Task(task))
	}
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.tracker.DeleteTask(c.Request.Context(), actor(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}
