package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tracker/internal/views"
)

// handleRegister creates an account.
func (s *Server) handleRegister(c *gin.Context) {
	var req views.RegisterWrite
	if !bindJSON(c, &req) {
		return
	}

	user, err := s.accounts.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, views.User(user))
}

// handleToken exchanges credentials for an access/refresh pair.
func (s *Server) handleToken(c *gin.Context) {
	var req views.TokenWrite
	if !bindJSON(c, &req) {
		return
	}

	pair, err := s.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, pair)
}

// handleRefresh issues a new access token from a refresh token.
func (s *Server) handleRefresh(c *gin.Context) {
	var req views.RefreshWrite
	if !bindJSON(c, &req) {
		return
	}

	access, err := s.accounts.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"access": access})
}
