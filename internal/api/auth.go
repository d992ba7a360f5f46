package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/checktrack/checktrack/internal/model"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      model.User `json:"user"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	u, err := s.app.Users.Authenticate(req.Username, req.Password)
	if err != nil {
		s.logger.Info("login failed", "username", req.Username)
		s.abortWithError(c, err)
		return
	}
	token, exp, err := s.signer.Issue(u.ID, u.Username)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.logger.Info("login", "username", u.Username)
	c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: exp, User: u})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

type passwordRequest struct {
	Password string `json:"password" binding:"required"`
}

func (s *Server) changeOwnPassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "password is required")
		return
	}
	u := currentUser(c)
	if err := s.app.Users.SetPassword(u, u.ID, req.Password); err != nil {
		s.abortWithError(c, err)
		return
	}
	s.commit(c, "change password for "+u.Username)
	c.Status(http.StatusNoContent)
}
