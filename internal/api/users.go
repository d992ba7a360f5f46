package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/checktrack/checktrack/internal/activity"
	"github.com/checktrack/checktrack/internal/model"
	"github.com/checktrack/checktrack/internal/users"
)

type userRequest struct {
	Username    *string            `json:"username"`
	Password    *string            `json:"password"`
	Permissions *model.Permissions `json:"permissions"`
}

func (s *Server) listUsers(c *gin.Context) {
	list, err := s.app.Users.List(currentUser(c))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) addUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == nil || req.Password == nil {
		badRequest(c, "username and password are required")
		return
	}
	nu := users.NewUser{Username: *req.Username, Password: *req.Password}
	if req.Permissions != nil {
		nu.Permissions = *req.Permissions
	}
	u, err := s.app.Users.Add(currentUser(c), nu)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.app.Record(currentUser(c), activity.ActionUserAdd, "added user "+u.Username, u.ID)
	s.commit(c, "add user "+u.Username)
	c.JSON(http.StatusCreated, u)
}

func (s *Server) updateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid user body")
		return
	}
	u, err := s.app.Users.Update(currentUser(c), c.Param("id"), users.Update{
		Username:    req.Username,
		Password:    req.Password,
		Permissions: req.Permissions,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.app.Record(currentUser(c), activity.ActionUserUpdate, "updated user "+u.Username, u.ID)
	s.commit(c, "update user "+u.Username)
	c.JSON(http.StatusOK, u)
}

func (s *Server) removeUser(c *gin.Context) {
	if err := s.app.Users.Remove(currentUser(c), c.Param("id")); err != nil {
		s.abortWithError(c, err)
		return
	}
	s.app.Record(currentUser(c), activity.ActionUserRemove, "removed user "+c.Param("id"), c.Param("id"))
	s.commit(c, "remove user "+c.Param("id"))
	c.Status(http.StatusNoContent)
}
