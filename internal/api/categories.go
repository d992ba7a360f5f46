package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/checktrack/checktrack/internal/activity"
	"github.com/checktrack/checktrack/internal/model"
)

func (s *Server) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, s.app.Categories.All())
}

type categoryRequest struct {
	Items []string `json:"items"`
}

func (s *Server) replaceCategory(c *gin.Context) {
	kind, err := model.ParseCategoryKind(c.Param("kind"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "items are required")
		return
	}
	cat, err := s.app.Categories.Replace(currentUser(c), kind, req.Items)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.app.Record(currentUser(c), activity.ActionCategoryEdit, fmt.Sprintf("set %s to %d items", kind, len(cat.Items)))
	s.commit(c, "update "+string(kind)+" categories")
	c.JSON(http.StatusOK, cat)
}

func (s *Server) listActivity(c *gin.Context) {
	entries, err := activity.Read(s.app.Dir)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}
