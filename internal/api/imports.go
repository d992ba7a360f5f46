package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/checktrack/checktrack/internal/importer"
)

type previewResponse struct {
	ID string `json:"id"`
	*importer.Preview
}

// uploadImport decodes an uploaded spreadsheet and holds the preview until it
// is committed or expires.
func (s *Server) uploadImport(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	defer file.Close()

	pv, err := s.app.Pipeline.PreviewReader(header.Filename, file)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	u := currentUser(c)
	key := s.previews.put(pv, u.ID)
	s.logger.Info("import preview", "user", u.Username, "source", pv.Source, "accepted", len(pv.Payments), "dropped", pv.Dropped)
	c.JSON(http.StatusOK, previewResponse{ID: key, Preview: pv})
}

func (s *Server) commitImport(c *gin.Context) {
	u := currentUser(c)
	key := c.Param("id")
	pv, ok := s.previews.take(key, u.ID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "import preview not found or expired"})
		return
	}

	created, err := s.app.Payments.CommitImport(c.Request.Context(), u, pv)
	if err != nil {
		s.previews.restore(key, u.ID, pv)
		s.abortWithError(c, err)
		return
	}
	s.commit(c, fmt.Sprintf("import %d payments from %s", len(created), pv.Source))
	c.JSON(http.StatusCreated, gin.H{
		"imported": len(created),
		"summary":  pv.Summary,
		"payments": created,
	})
}

func (s *Server) discardImport(c *gin.Context) {
	if _, ok := s.previews.take(c.Param("id"), currentUser(c).ID); !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "import preview not found or expired"})
		return
	}
	c.Status(http.StatusNoContent)
}
