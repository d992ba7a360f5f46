package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/checktrack/checktrack/internal/backup"
	"github.com/checktrack/checktrack/internal/payments"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) downloadBackup(c *gin.Context) {
	list, err := s.app.Payments.List(c.Request.Context(), payments.Filter{})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	now := s.app.Clock.Now()
	var buf bytes.Buffer
	if err := backup.Write(&buf, list, now); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="checktrack-backup-%s.json"`, now.Format(dateLayout)))
	c.Data(http.StatusOK, "application/json", buf.Bytes())
}

// restoreBackup accepts the backup as a multipart "file" or as the raw body.
func (s *Server) restoreBackup(c *gin.Context) {
	var r io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			badRequest(c, "file is required")
			return
		}
		defer file.Close()
		r = file
	}

	records, err := backup.Read(r)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	n, err := s.app.Payments.Restore(c.Request.Context(), currentUser(c), records)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.commit(c, fmt.Sprintf("restore %d payments from backup", n))
	c.JSON(http.StatusOK, gin.H{"restored": n})
}

func (s *Server) exportXLSX(c *gin.Context) {
	f, err := s.filterFromQuery(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	list, err := s.app.Payments.List(c.Request.Context(), f)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := backup.ExportXLSX(&buf, list); err != nil {
		s.abortWithError(c, err)
		return
	}
	name := fmt.Sprintf("odemeler-%s.xlsx", s.app.Clock.Now().Format(dateLayout))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
