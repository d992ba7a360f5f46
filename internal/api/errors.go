package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/checktrack/checktrack/internal/auth"
	"github.com/checktrack/checktrack/internal/categories"
	"github.com/checktrack/checktrack/internal/importer"
	"github.com/checktrack/checktrack/internal/model"
	"github.com/checktrack/checktrack/internal/payments"
	"github.com/checktrack/checktrack/internal/store"
	"github.com/checktrack/checktrack/internal/users"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, users.ErrUserNotFound),
		errors.Is(err, categories.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, users.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden),
		errors.Is(err, payments.ErrPasswordMismatch):
		return http.StatusForbidden
	case errors.Is(err, store.ErrDuplicateID),
		errors.Is(err, users.ErrDuplicateUsername),
		errors.Is(err, categories.ErrDuplicateItem):
		return http.StatusConflict
	case errors.Is(err, payments.ErrInvalid),
		errors.Is(err, payments.ErrEmptyImport),
		errors.Is(err, importer.ErrNoData),
		errors.Is(err, importer.ErrHeaderMismatch),
		errors.Is(err, importer.ErrUnsupportedFile),
		errors.Is(err, importer.ErrUnreadableFile),
		errors.Is(err, users.ErrWeakPassword),
		errors.Is(err, users.ErrSelfRemoval):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// abortWithError writes {"error": ...}. Internal errors are logged and
// reported without detail.
func (s *Server) abortWithError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		c.AbortWithStatusJSON(code, gin.H{"error": "internal error"})
		return
	}

	body := gin.H{"error": err.Error()}
	var se *importer.StructuralError
	if errors.As(err, &se) {
		body["expected"] = se.Expected
	}
	var ve *payments.ValidationError
	if errors.As(err, &ve) {
		body["fields"] = ve.Fields
	}
	c.AbortWithStatusJSON(code, body)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
