// Package api serves the payment operations over HTTP.
package api

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/checktrack/checktrack/internal/app"
	"github.com/checktrack/checktrack/internal/auth"
	"github.com/checktrack/checktrack/internal/id"
	"github.com/checktrack/checktrack/internal/model"
)

const userKey = "user"

// Server holds the HTTP handlers for one data directory.
type Server struct {
	app      *app.App
	signer   *auth.Signer
	logger   *log.Logger
	previews *previewRegistry
}

// New creates a Server from an opened data directory.
func New(a *app.App) (*Server, error) {
	signer, err := auth.NewSigner(a.Config.Server.JWTSecret, a.Config.Server.TokenTTL, a.Clock)
	if err != nil {
		return nil, err
	}
	return &Server{
		app:      a,
		signer:   signer,
		logger:   a.Logger.WithPrefix("api"),
		previews: newPreviewRegistry(a.Config.Server.ImportTTL, a.Clock, id.UUID{}),
	}, nil
}

// Handler returns the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.Use(cors.New(corsConfig(s.app.Config.Server.AllowOrigins)))
	s.routes(r)
	return r
}

// corsConfig allows the listed origins. An empty list or "*" allows any
// origin, without credentials.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func (s *Server) routes(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.POST("/auth/login", s.login)

	authed := api.Group("", s.requireAuth)
	authed.GET("/auth/me", s.me)
	authed.PUT("/auth/password", s.changeOwnPassword)

	authed.GET("/payments", s.listPayments)
	authed.GET("/payments/overdue", s.overduePayments)
	authed.GET("/payments/:id", s.getPayment)
	authed.POST("/payments", s.addPayment)
	authed.PUT("/payments/:id", s.editPayment)
	authed.PATCH("/payments/:id/status", s.changeStatus)
	authed.DELETE("/payments/:id", s.deletePayment)
	authed.POST("/payments/clear", s.clearPayments)

	authed.POST("/imports", s.uploadImport)
	authed.POST("/imports/:id/commit", s.commitImport)
	authed.DELETE("/imports/:id", s.discardImport)

	authed.GET("/backup", s.downloadBackup)
	authed.POST("/backup/restore", s.restoreBackup)
	authed.GET("/export", s.exportXLSX)

	authed.GET("/users", s.listUsers)
	authed.POST("/users", s.addUser)
	authed.PUT("/users/:id", s.updateUser)
	authed.DELETE("/users/:id", s.removeUser)

	authed.GET("/categories", s.listCategories)
	authed.PUT("/categories/:kind", s.replaceCategory)

	authed.GET("/activity", s.listActivity)
}

// requireAuth checks the bearer token and loads the user it names.
func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	claims, err := s.signer.Verify(token)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	u, err := s.app.Users.Get(claims.Subject)
	if err != nil {
		// The token may outlive a removed user.
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user no longer exists"})
		return
	}
	c.Set(userKey, u)
	c.Next()
}

func currentUser(c *gin.Context) model.User {
	u, _ := c.MustGet(userKey).(model.User)
	return u
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// commit records the data directory in git after a successful change.
func (s *Server) commit(c *gin.Context, message string) {
	s.app.Commit(c.Request.Context(), message)
}
