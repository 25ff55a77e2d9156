package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/alexanderramin/planpilot/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Deps are the services the API exposes.
type Deps struct {
	Projects service.ProjectService
	Tasks    service.TaskService
	Plans    service.PlanService
	Users    service.UserService
}

// Options tune the server. A nil Logger discards request logs.
type Options struct {
	JWTSecret   string
	CORSOrigins []string
	Logger      *slog.Logger
}

// Server is the planpilot JSON API.
type Server struct {
	projects service.ProjectService
	tasks    service.TaskService
	plans    service.PlanService
	users    service.UserService

	secret  []byte
	logger  *slog.Logger
	router  *gin.Engine
	handler http.Handler
}

// NewServer wires routes and middleware.
func NewServer(deps Deps, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		projects: deps.Projects,
		tasks:    deps.Tasks,
		plans:    deps.Plans,
		users:    deps.Users,
		secret:   []byte(opts.JWTSecret),
		logger:   logger,
		router:   router,
	}
	router.Use(s.logRequests)

	router.GET("/health", s.health)

	api := router.Group("/api", s.authenticate)
	{
		api.GET("/me", s.me)

		api.GET("/projects", s.listProjects)
		api.POST("/projects", s.createProject)
		api.GET("/projects/:id", s.getProject)
		api.PATCH("/projects/:id", s.updateProject)
		api.DELETE("/projects/:id", s.deleteProject)
		api.GET("/projects/:id/stats", s.projectStats)
		api.GET("/projects/:id/tasks", s.listProjectTasks)
		api.POST("/projects/:id/tasks", s.createTask)
		api.POST("/projects/:id/plan", s.requirePlanner, s.commitPlan)

		api.GET("/tasks", s.listMyTasks)
		api.PATCH("/tasks/:id", s.updateTask)
		api.POST("/tasks/:id/toggle", s.toggleTask)
		api.DELETE("/tasks/:id", s.deleteTask)

		api.POST("/plans/generate", s.requirePlanner, s.generatePlan)
		api.POST("/ai/project-description", s.requirePlanner, s.suggestProjectDescription)
		api.POST("/ai/task-description", s.requirePlanner, s.generateTaskDescription)
	}

	admin := api.Group("/admin", s.requireAdmin)
	{
		admin.GET("/users", s.listUsers)
		admin.PUT("/users/:id/role", s.setUserRole)
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	s.handler = c.Handler(router)

	return s
}

// Handler returns the CORS-wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http_listen", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "ai": s.plans != nil})
}

// requirePlanner rejects AI routes when no model client is configured.
func (s *Server) requirePlanner(c *gin.Context) {
	if s.plans == nil {
		abortError(c, http.StatusServiceUnavailable, "AI planning is disabled")
		return
	}
	c.Next()
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.InfoContext(c.Request.Context(), "http_request",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", c.Writer.Status(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
