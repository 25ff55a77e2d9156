package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/repository"
	"github.com/alexanderramin/planpilot/internal/service"
)

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	// AI generates and commits a task plan right after creation.
	AI bool `json:"ai"`
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Status      *string `json:"status"`
}

func (s *Server) listProjects(c *gin.Context) {
	owner := currentUser(c).ID
	if c.Query("all") == "true" && currentUser(c).IsAdmin() {
		owner = ""
	}
	projects, err := s.projects.List(c.Request.Context(), owner, c.Query("archived") == "true")
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]projectDTO, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectDTO(p))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}
	start, err := parseOptionalDate("startDate", req.StartDate)
	if err != nil {
		s.fail(c, err)
		return
	}
	end, err := parseOptionalDate("endDate", req.EndDate)
	if err != nil {
		s.fail(c, err)
		return
	}
	in := service.NewProjectInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		OwnerID:     currentUser(c).ID,
	}

	if req.AI && s.plans == nil {
		abortError(c, http.StatusServiceUnavailable, "AI planning is disabled")
		return
	}
	if !req.AI {
		p, err := s.projects.Create(c.Request.Context(), in)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"project": toProjectDTO(p)})
		return
	}

	out, err := s.plans.CreateProjectWithPlan(c.Request.Context(), in)
	if err != nil {
		if out == nil || out.Project == nil {
			s.fail(c, err)
			return
		}
		// The project exists; report the planning failure alongside it.
		c.JSON(http.StatusCreated, gin.H{
			"project":   toProjectDTO(out.Project),
			"planError": err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"project": toProjectDTO(out.Project),
		"plan":    toPlanResponse(out.Plan),
		"commit":  out.Commit,
	})
}

// loadProject fetches the :id project and checks the caller may access it.
func (s *Server) loadProject(c *gin.Context) (*domain.Project, bool) {
	p, err := s.projects.GetByID(c.Request.Context(), c.Param("id"))
	if err == nil && !canAccess(c, p.OwnerID) {
		err = fmt.Errorf("project %s: %w", c.Param("id"), repository.ErrNotFound)
	}
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return p, true
}

func (s *Server) getProject(c *gin.Context) {
	p, ok := s.loadProject(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toProjectDTO(p))
}

func (s *Server) updateProject(c *gin.Context) {
	p, ok := s.loadProject(c)
	if !ok {
		return
	}
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}

	upd := service.ProjectUpdate{Name: req.Name, Description: req.Description}
	if req.StartDate != nil {
		d, err := parseOptionalDate("startDate", *req.StartDate)
		if err != nil || d.IsZero() {
			s.fail(c, errors.Join(service.ErrInvalidInput, err))
			return
		}
		upd.StartDate = &d
	}
	if req.EndDate != nil {
		d, err := parseOptionalDate("endDate", *req.EndDate)
		if err != nil || d.IsZero() {
			s.fail(c, errors.Join(service.ErrInvalidInput, err))
			return
		}
		upd.EndDate = &d
	}
	if req.Status != nil {
		st := domain.ProjectStatus(*req.Status)
		upd.Status = &st
	}

	updated, err := s.projects.Update(c.Request.Context(), p.ID, upd)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectDTO(updated))
}

func (s *Server) deleteProject(c *gin.Context) {
	p, ok := s.loadProject(c)
	if !ok {
		return
	}
	n, err := s.projects.Delete(c.Request.Context(), p.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": p.ID, "tasksDeleted": n})
}

func (s *Server) projectStats(c *gin.Context) {
	p, ok := s.loadProject(c)
	if !ok {
		return
	}
	st, err := s.projects.Stats(c.Request.Context(), p.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, statsDTO{
		ProjectID:      st.ProjectID,
		TaskCount:      st.TaskCount,
		CompletedCount: st.CompletedCount,
		PendingCount:   st.PendingCount,
		OverdueCount:   st.OverdueCount,
		Progress:       st.Progress(),
	})
}
