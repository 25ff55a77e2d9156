package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/planning"
	"github.com/alexanderramin/planpilot/internal/service"
)

type generatePlanRequest struct {
	ProjectName  string `json:"projectName"`
	DurationDays int    `json:"durationDays"`
}

type planResponse struct {
	ProjectName  string             `json:"projectName"`
	DurationDays int                `json:"durationDays"`
	Model        string             `json:"model"`
	Drafts       []domain.TaskDraft `json:"drafts"`
	Anomalies    []string           `json:"anomalies"`
}

func toPlanResponse(p *planning.Plan) planResponse {
	out := planResponse{
		ProjectName:  p.ProjectName,
		DurationDays: p.DurationDays,
		Model:        p.Model,
		Drafts:       p.Drafts,
		Anomalies:    make([]string, 0, len(p.Anomalies)),
	}
	if out.Drafts == nil {
		out.Drafts = []domain.TaskDraft{}
	}
	for _, a := range p.Anomalies {
		out.Anomalies = append(out.Anomalies, a.String())
	}
	return out
}

type commitPlanRequest struct {
	StartDate string             `json:"startDate"`
	Drafts    []domain.TaskDraft `json:"drafts"`
}

type projectDescriptionRequest struct {
	ProjectName string `json:"projectName"`
}

type taskDescriptionRequest struct {
	ProjectName string `json:"projectName"`
	TaskTitle   string `json:"taskTitle"`
	// TaskID stores the generated description on an existing task instead.
	TaskID string `json:"taskId"`
}

func (s *Server) generatePlan(c *gin.Context) {
	var req generatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}
	if strings.TrimSpace(req.ProjectName) == "" {
		s.fail(c, fmt.Errorf("%w: projectName is required", service.ErrInvalidInput))
		return
	}
	plan, err := s.plans.GeneratePlan(c.Request.Context(), req.ProjectName, req.DurationDays)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toPlanResponse(plan))
}

func (s *Server) commitPlan(c *gin.Context) {
	p, ok := s.loadProject(c)
	if !ok {
		return
	}
	var req commitPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}
	start, err := parseOptionalDate("startDate", req.StartDate)
	if err != nil {
		s.fail(c, err)
		return
	}
	res, err := s.plans.CommitPlan(c.Request.Context(), p.ID, start, req.Drafts)
	if err != nil {
		s.fail(c, err)
		return
	}
	status := http.StatusCreated
	if res.Failed > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, res)
}

func (s *Server) suggestProjectDescription(c *gin.Context) {
	var req projectDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ProjectName) == "" {
		s.fail(c, fmt.Errorf("%w: projectName is required", service.ErrInvalidInput))
		return
	}
	text, err := s.plans.SuggestProjectDescription(c.Request.Context(), req.ProjectName)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": text})
}

func (s *Server) generateTaskDescription(c *gin.Context) {
	var req taskDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}

	if req.TaskID != "" {
		c.Params = append(c.Params, gin.Param{Key: "id", Value: req.TaskID})
		t, ok := s.loadTask(c)
		if !ok {
			return
		}
		described, err := s.plans.DescribeTask(c.Request.Context(), t.ID)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"description": described.Description, "task": toTaskDTO(described)})
		return
	}

	if strings.TrimSpace(req.TaskTitle) == "" {
		s.fail(c, fmt.Errorf("%w: taskTitle or taskId is required", service.ErrInvalidInput))
		return
	}
	text, err := s.plans.GenerateTaskDescription(c.Request.Context(), req.ProjectName, req.TaskTitle)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": text})
}
