package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/repository"
	"github.com/alexanderramin/planpilot/internal/service"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Assignee    string `json:"assignee"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Assignee    *string `json:"assignee"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	// DueDate set to "" clears the due date.
	DueDate *string `json:"dueDate"`
}

func (s *Server) listMyTasks(c *gin.Context) {
	tasks, err := s.tasks.ListByOwner(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskDTOs(tasks))
}

func (s *Server) listProjectTasks(c *gin.Context) {
	p, ok := s.loadProject(c)
	if !ok {
		return
	}
	tasks, err := s.tasks.ListByProject(c.Request.Context(), p.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskDTOs(tasks))
}

func (s *Server) createTask(c *gin.Context) {
	p, ok := s.loadProject(c)
	if !ok {
		return
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		s.fail(c, err)
		return
	}
	t, err := s.tasks.Create(c.Request.Context(), p.ID, service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
		Priority:    domain.Priority(req.Priority),
		DueDate:     due,
		OwnerID:     currentUser(c).ID,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTaskDTO(t))
}

// loadTask fetches the :id task and checks the caller may access it.
func (s *Server) loadTask(c *gin.Context) (*domain.Task, bool) {
	t, err := s.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err == nil && !canAccess(c, t.OwnerID) {
		err = fmt.Errorf("task %s: %w", c.Param("id"), repository.ErrNotFound)
	}
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return t, true
}

func (s *Server) updateTask(c *gin.Context) {
	t, ok := s.loadTask(c)
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}

	upd := service.TaskUpdate{Title: req.Title, Description: req.Description, Assignee: req.Assignee}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		upd.Priority = &p
	}
	if req.Status != nil {
		st := domain.TaskStatus(*req.Status)
		upd.Status = &st
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			s.fail(c, err)
			return
		}
		upd.DueDate = due
		upd.ClearDueDate = due == nil
	}

	updated, err := s.tasks.Update(c.Request.Context(), t.ID, upd)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskDTO(updated))
}

func (s *Server) toggleTask(c *gin.Context) {
	t, ok := s.loadTask(c)
	if !ok {
		return
	}
	updated, err := s.tasks.Toggle(c.Request.Context(), t.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskDTO(updated))
}

func (s *Server) deleteTask(c *gin.Context) {
	t, ok := s.loadTask(c)
	if !ok {
		return
	}
	if err := s.tasks.Delete(c.Request.Context(), t.ID); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseDueDate reads a calendar date as a due date at the anchor hour.
// Full timestamps are kept as given.
func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if d, err := domain.ParseDate(s); err == nil {
		due := domain.DueDateFromOffset(d, 1)
		return &due, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%w: dueDate must be YYYY-MM-DD or RFC 3339", service.ErrInvalidInput)
	}
	ts = ts.UTC()
	return &ts, nil
}
