package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/service"
)

type setRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context(), currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]userDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) setUserRole(c *gin.Context) {
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}
	if err := s.users.SetRole(c.Request.Context(), currentUser(c), c.Param("id"), domain.Role(req.Role)); err != nil {
		s.fail(c, err)
		return
	}
	u, err := s.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserDTO(u))
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, toUserDTO(currentUser(c)))
}
