package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/opencitizen/notifstore/internal/genericstatus"
	statusdomain "github.com/opencitizen/notifstore/internal/status/domain"
)

// ListStatuses returns every registered status-label mapping.
func (s *Server) ListStatuses(c *gin.Context) {
	statuses, err := s.statusSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}

// CreateStatus registers a label. Registration is idempotent: posting an
// already-known label returns its existing row.
func (s *Server) CreateStatus(c *gin.Context) {
	var req struct {
		Label string `json:"label"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	status, err := s.statusSvc.Register(c.Request.Context(), strings.TrimSpace(req.Label))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if status == nil {
		AbortWithError(c, statusdomain.ErrEmptyLabel)
		return
	}
	c.JSON(http.StatusCreated, status)
}

// UpdateStatus changes the label or generic status of a registry row.
func (s *Server) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req statusdomain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = id

	status, err := s.statusSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) DeleteStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.statusSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListGenericStatuses returns the closed generic status enumeration.
func (s *Server) ListGenericStatuses(c *gin.Context) {
	all := genericstatus.All()
	out := make([]gin.H, 0, len(all))
	for _, id := range all {
		out = append(out, gin.H{
			"id":    int(id),
			"label": id.String(),
			"final": genericstatus.IsFinal(int(id)),
		})
	}
	c.JSON(http.StatusOK, gin.H{"generic_statuses": out})
}
