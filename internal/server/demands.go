package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	demanddomain "github.com/opencitizen/notifstore/internal/demand/domain"
)

// ListDemands lists cases filtered by customer, reference or demand type,
// with cursor pagination.
func (s *Server) ListDemands(c *gin.Context) {
	req := demanddomain.ListDemandsRequest{
		CustomerID:   strings.TrimSpace(c.Query("customer_id")),
		Reference:    strings.TrimSpace(c.Query("reference")),
		DemandTypeID: strings.TrimSpace(c.Query("demand_type_id")),
		PageToken:    strings.TrimSpace(c.Query("page_token")),
	}
	if raw := strings.TrimSpace(c.Query("page_size")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > 250 {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.PageSize = size
	}
	if req.CustomerID == "" && req.Reference == "" && req.DemandTypeID == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.demandSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetDemand returns one case with its notifications and decoded payloads.
func (s *Server) GetDemand(c *gin.Context) {
	demandTypeID := strings.TrimSpace(c.Param("demandTypeId"))
	demandID := strings.TrimSpace(c.Param("demandId"))
	if demandTypeID == "" || demandID == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	demand, err := s.demandSvc.Get(c.Request.Context(), demandID, demandTypeID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, demand)
}

// DeleteDemand removes one case and everything attached to it.
func (s *Server) DeleteDemand(c *gin.Context) {
	demandTypeID := strings.TrimSpace(c.Param("demandTypeId"))
	demandID := strings.TrimSpace(c.Param("demandId"))
	if demandTypeID == "" || demandID == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.demandSvc.Remove(c.Request.Context(), demandID, demandTypeID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
