package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	demandtypedomain "github.com/opencitizen/notifstore/internal/demandtype/domain"
)

func (s *Server) ListDemandTypes(c *gin.Context) {
	types, err := s.demandTypeSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"demand_types": types})
}

func (s *Server) GetDemandType(c *gin.Context) {
	demandType, err := s.demandTypeSvc.Get(c.Request.Context(), c.Param("typeId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, demandType)
}

func (s *Server) CreateDemandType(c *gin.Context) {
	var req demandtypedomain.DemandType
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = 0

	created, err := s.demandTypeSvc.Create(c.Request.Context(), &req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) UpdateDemandType(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req demandtypedomain.DemandType
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = id

	updated, err := s.demandTypeSvc.Update(c.Request.Context(), &req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) DeleteDemandType(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.demandTypeSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
