package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	eventdomain "github.com/opencitizen/notifstore/internal/event/domain"
)

// ListEvents lists audit events filtered by demand, status or date range.
func (s *Server) ListEvents(c *gin.Context) {
	filter := eventdomain.EventFilter{
		DemandID:     strings.TrimSpace(c.Query("demand_id")),
		DemandTypeID: strings.TrimSpace(c.Query("demand_type_id")),
		Status:       strings.TrimSpace(c.Query("status")),
	}

	// notification_date pins the listing to the events of one delivery.
	if raw := strings.TrimSpace(c.Query("notification_date")); raw != "" {
		if filter.DemandID == "" || filter.DemandTypeID == "" {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		date, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		events, err := s.eventSvc.ListByNotification(c.Request.Context(), filter.DemandID, filter.DemandTypeID, date)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
		return
	}

	start, err := parseOptionalTime(c.Query("start_date"), false)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	end, err := parseOptionalTime(c.Query("end_date"), true)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	filter.StartDate = start
	filter.EndDate = end

	events, err := s.eventSvc.ListByFilter(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// DeleteEvents removes every audit event belonging to one customer. Erasure
// path; demand-scoped cleanup happens through the demand removal cascade.
func (s *Server) DeleteEvents(c *gin.Context) {
	customerID := strings.TrimSpace(c.Query("customer_id"))
	if customerID == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.eventSvc.DeleteByCustomer(c.Request.Context(), customerID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

const dateOnlyLayout = "2006-01-02"

func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse(dateOnlyLayout, trimmed)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
	}
	return &parsed, nil
}
