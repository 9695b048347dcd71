package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	demanddomain "github.com/opencitizen/notifstore/internal/demand/domain"
)

// PostNotification ingests one notification document. The response is always
// an acknowledgement document; the HTTP status carries the terminal outcome.
func (s *Server) PostNotification(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result := s.engineIngest.IngestNotification(c.Request.Context(), body)
	c.JSON(result.HTTPStatus, result.Ack)
}

// PostNotificationEvent records a standalone audit event document.
func (s *Server) PostNotificationEvent(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result := s.engineIngest.IngestEvent(c.Request.Context(), body)
	c.JSON(result.HTTPStatus, result.Ack)
}

// ListNotifications lists stored notifications with their decoded payloads,
// filtered by demand, date range or channel.
func (s *Server) ListNotifications(c *gin.Context) {
	filter := demanddomain.NotificationFilter{
		DemandID:     strings.TrimSpace(c.Query("demand_id")),
		DemandTypeID: strings.TrimSpace(c.Query("demand_type_id")),
	}
	if filter.DemandID == "" && filter.DemandTypeID == "" {
		AbortWithError(c, ErrInvalidRequest)
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

	for _, raw := range strings.Split(c.Query("channels"), ",") {
		name := demanddomain.Channel(strings.ToUpper(strings.TrimSpace(raw)))
		if name == "" {
			continue
		}
		if !demanddomain.ValidChannel(name) {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		filter.Channels = append(filter.Channels, name)
	}

	notifications, err := s.demandSvc.Notifications(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// ReencodeContents rewrites every stored payload blob under the requested
// compression setting. Administrative migration endpoint.
func (s *Server) ReencodeContents(c *gin.Context) {
	var req struct {
		Compress bool `json:"compress"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	rows, err := s.contentStore.Reencode(c.Request.Context(), req.Compress)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reencoded": rows, "compress": req.Compress})
}
