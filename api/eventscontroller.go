package api

import (
	"net/http"

	"hearingwatch/types"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerEventRoutes(g *gin.RouterGroup) {
	g.GET("/events", s.handleListEvents)
}

// EventView is a stored event plus its derived report fields.
type EventView struct {
	*types.CommitteeEvent
	Status         types.TaggedStatus `json:"status"`
	EventTypeLabel string             `json:"eventTypeLabel,omitempty"`
	WatchURL       string             `json:"youtubeLink,omitempty"`
}

// handleListEvents returns events in report order, optionally limited to
// one committee with ?committee=<thomas_id>.
func (s *Server) handleListEvents(c *gin.Context) {
	var (
		events []*types.CommitteeEvent
		err    error
	)
	if committeeID := c.Query("committee"); committeeID != "" {
		events, err = s.events.ListByCommittee(c.Request.Context(), committeeID)
	} else {
		events, err = s.events.ListAll(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, EventView{
			CommitteeEvent: e,
			Status:         types.Classify(e),
			EventTypeLabel: types.EventTypeLabel(e.EventType),
			WatchURL:       e.YouTubeLink(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"events": views, "count": len(views)})
}
