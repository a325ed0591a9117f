package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports console and upstream health.
// GET /api/v1/health
func (s *Server) Health(c echo.Context) error {
	upstreamOK := true
	if err := s.upstream.Ping(c.Request().Context()); err != nil {
		upstreamOK = false
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"upstream": upstreamOK,
	})
}

// GetQueue returns the full queue snapshot, matched or not.
// GET /api/v1/activity/queue
func (s *Server) GetQueue(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Queue())
}

// GetMatchedDownloads returns queue items joined with the requests they
// satisfy. Unmatched items are excluded from this view.
// GET /api/v1/activity/downloads
func (s *Server) GetMatchedDownloads(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.GetMatchedDownloads())
}

// RefreshActivity forces an immediate request-list refresh and queue poll.
// POST /api/v1/activity/refresh
func (s *Server) RefreshActivity(c echo.Context) error {
	if s.refresher != nil {
		s.refresher.Refresh()
	}
	if s.trigger != nil {
		s.trigger.Trigger()
	}
	return c.NoContent(http.StatusAccepted)
}
