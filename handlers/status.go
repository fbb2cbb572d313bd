package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"video-optimizer/videos"
)

// StatusCounts serves GET /api/videos/status/count with a zero-filled
// per-status summary.
func StatusCounts(c echo.Context) error {
	counts, err := videos.CountByStatus()
	if err != nil {
		log.Errorln(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "count failed"})
	}
	return c.JSON(http.StatusOK, counts)
}

type statusUpdate struct {
	Status string `json:"status"`
}

// StatusPost serves POST /api/videos/:id/status, a manual transition
// request validated against the edge table.
func StatusPost(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "bad id"})
	}

	var body statusUpdate
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "bad request body"})
	}

	target, err := videos.ParseStatus(body.Status)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "Invalid status"})
	}

	v, err := videos.UpdateStatus(uint(id), target, nil)
	if errors.Is(err, videos.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "Video not found"})
	}
	if errors.Is(err, videos.ErrInvalidTransition) {
		// the error text names the rejected edge
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": err.Error()})
	}
	if err != nil {
		log.Errorln(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "update failed"})
	}

	return c.JSON(http.StatusOK, v)
}
