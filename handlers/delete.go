package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"video-optimizer/videos"
)

// VideoDelete serves DELETE /api/videos/:id. Only records in a
// terminal-class status (rejected, skipped, failed) may be deleted.
func VideoDelete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "bad id"})
	}

	err = videos.Delete(uint(id))
	if errors.Is(err, videos.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "Video not found"})
	}
	if errors.Is(err, videos.ErrInvalidTransition) {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": err.Error()})
	}
	if err != nil {
		log.Errorln(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "delete failed"})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Video %d deleted successfully", id),
	})
}
