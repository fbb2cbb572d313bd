package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"video-optimizer/videos"
)

type listResponse struct {
	List       []videos.Video `json:"list"`
	TotalPages int            `json:"total_pages"`
}

// parseSize accepts a plain byte count or a human suffix, e.g.
// "500MB", "2GB", "1024".
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, nil
	}

	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "GB"):
		mult = 1000 * 1000 * 1000
		s = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		mult = 1000 * 1000
		s = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		mult = 1000
		s = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}

	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad size %q", s)
	}
	return n * mult, nil
}

func intQuery(c echo.Context, name string, fallback int) int {
	if v := c.QueryParam(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// VideosByStatus serves GET /api/videos/:status with filters and pagination.
func VideosByStatus(c echo.Context) error {
	status, err := videos.ParseStatus(c.Param("status"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "Invalid status"})
	}

	minSize, err := parseSize(c.QueryParam("size"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": err.Error()})
	}

	filter := videos.Filter{
		Status:    status,
		MinSize:   minSize,
		Codec:     c.QueryParam("codec"),
		Name:      c.QueryParam("name"),
		Directory: c.QueryParam("directory"),
	}

	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 20)

	list, totalPages, err := videos.List(filter, page, limit)
	if err != nil {
		log.Errorln(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "listing failed"})
	}

	return c.JSON(http.StatusOK, listResponse{List: list, TotalPages: totalPages})
}

// VideosAll serves GET /api/videos.
func VideosAll(c echo.Context) error {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 20)

	list, totalPages, err := videos.List(videos.Filter{}, page, limit)
	if err != nil {
		log.Errorln(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "listing failed"})
	}

	return c.JSON(http.StatusOK, listResponse{List: list, TotalPages: totalPages})
}
