package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"golang.org/x/sys/unix"

	"video-optimizer/config"
	"video-optimizer/ffmpeg"
	"video-optimizer/recipes"
)

// free space in bytes for the filesystem containing dir
func getFreeSpace(dir string) (uint64, error) {
	var stat unix.Statfs_t
	err := unix.Statfs(dir, &stat)
	if err != nil {
		return 0, fmt.Errorf("error getting filesystem stats: %v", err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// total size of a directory in bytes
func getDirectorySize(dir string) (int64, error) {
	var size int64
	err := filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error walking directory: %v", err)
	}
	return size, nil
}

// SystemStatus serves GET /api/system/status for the dashboard.
func SystemStatus(c echo.Context) error {
	outputDir := config.GetOutputDir()

	free, err := getFreeSpace(outputDir)
	if err != nil {
		log.Errorln(err)
	}
	used, err := getDirectorySize(outputDir)
	if err != nil {
		log.Errorln(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ffmpeg":         ffmpeg.Version(),
		"output_dir":     outputDir,
		"free_bytes":     free,
		"used_bytes":     used,
		"host":           recipes.CollectSystemInfo(),
		"auto_confirmed": config.GetAutoConfirmed(),
		"auto_accept":    config.GetAutoAccept(),
	})
}
