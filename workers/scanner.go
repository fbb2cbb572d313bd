package workers

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"video-optimizer/config"
	"video-optimizer/ffmpeg"
	"video-optimizer/videos"
)

var videoExtensions = map[string]bool{
	".mp4": true,
	".mkv": true,
	".avi": true,
	".mov": true,
}

// ScanOnce walks the given roots and records every video file it finds.
// A probe failure on one file is logged and the walk continues; a file
// that vanished from disk mid-pipeline is left to ops cleanup.
func ScanOnce(roots []string) {
	log.Debugln("scanning for new video files...")
	inserted := 0

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Warnf("scan error at %s: %v", path, err)
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !videoExtensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				log.Warnf("cannot resolve %s: %v", path, err)
				return nil
			}

			if existing, err := videos.ByPath(abs); err == nil {
				if existing.Status != videos.Pending {
					return nil
				}
				// pending records are refreshed only when the size changed
				if stat, err := os.Stat(abs); err == nil && stat.Size() == existing.OriginalSize {
					return nil
				}
			}

			probe, err := ffmpeg.Probe(abs)
			if err != nil {
				log.Warnf("probe failed for %s: %v", abs, err)
				return nil
			}

			_, err = videos.Upsert(abs, filepath.Base(abs), videos.Metadata{
				ProbeJSON: probe.RawJSON,
				Codec:     probe.Codec,
				Size:      probe.Size,
			})
			if err != nil {
				log.Errorf("failed to record %s: %v", abs, err)
				return nil
			}
			inserted++
			return nil
		})
		if err != nil {
			log.Errorf("scan of %s failed: %v", root, err)
		}
	}

	if inserted > 0 {
		log.Infof("recorded %d video(s)", inserted)
	} else {
		log.Debugln("no new videos found")
	}
}

// Scanner polls the configured roots forever.
func Scanner() {
	roots := append([]string{config.GetVideoDir()}, config.GetExtraVideoDirs()...)
	log.Infoln("starting scanner for", strings.Join(roots, ", "))

	ScanOnce(roots)
	ticker := time.NewTicker(config.GetScanInterval())
	for range ticker.C {
		ScanOnce(roots)
	}
}
