package workers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"video-optimizer/config"
	"video-optimizer/ffmpeg"
	"video-optimizer/videos"
)

const progressWriteInterval = 2 * time.Second

func diskFree(dir string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0, fmt.Errorf("error getting filesystem stats: %v", err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

func failVideo(id uint, reason string) {
	if _, err := videos.UpdateStatus(id, videos.Failed, map[string]interface{}{
		"failure_reason": reason,
	}); err != nil {
		log.Errorln(err)
	}
}

// ProcessOnce claims at most one ready record and runs its recipe.
// Success requires exit code zero and an output at least the sanity
// size; anything else fails the record and removes partial output.
func ProcessOnce(who string) {
	v, err := videos.ClaimNext(videos.Ready, who)
	if err != nil {
		log.Errorf("failed to claim a ready video: %v", err)
		return
	}
	if v == nil {
		log.Debugln("no ready videos to process")
		return
	}

	argv, err := ffmpeg.ParseCommand(v.FfmpegCommand)
	if err != nil {
		failVideo(v.ID, fmt.Sprintf("stored command is unusable: %v", err))
		return
	}

	if _, err := os.Stat(v.Filepath); err != nil {
		failVideo(v.ID, fmt.Sprintf("input file missing: %v", err))
		return
	}

	outputDir := config.GetOutputDir()
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		failVideo(v.ID, fmt.Sprintf("cannot create output dir: %v", err))
		return
	}

	// transient condition, release the claim rather than failing the record
	if free, err := diskFree(outputDir); err == nil && free < uint64(v.OriginalSize) {
		log.Warnf("not enough free space in %s for %s, releasing claim", outputDir, v.Filename)
		if err := videos.Release(v.ID); err != nil {
			log.Errorln(err)
		}
		return
	}

	// records from different roots may share a basename
	outputName := fmt.Sprintf("%s-%s", uuid.Must(uuid.NewV7()).String(), v.Filename)
	outputPath := filepath.Join(outputDir, outputName)
	argv = ffmpeg.Substitute(argv, v.Filepath, outputPath)
	if argv[1] != "-y" {
		// never stall on an overwrite prompt
		argv = append([]string{argv[0], "-y"}, argv[1:]...)
	}

	log.Infof("transcoding %s", v.Filename)

	ctx, cancel := context.WithTimeout(context.Background(), config.GetTranscodeTimeout())
	defer cancel()

	lastWrite := time.Time{}
	tail, runErr := ffmpeg.Transcode(ctx, argv, func(line string) {
		if time.Since(lastWrite) < progressWriteInterval {
			return
		}
		lastWrite = time.Now()
		if err := videos.UpdateProgress(v.ID, line); err != nil {
			log.Warnf("progress update for %d failed: %v", v.ID, err)
		}
	})

	if runErr != nil {
		reason := fmt.Sprintf("ffmpeg failed: %v", runErr)
		if tail != "" {
			reason = fmt.Sprintf("%s\n%s", reason, tail)
		}
		os.Remove(outputPath)
		failVideo(v.ID, reason)
		return
	}

	stat, err := os.Stat(outputPath)
	if err != nil {
		failVideo(v.ID, fmt.Sprintf("ffmpeg exited cleanly but produced no output: %v", err))
		return
	}
	if stat.Size() < config.GetMinOutputBytes() {
		os.Remove(outputPath)
		failVideo(v.ID, fmt.Sprintf("output suspiciously small (%d bytes)", stat.Size()))
		return
	}

	newCodec := ""
	if probe, err := ffmpeg.Probe(outputPath); err == nil {
		newCodec = probe.Codec
	}

	if _, err := videos.UpdateStatus(v.ID, videos.Optimized, map[string]interface{}{
		"optimized_size": stat.Size(),
		"optimized_path": outputPath,
		"new_codec":      newCodec,
	}); err != nil {
		log.Errorln(err)
		return
	}
	log.Infof("optimized %s: %d -> %d bytes", v.Filename, v.OriginalSize, stat.Size())
}

// Processor polls for ready records, one transcode in flight at a time.
func Processor() {
	who := claimant("processor")
	log.Infoln("starting processor", who)

	ProcessOnce(who)
	ticker := time.NewTicker(config.GetProcessInterval())
	for range ticker.C {
		ProcessOnce(who)
	}
}
