package workers

import (
	"fmt"
	"io"
	"os"
	"time"

	"video-optimizer/config"
	"video-optimizer/videos"
)

// moveFile renames src to dst, falling back to copy-and-delete when
// the paths live on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	part := dst + ".part"
	out, err := os.Create(part)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(part)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(part)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(part)
		return err
	}
	if err := os.Rename(part, dst); err != nil {
		os.Remove(part)
		return err
	}
	return os.Remove(src)
}

// replaceFile swaps the optimized file over the original. The original
// is parked at <path>.bak until the new file is in place and its size
// verified, so a failure at any step leaves at least one intact copy.
func replaceFile(originalPath, optimizedPath string, wantSize int64) error {
	stat, err := os.Stat(optimizedPath)
	if err != nil {
		return fmt.Errorf("optimized file missing: %v", err)
	}
	if stat.Size() != wantSize {
		return fmt.Errorf("optimized file is %d bytes, expected %d", stat.Size(), wantSize)
	}
	if _, err := os.Stat(originalPath); err != nil {
		return fmt.Errorf("original file missing: %v", err)
	}

	backup := originalPath + ".bak"
	if err := os.Rename(originalPath, backup); err != nil {
		return fmt.Errorf("cannot back up original: %v", err)
	}

	restore := func() {
		os.Remove(originalPath)
		if err := os.Rename(backup, originalPath); err != nil {
			log.Errorf("could not restore %s from backup: %v", originalPath, err)
		}
	}

	if err := moveFile(optimizedPath, originalPath); err != nil {
		restore()
		return fmt.Errorf("move failed: %v", err)
	}

	stat, err = os.Stat(originalPath)
	if err != nil || stat.Size() != wantSize {
		restore()
		return fmt.Errorf("replaced file failed size verification")
	}

	if err := os.Remove(backup); err != nil {
		log.Warnf("could not remove backup %s: %v", backup, err)
	}
	return nil
}

// MoveOnce claims at most one accepted record and performs the swap.
func MoveOnce(who string) {
	v, err := videos.ClaimNext(videos.Accepted, who)
	if err != nil {
		log.Errorf("failed to claim an accepted video: %v", err)
		return
	}
	if v == nil {
		log.Debugln("no accepted videos to move")
		return
	}

	log.Infof("replacing %s", v.Filepath)

	if err := replaceFile(v.Filepath, v.OptimizedPath, v.OptimizedSize); err != nil {
		log.Errorf("replace of %s failed: %v", v.Filepath, err)
		// failing clears optimized_path, so point ops at any survivor here
		reason := err.Error()
		if _, statErr := os.Stat(v.OptimizedPath); statErr == nil {
			reason = fmt.Sprintf("%s; optimized file left at %s", reason, v.OptimizedPath)
		}
		if _, uerr := videos.UpdateStatus(v.ID, videos.Failed, map[string]interface{}{
			"failure_reason": reason,
		}); uerr != nil {
			log.Errorln(uerr)
		}
		return
	}

	if _, err := videos.UpdateStatus(v.ID, videos.Replaced, nil); err != nil {
		log.Errorln(err)
		return
	}
	log.Infof("replaced %s", v.Filepath)
}

// Mover polls for accepted records.
func Mover() {
	who := claimant("mover")
	log.Infoln("starting mover", who)

	MoveOnce(who)
	ticker := time.NewTicker(config.GetMoveInterval())
	for range ticker.C {
		MoveOnce(who)
	}
}
