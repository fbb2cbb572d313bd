package workers

import (
	"context"
	"time"

	"video-optimizer/config"
	"video-optimizer/recipes"
	"video-optimizer/videos"
)

// PrepareOnce claims at most one confirmed record and asks the
// generator for its compression recipe. Generator failures land the
// record in failed with the reason recorded; there is no in-cycle
// retry, a user revert or delete decides what happens next.
func PrepareOnce(gen recipes.Generator, who string) {
	v, err := videos.ClaimNext(videos.Confirmed, who)
	if err != nil {
		log.Errorf("failed to claim a confirmed video: %v", err)
		return
	}
	if v == nil {
		log.Debugln("no confirmed videos to prepare")
		return
	}

	log.Infof("generating recipe for %s", v.Filename)

	ctx, cancel := context.WithTimeout(context.Background(), config.GetAITimeout())
	defer cancel()

	command, err := gen.Generate(ctx, v.ProbeData)
	if err != nil {
		log.Errorf("recipe for %s failed: %v", v.Filename, err)
		if _, uerr := videos.UpdateStatus(v.ID, videos.Failed, map[string]interface{}{
			"failure_reason": err.Error(),
		}); uerr != nil {
			log.Errorln(uerr)
		}
		return
	}

	if _, err := videos.UpdateStatus(v.ID, videos.Ready, map[string]interface{}{
		"ffmpeg_command": command,
	}); err != nil {
		log.Errorln(err)
		return
	}
	log.Infof("recipe saved for %s", v.Filename)
}

// Preparer polls for confirmed records, one per cycle to bound API cost.
func Preparer(gen recipes.Generator) {
	who := claimant("preparer")
	log.Infoln("starting preparer", who)

	PrepareOnce(gen, who)
	ticker := time.NewTicker(config.GetAIInterval())
	for range ticker.C {
		PrepareOnce(gen, who)
	}
}
