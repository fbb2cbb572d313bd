package workers

import (
	"time"

	"video-optimizer/config"
	"video-optimizer/videos"
)

// ApproveOnce applies the policy-gated bulk transitions: pending ->
// confirmed when auto-confirm is on, optimized -> accepted when
// auto-accept is on. Both go through the same transition contract as
// manual requests.
func ApproveOnce() {
	if config.GetAutoConfirmed() {
		n, err := videos.BulkTransition(videos.Pending, videos.Confirmed, config.GetConfirmBatchSize())
		if err != nil {
			log.Errorf("auto-confirm failed: %v", err)
		} else if n > 0 {
			log.Infof("auto-confirmed %d video(s)", n)
		}
	} else {
		log.Debugln("auto-confirm disabled")
	}

	if config.GetAutoAccept() {
		n, err := videos.BulkTransition(videos.Optimized, videos.Accepted, 0)
		if err != nil {
			log.Errorf("auto-accept failed: %v", err)
		} else if n > 0 {
			log.Infof("auto-accepted %d video(s)", n)
		}
	} else {
		log.Debugln("auto-accept disabled")
	}
}

// Approver polls the auto-confirm/auto-accept policies.
func Approver() {
	log.Infoln("starting approver")

	ApproveOnce()
	ticker := time.NewTicker(config.GetConfirmInterval())
	for range ticker.C {
		ApproveOnce()
	}
}
