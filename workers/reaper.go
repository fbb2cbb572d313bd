package workers

import (
	"time"

	"video-optimizer/config"
	"video-optimizer/videos"
)

const reapInterval = time.Minute

// ReapOnce returns records whose claimant died mid-cycle to their
// eligible pool once the lease TTL has passed.
func ReapOnce() {
	n, err := videos.ReapStale(config.GetClaimLeaseTTL())
	if err != nil {
		log.Errorf("lease reap failed: %v", err)
		return
	}
	if n > 0 {
		log.Warnf("reclaimed %d abandoned claim(s)", n)
	}
}

// Reaper periodically reclaims abandoned leases.
func Reaper() {
	log.Infoln("starting claim reaper")

	ReapOnce()
	ticker := time.NewTicker(reapInterval)
	for range ticker.C {
		ReapOnce()
	}
}
