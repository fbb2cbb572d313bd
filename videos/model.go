package videos

import (
	"errors"
	"fmt"
	"time"
)

// Status is the pipeline stage of a video record.
type Status string

const (
	Pending   Status = "pending"   // discovered by the scanner
	Confirmed Status = "confirmed" // user/approver requested compression
	Rejected  Status = "rejected"  // user declined compression
	Ready     Status = "ready"     // recipe generated, awaiting transcode
	Optimized Status = "optimized" // transcode finished, awaiting review
	Accepted  Status = "accepted"  // user/approver approved the result
	Skipped   Status = "skipped"   // user declined the result
	Replaced  Status = "replaced"  // original swapped for the optimized file
	Failed    Status = "failed"    // a stage errored, see FailureReason
)

var AllStatuses = []Status{
	Pending, Confirmed, Rejected, Ready, Optimized,
	Accepted, Skipped, Replaced, Failed,
}

// legal status edges; transitioning along anything else is rejected
var transitions = map[Status][]Status{
	Pending:   {Confirmed, Rejected},
	Confirmed: {Ready, Failed},
	Ready:     {Optimized, Failed, Pending}, // -> pending is the user revert
	Optimized: {Accepted, Skipped},
	Accepted:  {Replaced, Failed},
	Failed:    {Pending}, // user revert after fixing the cause
}

// statuses a record may be deleted from
var deletable = map[Status]bool{
	Rejected: true,
	Skipped:  true,
	Failed:   true,
}

var ErrNotFound = errors.New("video not found")
var ErrInvalidTransition = errors.New("invalid transition")

func ParseStatus(s string) (Status, error) {
	for _, known := range AllStatuses {
		if Status(s) == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func CanTransition(from, to Status) bool {
	for _, dst := range transitions[from] {
		if dst == to {
			return true
		}
	}
	return false
}

func Deletable(s Status) bool {
	return deletable[s]
}

type Video struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	Filepath      string     `gorm:"uniqueIndex" json:"filepath"`
	Filename      string     `json:"filename"`
	OriginalSize  int64      `json:"original_size"`
	OriginalCodec string     `json:"original_codec"`
	NewCodec      string     `json:"new_codec,omitempty"`
	ProbeData     string     `json:"ffprobe_data,omitempty"` // raw ffprobe JSON, display only
	FfmpegCommand string     `json:"ffmpeg_command,omitempty"`
	OptimizedSize int64      `json:"optimized_size,omitempty"`
	OptimizedPath string     `json:"optimized_path,omitempty"`
	Progress      string     `json:"progress,omitempty"`
	Status        Status     `gorm:"index;default:pending" json:"status"`
	FailureReason string     `json:"failure_reason,omitempty"`
	ClaimedBy     string     `json:"-"`
	ClaimedAt     *time.Time `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `gorm:"index" json:"updated_at"`
}
