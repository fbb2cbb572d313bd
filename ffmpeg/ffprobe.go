package ffmpeg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// runs ffprobe with the provided args and returns (stdout, stderr, error)
func Ffprobe(args ...string) ([]byte, []byte, error) {
	ffprobe := "ffprobe"
	log.Debugln(ffprobe, strings.Join(args, " "))
	cmd := exec.Command(ffprobe, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	if err != nil {
		log.Errorf("ffprobe error: %v", err)
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

type probeOutput struct {
	Streams []struct {
		CodecName string `json:"codec_name"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
}

// ProbeResult is what the scanner records for a discovered file.
type ProbeResult struct {
	RawJSON string // full ffprobe output, stored for display
	Codec   string // first video stream's codec name
	Size    int64  // file size in bytes
}

// Probe extracts technical metadata for a single video file.
func Probe(path string) (*ProbeResult, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	stdout, stderrBytes, err := Ffprobe(
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		"-select_streams", "v:0",
		path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed for %s: %v: %s", path, err, string(stderrBytes))
	}

	var out probeOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output for %s: %v", path, err)
	}

	codec := "unknown"
	if len(out.Streams) > 0 && out.Streams[0].CodecName != "" {
		codec = out.Streams[0].CodecName
	}

	return &ProbeResult{
		RawJSON: string(stdout),
		Codec:   codec,
		Size:    stat.Size(),
	}, nil
}
