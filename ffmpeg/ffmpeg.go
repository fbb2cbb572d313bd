package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// runs ffmpeg with the provided args and returns (stdout, stderr, error)
func Ffmpeg(args ...string) ([]byte, []byte, error) {
	ffmpeg := "ffmpeg"
	log.Debugln(ffmpeg, strings.Join(args, " "))
	cmd := exec.Command(ffmpeg, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	if err != nil {
		log.Errorf("ffmpeg error: %v", err)
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

// Version returns the first line of `ffmpeg -version`.
func Version() string {
	stdout, _, err := Ffmpeg("-version")
	if err != nil {
		return ""
	}
	lines := strings.SplitN(string(stdout), "\n", 2)
	return strings.TrimSpace(lines[0])
}

// ffmpeg writes progress with carriage returns, so split on either
func scanProgressLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

const stderrTailLines = 40

// Transcode runs argv (argv[0] is the binary) under ctx, feeding each
// stderr line to onProgress as it arrives. It returns the tail of
// stderr for failure diagnostics. Cancelling ctx kills the process.
func Transcode(ctx context.Context, argv []string, onProgress func(line string)) (string, error) {
	log.Infoln(strings.Join(argv, " "))
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", err
	}
	if err := cmd.Start(); err != nil {
		return "", err
	}

	var tail []string
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(scanProgressLines)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tail = append(tail, line)
		if len(tail) > stderrTailLines {
			tail = tail[1:]
		}
		if onProgress != nil {
			onProgress(line)
		}
	}

	err = cmd.Wait()
	if ctx.Err() != nil {
		err = ctx.Err()
	}
	return strings.Join(tail, "\n"), err
}
