package workers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-optimizer/videos"
)

// fakeFfmpeg puts a shell script named ffmpeg at the front of PATH.
// The processor invokes it as `ffmpeg -y -i <input> <output>`, so the
// script sees the output path as $4.
func fakeFfmpeg(t *testing.T, script string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func seedReady(t *testing.T, inputPath string) *videos.Video {
	t.Helper()
	v, err := videos.Upsert(inputPath, filepath.Base(inputPath), videos.Metadata{
		ProbeJSON: "{}", Codec: "h264", Size: 1000,
	})
	require.NoError(t, err)
	_, err = videos.UpdateStatus(v.ID, videos.Confirmed, nil)
	require.NoError(t, err)
	_, err = videos.UpdateStatus(v.ID, videos.Ready, map[string]interface{}{
		"ffmpeg_command": "ffmpeg -i input.mp4 output.mp4",
	})
	require.NoError(t, err)
	return v
}

func TestProcessOnceHappyPath(t *testing.T) {
	setup(t)
	outputDir := t.TempDir()
	t.Setenv("OUTPUT_DIR", outputDir)
	t.Setenv("MIN_OUTPUT_BYTES", "10")
	fakeFfmpeg(t, `echo "frame=1 fps=30 time=00:00:01" >&2
printf '0123456789abcdef' > "$4"
exit 0`)

	input := filepath.Join(t.TempDir(), "movie.mp4")
	writeFile(t, input, "source material")
	v := seedReady(t, input)

	ProcessOnce("processor-test")

	got, err := videos.Get(v.ID)
	require.NoError(t, err)
	assert.Equal(t, videos.Optimized, got.Status)
	assert.Equal(t, int64(16), got.OptimizedSize)
	assert.Equal(t, outputDir, filepath.Dir(got.OptimizedPath))
	assert.NotEmpty(t, got.Progress)

	data, err := os.ReadFile(got.OptimizedPath)
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef", string(data))
}

func TestProcessOnceNonzeroExitCleansPartial(t *testing.T) {
	setup(t)
	outputDir := t.TempDir()
	t.Setenv("OUTPUT_DIR", outputDir)
	t.Setenv("MIN_OUTPUT_BYTES", "10")
	fakeFfmpeg(t, `echo "Error: invalid data found when processing input" >&2
printf 'partial' > "$4"
exit 1`)

	input := filepath.Join(t.TempDir(), "movie.mp4")
	writeFile(t, input, "source material")
	v := seedReady(t, input)

	ProcessOnce("processor-test")

	got, err := videos.Get(v.ID)
	require.NoError(t, err)
	assert.Equal(t, videos.Failed, got.Status)
	assert.Contains(t, got.FailureReason, "invalid data found")
	assert.Zero(t, got.OptimizedSize)
	assert.Empty(t, got.OptimizedPath)

	// the partial output was removed
	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessOnceRejectsTooSmallOutput(t *testing.T) {
	setup(t)
	outputDir := t.TempDir()
	t.Setenv("OUTPUT_DIR", outputDir)
	t.Setenv("MIN_OUTPUT_BYTES", "10")
	fakeFfmpeg(t, `printf 'abc' > "$4"
exit 0`)

	input := filepath.Join(t.TempDir(), "movie.mp4")
	writeFile(t, input, "source material")
	v := seedReady(t, input)

	ProcessOnce("processor-test")

	got, err := videos.Get(v.ID)
	require.NoError(t, err)
	assert.Equal(t, videos.Failed, got.Status)
	assert.Contains(t, got.FailureReason, "suspiciously small")
	assert.Zero(t, got.OptimizedSize)

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessOnceInputMissing(t *testing.T) {
	setup(t)
	t.Setenv("OUTPUT_DIR", t.TempDir())

	v := seedReady(t, filepath.Join(t.TempDir(), "gone.mp4"))

	ProcessOnce("processor-test")

	got, err := videos.Get(v.ID)
	require.NoError(t, err)
	assert.Equal(t, videos.Failed, got.Status)
	assert.Contains(t, got.FailureReason, "input file missing")
}

func TestProcessOnceDistinctOutputsForSameBasename(t *testing.T) {
	setup(t)
	outputDir := t.TempDir()
	t.Setenv("OUTPUT_DIR", outputDir)
	t.Setenv("MIN_OUTPUT_BYTES", "10")
	fakeFfmpeg(t, `printf '0123456789abcdef' > "$4"
exit 0`)

	inputA := filepath.Join(t.TempDir(), "movie.mp4")
	inputB := filepath.Join(t.TempDir(), "movie.mp4")
	writeFile(t, inputA, "source a")
	writeFile(t, inputB, "source b")
	a := seedReady(t, inputA)
	b := seedReady(t, inputB)

	ProcessOnce("processor-test")
	ProcessOnce("processor-test")

	gotA, err := videos.Get(a.ID)
	require.NoError(t, err)
	gotB, err := videos.Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, videos.Optimized, gotA.Status)
	assert.Equal(t, videos.Optimized, gotB.Status)
	assert.NotEqual(t, gotA.OptimizedPath, gotB.OptimizedPath)

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
