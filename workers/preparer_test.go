package workers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-optimizer/videos"
)

type stubGenerator struct {
	command string
	err     error
	calls   int
}

func (g *stubGenerator) Generate(ctx context.Context, probeJSON string) (string, error) {
	g.calls++
	return g.command, g.err
}

func seedConfirmed(t *testing.T, path string) *videos.Video {
	t.Helper()
	v, err := videos.Upsert(path, filepath.Base(path), videos.Metadata{
		ProbeJSON: "{}", Codec: "h264", Size: 1000,
	})
	require.NoError(t, err)
	_, err = videos.UpdateStatus(v.ID, videos.Confirmed, nil)
	require.NoError(t, err)
	return v
}

func TestPrepareOnceSavesRecipe(t *testing.T) {
	setup(t)

	v := seedConfirmed(t, "/media/movie.mp4")
	gen := &stubGenerator{command: "ffmpeg -i input.mp4 -vcodec libx265 -crf 28 output.mp4"}

	PrepareOnce(gen, "preparer-test")

	got, err := videos.Get(v.ID)
	require.NoError(t, err)
	assert.Equal(t, videos.Ready, got.Status)
	assert.Equal(t, gen.command, got.FfmpegCommand)
	assert.Equal(t, 1, gen.calls)
}

func TestPrepareOnceFailureLandsInFailed(t *testing.T) {
	setup(t)

	v := seedConfirmed(t, "/media/movie.mp4")
	gen := &stubGenerator{err: errors.New("rate limited")}

	PrepareOnce(gen, "preparer-test")

	got, err := videos.Get(v.ID)
	require.NoError(t, err)
	assert.Equal(t, videos.Failed, got.Status)
	assert.Contains(t, got.FailureReason, "rate limited")
	assert.Empty(t, got.FfmpegCommand)
}

func TestPrepareOnceClaimsOnePerCycle(t *testing.T) {
	setup(t)

	seedConfirmed(t, "/media/a.mp4")
	seedConfirmed(t, "/media/b.mp4")
	gen := &stubGenerator{command: "ffmpeg -i input.mp4 output.mp4"}

	PrepareOnce(gen, "preparer-test")
	assert.Equal(t, 1, gen.calls)

	counts, err := videos.CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["ready"])
	assert.Equal(t, int64(1), counts["confirmed"])
}

func TestPrepareOnceNoWorkIsQuiet(t *testing.T) {
	setup(t)

	gen := &stubGenerator{command: "ffmpeg -i input.mp4 output.mp4"}
	PrepareOnce(gen, "preparer-test")
	assert.Zero(t, gen.calls)
}
