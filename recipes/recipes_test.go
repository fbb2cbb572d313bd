package recipes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"video-optimizer/ffmpeg"
)

func TestSanitizeCommand(t *testing.T) {
	want := "ffmpeg -i input.mp4 -vcodec libx265 output.mp4"

	cases := []string{
		want,
		"  " + want + "  ",
		"```" + want + "```",
		"```bash\n" + want + "\n```",
	}
	for _, in := range cases {
		assert.Equal(t, want, sanitizeCommand(in))
	}
}

func TestBuildPromptMentionsPlaceholders(t *testing.T) {
	prompt := buildPrompt(`{"format":{"duration":"120"}}`, SystemInfo{OS: "linux"})

	assert.True(t, strings.Contains(prompt, ffmpeg.PlaceholderInput))
	assert.True(t, strings.Contains(prompt, ffmpeg.PlaceholderOutput))
	assert.True(t, strings.Contains(prompt, `"duration":"120"`))
}

func TestCollectSystemInfo(t *testing.T) {
	info := CollectSystemInfo()
	assert.NotEmpty(t, info.OS)
	assert.NotEmpty(t, info.Architecture)
}
