package recipes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"video-optimizer/config"
	"video-optimizer/ffmpeg"
)

// Generator produces one ffmpeg compression command for a video's
// probe metadata.
type Generator interface {
	Generate(ctx context.Context, probeJSON string) (string, error)
}

// OpenAIGenerator asks a chat model for the command. System info is
// collected once at construction; the host doesn't change per video.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	system SystemInfo
}

func NewOpenAIGenerator() (*OpenAIGenerator, error) {
	key, err := config.GetOpenAIKey()
	if err != nil {
		return nil, err
	}
	return &OpenAIGenerator{
		client: openai.NewClient(key),
		model:  config.GetOpenAIModel(),
		system: CollectSystemInfo(),
	}, nil
}

func buildPrompt(probeJSON string, system SystemInfo) string {
	sysJSON, _ := json.MarshalIndent(system, "", "  ")
	return fmt.Sprintf(`Here is the metadata of a video file:
The ffprobe data is: %s
And here is the system information: %s
Based on this information, suggest the most optimal ffmpeg command to compress the video with:
- Best possible space saving, prefer x265 codec.
- Use the same resolution and frame rate as the original video.
- No visible quality loss.
- Optionally using hardware acceleration if available.
- Do not provide any other information or explanation, just the command starting with ffmpeg.
- Use %s as the input file and %s as the output file.
- One line only, with no shell wrapping.`,
		probeJSON, string(sysJSON), ffmpeg.PlaceholderInput, ffmpeg.PlaceholderOutput)
}

// models sometimes wrap the command in a code fence despite the prompt
func sanitizeCommand(raw string) string {
	command := strings.TrimSpace(raw)
	command = strings.Trim(command, "`")
	command = strings.TrimSpace(strings.TrimPrefix(command, "bash"))
	command = strings.TrimSpace(strings.TrimPrefix(command, "sh"))
	return command
}

func (g *OpenAIGenerator) Generate(ctx context.Context, probeJSON string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a video processing expert.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(probeJSON, g.system),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recipe generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("recipe generation returned no choices")
	}

	command := sanitizeCommand(resp.Choices[0].Message.Content)
	if _, err := ffmpeg.ParseCommand(command); err != nil {
		return "", fmt.Errorf("recipe generation returned an unusable command: %w", err)
	}
	log.Debugln("generated recipe:", command)
	return command, nil
}
