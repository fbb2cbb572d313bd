package ffmpeg

import (
	"fmt"
	"strings"
)

// placeholders the recipe generator is told to use
const (
	PlaceholderInput  = "input.mp4"
	PlaceholderOutput = "output.mp4"
)

// ParseCommand splits a recipe command string into argv and checks it
// is something we are willing to run: a single-line ffmpeg invocation
// carrying both the input and output placeholders.
func ParseCommand(command string) ([]string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, fmt.Errorf("empty command")
	}
	if strings.ContainsAny(command, "\r\n") {
		return nil, fmt.Errorf("command must be a single line")
	}

	argv := strings.Fields(command)
	if argv[0] != "ffmpeg" {
		return nil, fmt.Errorf("command must start with ffmpeg, got %q", argv[0])
	}

	hasInput, hasOutput := false, false
	for _, arg := range argv {
		if arg == PlaceholderInput {
			hasInput = true
		}
		if arg == PlaceholderOutput {
			hasOutput = true
		}
	}
	if !hasInput || !hasOutput {
		return nil, fmt.Errorf("command must reference %s and %s", PlaceholderInput, PlaceholderOutput)
	}

	return argv, nil
}

// Substitute replaces the recipe placeholders with real paths.
func Substitute(argv []string, inputPath, outputPath string) []string {
	out := make([]string, len(argv))
	for i, arg := range argv {
		switch arg {
		case PlaceholderInput:
			out[i] = inputPath
		case PlaceholderOutput:
			out[i] = outputPath
		default:
			out[i] = arg
		}
	}
	return out
}
