package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/lalmajed/camera-health-digital-twin/internal/twin"
)

// MockProvider routes questions with keyword and pattern matching instead
// of a real model. It emits the same strict JSON tool-call format, so the
// rest of the pipeline cannot tell the difference. Used in tests and for
// running the agent offline.
type MockProvider struct{}

// NewMockProvider creates a new mock LLM provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

var (
	dayPattern   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	sitePattern  = regexp.MustCompile(`RUHSM\d+`)
	platePattern = regexp.MustCompile(`\b(?:\d{4}[A-Z]{3}|[A-Z]{3}\d{3,4})\b`)
)

// Complete inspects the last message and produces a deterministic tool call.
func (m *MockProvider) Complete(ctx context.Context, messages []Message, config Config) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	text := userRequestOf(messages[len(messages)-1].Content)
	lower := strings.ToLower(text)

	day := dayPattern.FindString(text)
	site := sitePattern.FindString(text)
	plate := platePattern.FindString(text)
	// Site codes match the plate pattern shape, never route them as plates.
	if plate != "" && strings.Contains(site, plate) {
		plate = ""
	}

	var call ToolCall
	switch {
	case site != "" && (strings.Contains(lower, "status") || strings.Contains(lower, "detection")):
		call = ToolCall{Tool: twin.ToolSiteDayStatus, Params: map[string]string{"day": day, "site": site}}
	case site != "":
		call = ToolCall{Tool: twin.ToolSiteTotals, Params: map[string]string{"day": day, "site": site}}
	case strings.Contains(lower, "trip") && plate != "" && day != "":
		call = ToolCall{Tool: twin.ToolTripsForDay, Params: map[string]string{"plate": plate, "day": day}}
	case strings.Contains(lower, "trip") && plate != "":
		call = ToolCall{Tool: twin.ToolTripsAllDays, Params: map[string]string{"plate": plate}}
	case plate != "":
		call = ToolCall{Tool: twin.ToolVehicleDegradeStatus, Params: map[string]string{"plate": plate}}
	case day != "":
		call = ToolCall{Tool: twin.ToolCityTotals, Params: map[string]string{"day": day}}
	default:
		call = ToolCall{Tool: ToolNone, Params: map[string]string{}}
	}

	out, err := json.Marshal(call)
	if err != nil {
		return "", fmt.Errorf("failed to marshal mock tool call: %w", err)
	}
	return string(out), nil
}

// userRequestOf isolates the question from a routing prompt. Keyword
// matching against the full prompt would trip on tool names in the schema.
func userRequestOf(text string) string {
	if _, after, ok := strings.Cut(text, "User request:"); ok {
		text = after
		if before, _, ok := strings.Cut(text, "OUTPUT RULES"); ok {
			text = before
		}
	}
	return text
}
