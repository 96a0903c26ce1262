package agent

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lalmajed/camera-health-digital-twin/internal/twin"
)

// ToolCall is the routing decision parsed from the model's output.
type ToolCall struct {
	Tool   string            `json:"tool"`
	Params map[string]string `json:"params"`
}

// ToolNone is the tool name the model uses to decline a question.
const ToolNone = "none"

const toolSchema = `VALID TOOLS (choose exactly one):

1. getCityTotals
   params: { "day": "YYYY-MM-DD" }

2. getSiteTotals
   params: { "day": "YYYY-MM-DD", "site": "RUHSMxxx" }

3. getSiteDayStatus
   params: { "day": "YYYY-MM-DD", "site": "RUHSMxxx" }

4. getVehicleDegradeStatus
   params: { "plate": "PLATENUMBER" }

5. getTripsForDay
   params: { "plate": "PLATENUMBER", "day": "YYYY-MM-DD" }

6. getTripsAllDays
   params: { "plate": "PLATENUMBER" }

If none of the tools can answer, output: { "tool": "none", "params": {} }

THE ONLY VALID JSON FORMAT YOU ARE ALLOWED TO OUTPUT IS:

{
  "tool": "<tool_name>",
  "params": { ... }
}

NEVER invent new keys like:
- vehicle_id
- date
- parameters

NEVER output markdown fences.
NEVER output explanation.
ONLY output the raw JSON object.`

// BuildRoutingPrompt wraps a user question in the strict JSON-only routing
// instructions for the model.
func BuildRoutingPrompt(question string) string {
	return fmt.Sprintf(`You are the Digital Twin Tool Router.
Your ONLY job is to choose the correct backend tool.

%s

User request:
%s

OUTPUT RULES (IMPORTANT):
- Respond ONLY with raw JSON.
- NO markdown fences.
- NO natural language.
- NO comments.`, toolSchema, question)
}

// ParseToolCall decodes the model's raw output into a ToolCall. Markdown
// code fences are stripped first because models emit them no matter how
// firmly the prompt forbids it. Param values that arrive as JSON numbers
// are stringified, integral floats without the trailing ".0".
func ParseToolCall(raw string) (*ToolCall, error) {
	text := strings.TrimSpace(raw)
	text = stripFences(text)

	var decoded struct {
		Tool   string         `json:"tool"`
		Params map[string]any `json:"params"`
	}
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, fmt.Errorf("tool decision is not valid JSON: %w", err)
	}
	if decoded.Tool == "" {
		return nil, fmt.Errorf("tool decision has no tool field: %s", text)
	}

	params := make(map[string]string, len(decoded.Params))
	for k, v := range decoded.Params {
		switch t := v.(type) {
		case string:
			params[k] = t
		case float64:
			if t == float64(int64(t)) {
				params[k] = strconv.FormatInt(int64(t), 10)
			} else {
				params[k] = strconv.FormatFloat(t, 'f', -1, 64)
			}
		default:
			params[k] = fmt.Sprint(v)
		}
	}

	return &ToolCall{Tool: decoded.Tool, Params: params}, nil
}

// Valid reports whether the call names a known backend tool or the
// explicit "none" decision.
func (tc *ToolCall) Valid() bool {
	return tc.Tool == ToolNone || twin.IsTool(tc.Tool)
}

func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	if i := strings.LastIndex(text, "```"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}
