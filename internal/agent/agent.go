// Package agent turns natural-language questions about the camera-health
// digital twin into backend tool calls and narrative answers.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lalmajed/camera-health-digital-twin/internal/analysis"
	"github.com/lalmajed/camera-health-digital-twin/internal/metrics"
	"github.com/lalmajed/camera-health-digital-twin/internal/tracing"
)

// ErrUnknownTool is returned when the model names a tool that does not exist.
var ErrUnknownTool = errors.New("unknown tool")

// Backend is the slice of the twin client the agent needs.
type Backend interface {
	Call(ctx context.Context, tool string, params map[string]string) (any, error)
}

// Answer is the result of one question through the full pipeline.
type Answer struct {
	Question  string            `json:"question"`
	Tool      string            `json:"tool"`
	Params    map[string]string `json:"params,omitempty"`
	Category  analysis.Category `json:"category,omitempty"`
	Payload   any               `json:"payload,omitempty"`
	Narrative string            `json:"narrative"`
}

// declinedNarrative is shown when the model routes to "none".
const declinedNarrative = "I can't answer that with the twin's query tools.\n\n" +
	"I can report on city-wide degradation for a day, a specific site's totals or " +
	"daily status, a vehicle's degradation profile, or a vehicle's trips. " +
	"Try including a day (YYYY-MM-DD), a site code (RUHSMxxx), or a plate number."

// Agent wires the LLM router, the twin backend, and the analysis layer.
type Agent struct {
	provider Provider
	backend  Backend
	config   Config
}

// New creates an agent.
func New(provider Provider, backend Backend, config Config) *Agent {
	return &Agent{
		provider: provider,
		backend:  backend,
		config:   config,
	}
}

// Ask answers one question: the model picks a tool, the tool is called
// against the twin backend, and the result is classified and rendered.
//
// Backend failures are folded into an error-shaped payload so they render
// as the error narrative instead of aborting; the only errors returned are
// LLM transport failures and invalid routing decisions.
func (a *Agent) Ask(ctx context.Context, question string) (*Answer, error) {
	ctx, span := tracing.GetTracer("agent").Start(ctx, "agent.Ask")
	defer span.End()

	metrics.ObserveQuestion()

	prompt := BuildRoutingPrompt(question)
	raw, err := a.provider.Complete(ctx, []Message{{Role: "user", Content: prompt}}, a.config)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("LLM completion failed: %w", err)
	}

	call, err := ParseToolCall(raw)
	if err != nil {
		metrics.ObserveRoutingFailure()
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("tool routing failed: %w", err)
	}
	tracing.AddSpanAttributes(ctx, attribute.String("agent.tool", call.Tool))

	if call.Tool == ToolNone {
		metrics.ObserveDeclined()
		return &Answer{
			Question:  question,
			Tool:      ToolNone,
			Narrative: declinedNarrative,
		}, nil
	}

	if !call.Valid() {
		metrics.ObserveRoutingFailure()
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, call.Tool)
	}

	start := time.Now()
	payload, err := a.backend.Call(ctx, call.Tool, call.Params)
	metrics.ObserveToolCall(call.Tool, time.Since(start))
	if err != nil {
		// Transport-level failures become error payloads so the user
		// still gets the error narrative.
		log.Printf("[Agent] Backend call %s failed: %v", call.Tool, err)
		payload = map[string]any{"error": err.Error()}
	}

	category := analysis.Classify(payload)
	metrics.ObserveClassification(string(category))
	tracing.AddSpanAttributes(ctx, attribute.String("agent.category", string(category)))

	return &Answer{
		Question:  question,
		Tool:      call.Tool,
		Params:    call.Params,
		Category:  category,
		Payload:   payload,
		Narrative: analysis.Render(question, category, payload),
	}, nil
}
