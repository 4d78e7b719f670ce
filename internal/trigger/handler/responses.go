package handler

import (
	"time"

	"lekha/internal/trigger"
)

// ProcessResultResponse is the HTTP response for POST /events.
type ProcessResultResponse struct {
	EventID      string            `json:"event_id,omitempty"`
	TasksCreated int               `json:"tasks_created"`
	Outcomes     []OutcomeResponse `json:"outcomes"`
	Cycles       []CycleResponse   `json:"cycles,omitempty"`
}

// OutcomeResponse is the per-rule portion of the response.
type OutcomeResponse struct {
	RuleID     string `json:"rule_id"`
	TaskID     string `json:"task_id,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CycleResponse reports one dependency back-edge skipped during ordering.
type CycleResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// EventResponse is the HTTP representation of a persisted event.
type EventResponse struct {
	ID          string         `json:"id"`
	FirmID      string         `json:"firm_id"`
	EventType   string         `json:"event_type"`
	Payload     map[string]any `json:"payload,omitempty"`
	Processed   bool           `json:"processed"`
	CreatedAt   time.Time      `json:"created_at"`
	ProcessedAt *time.Time     `json:"processed_at,omitempty"`
}

// FromResult converts a domain result to an HTTP response.
func FromResult(result *trigger.Result) *ProcessResultResponse {
	resp := &ProcessResultResponse{
		TasksCreated: result.TasksCreated,
		Outcomes:     make([]OutcomeResponse, 0, len(result.Outcomes)),
	}
	if !result.EventID.IsNil() {
		resp.EventID = result.EventID.String()
	}
	for _, outcome := range result.Outcomes {
		o := OutcomeResponse{
			RuleID:     outcome.RuleID.String(),
			SkipReason: outcome.SkipReason,
		}
		if outcome.Created() {
			o.TaskID = outcome.TaskID.String()
		}
		if outcome.Err != nil {
			o.Error = outcome.Err.Error()
		}
		resp.Outcomes = append(resp.Outcomes, o)
	}
	for _, cycle := range result.Cycles {
		resp.Cycles = append(resp.Cycles, CycleResponse{
			From: cycle.From.String(),
			To:   cycle.To.String(),
		})
	}
	return resp
}

// FromEvent converts a persisted event to an HTTP response.
func FromEvent(event *trigger.ComplianceEvent) *EventResponse {
	return &EventResponse{
		ID:          event.ID.String(),
		FirmID:      event.FirmID.String(),
		EventType:   event.Type.String(),
		Payload:     event.Payload,
		Processed:   event.Processed,
		CreatedAt:   event.CreatedAt,
		ProcessedAt: event.ProcessedAt,
	}
}

// FromEvents converts a list of events.
func FromEvents(events []*trigger.ComplianceEvent) []*EventResponse {
	out := make([]*EventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, FromEvent(event))
	}
	return out
}
